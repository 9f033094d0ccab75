package migration

import (
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

// setupTestDB はインメモリSQLiteを開くヘルパー関数。
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリSQLiteの接続に失敗: %v", err)
	}
	// インメモリDBは接続ごとに別になるため1接続に固定する
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// TestRun はマイグレーションの適用を検証する。
func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("バージョン順に適用されること", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		fsys := fstest.MapFS{
			// 逆順に登録してもバージョン順で適用される
			"migrations/000002_add_column.up.sql": &fstest.MapFile{
				Data: []byte("ALTER TABLE items ADD COLUMN note TEXT NOT NULL DEFAULT ''"),
			},
			"migrations/000001_create_items.up.sql": &fstest.MapFile{
				Data: []byte("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL)"),
			},
		}

		if err := Run(db, fsys, "migrations"); err != nil {
			t.Fatalf("マイグレーション適用に失敗: %v", err)
		}

		if _, err := db.Exec("INSERT INTO items (name, note) VALUES ('a', 'b')"); err != nil {
			t.Errorf("適用後のテーブルへ書き込めない: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("適用状態の取得に失敗: %v", err)
		}
		if count != 2 {
			t.Errorf("適用件数 = %d, want 2", count)
		}
	})

	t.Run("再実行しても適用済みのものはスキップされること", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		fsys := fstest.MapFS{
			"migrations/000001_create_items.up.sql": &fstest.MapFile{
				Data: []byte("CREATE TABLE items (id INTEGER PRIMARY KEY)"),
			},
		}

		if err := Run(db, fsys, "migrations"); err != nil {
			t.Fatalf("初回適用に失敗: %v", err)
		}
		// CREATE TABLEが再実行されればエラーになる
		if err := Run(db, fsys, "migrations"); err != nil {
			t.Fatalf("再実行に失敗: %v", err)
		}
	})

	t.Run("不正なSQLでエラーが返り記録されないこと", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		fsys := fstest.MapFS{
			"migrations/000001_broken.up.sql": &fstest.MapFile{
				Data: []byte("CREATE TABL broken"),
			},
		}

		if err := Run(db, fsys, "migrations"); err == nil {
			t.Fatal("不正なSQLでエラーが返らなかった")
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("適用状態の取得に失敗: %v", err)
		}
		if count != 0 {
			t.Errorf("失敗したマイグレーションが記録された: count = %d", count)
		}
	})

	t.Run("形式に合わないファイル名は無視されること", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		fsys := fstest.MapFS{
			"migrations/README.md": &fstest.MapFile{
				Data: []byte("memo"),
			},
			"migrations/notes.up.sql": &fstest.MapFile{
				Data: []byte("CREATE TABLE ignored (id INTEGER)"),
			},
			"migrations/000001_create_items.up.sql": &fstest.MapFile{
				Data: []byte("CREATE TABLE items (id INTEGER PRIMARY KEY)"),
			},
		}

		if err := Run(db, fsys, "migrations"); err != nil {
			t.Fatalf("マイグレーション適用に失敗: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("適用状態の取得に失敗: %v", err)
		}
		if count != 1 {
			t.Errorf("適用件数 = %d, want 1", count)
		}
	})
}
