package user

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yobidashi/backend/pkg/migration"
)

//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// Store はSQLiteベースのユーザーストア。
// 書き込みはユーザー単位でアトミックであり、ユーザー間のトランザクションは持たない。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewStore は新しいユーザーストアを生成し、マイグレーションを適用する。
func NewStore(db *sql.DB) (*Store, error) {
	if err := migration.Run(db, migrationsFS, "migrations"); err != nil {
		return nil, fmt.Errorf("ユーザーストアのマイグレーションに失敗: %w", err)
	}
	return &Store{db: db}, nil
}

// userColumns はSELECT句で使用するカラム一覧。scanUserの順序と同期すること。
const userColumns = "id, username, email, password_hash, verified, verification_token, verification_expiry, settings, push_tokens, joined_at, last_online"

// Create は新しいユーザーを永続化する。
func (s *Store) Create(ctx context.Context, u *User) error {
	settings := u.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	tokens := u.PushTokens
	if tokens == nil {
		tokens = []string{}
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("設定のシリアライズに失敗: %w", err)
	}
	tokensJSON, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("プッシュトークンのシリアライズに失敗: %w", err)
	}

	var expiry any
	if !u.VerificationExpiry.IsZero() {
		expiry = u.VerificationExpiry.UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, verified, verification_token, verification_expiry, settings, push_tokens, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Username, u.Email, u.PasswordHash, boolToInt(u.Verified), u.VerificationToken, expiry, string(settingsJSON), string(tokensJSON), u.JoinedAt.UTC())
	if err != nil {
		return fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}
	return nil
}

// FindByID はIDでユーザーを検索する。存在しない場合はErrNotFound。
func (s *Store) FindByID(ctx context.Context, id string) (*User, error) {
	return s.findOne(ctx, "id = ?", id)
}

// FindByUsername はユーザー名でユーザーを検索する。存在しない場合はErrNotFound。
func (s *Store) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findOne(ctx, "username = ?", username)
}

// FindByEmail はメールアドレスでユーザーを検索する。存在しない場合はErrNotFound。
func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, "email = ?", email)
}

// FindByVerificationToken はメール確認トークンでユーザーを検索する。
// 存在しない場合はErrNotFound。
func (s *Store) FindByVerificationToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, "verification_token = ?", token)
}

// ListExcept は指定したID以外の全ユーザーを返す。
func (s *Store) ListExcept(ctx context.Context, excludeID string) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id != ? ORDER BY joined_at", excludeID)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanUsers(rows)
}

// FindByIDs は指定したID群に一致するユーザーを返す。
// 存在しないIDは結果から黙って除外される。
func (s *Store) FindByIDs(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id IN ("+placeholders+") ORDER BY joined_at", args...)
	if err != nil {
		return nil, fmt.Errorf("ユーザー群の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanUsers(rows)
}

// UpdateSettings はユーザーの設定を保存する。
func (s *Store) UpdateSettings(ctx context.Context, id string, settings map[string]any) error {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("設定のシリアライズに失敗: %w", err)
	}
	return s.updateOne(ctx, id, "UPDATE users SET settings = ? WHERE id = ?", string(settingsJSON), id)
}

// SavePushTokens はユーザーのプッシュトークン一覧を置き換える。
// ファンアウト時の重複排除結果の書き戻しにも使用され、
// 並行するファンアウト同士では後勝ちになる（許容された弱い整合性）。
func (s *Store) SavePushTokens(ctx context.Context, id string, tokens []string) error {
	if tokens == nil {
		tokens = []string{}
	}
	tokensJSON, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("プッシュトークンのシリアライズに失敗: %w", err)
	}
	return s.updateOne(ctx, id, "UPDATE users SET push_tokens = ? WHERE id = ?", string(tokensJSON), id)
}

// MarkVerified はユーザーをメール確認済みにし、確認トークンを無効化する。
func (s *Store) MarkVerified(ctx context.Context, id string) error {
	return s.updateOne(ctx, id,
		"UPDATE users SET verified = 1, verification_token = '', verification_expiry = NULL WHERE id = ?", id)
}

// TouchLastOnline は最終オンライン日時を現在時刻に更新する。
func (s *Store) TouchLastOnline(ctx context.Context, id string) error {
	return s.updateOne(ctx, id, "UPDATE users SET last_online = ? WHERE id = ?", time.Now().UTC(), id)
}

// findOne は条件に一致する1ユーザーを取得する共通処理。
func (s *Store) findOne(ctx context.Context, where string, args ...any) (*User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, args...)
	u, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return u, nil
}

// updateOne は1ユーザーに対する更新を実行する共通処理。
// 対象行が存在しない場合はErrNotFound。
func (s *Store) updateOne(ctx context.Context, id, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ユーザーの更新に失敗: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新行数の取得に失敗: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("ユーザー %s の更新: %w", id, ErrNotFound)
	}
	return nil
}

// scanUser は1行分のカラムをUserに変換する。userColumnsの順序と同期すること。
func scanUser(scan func(dest ...any) error) (*User, error) {
	var (
		u            User
		verified     int
		expiry       sql.NullTime
		lastOnline   sql.NullTime
		settingsJSON string
		tokensJSON   string
	)
	if err := scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &verified,
		&u.VerificationToken, &expiry, &settingsJSON, &tokensJSON, &u.JoinedAt, &lastOnline); err != nil {
		return nil, err
	}

	u.Verified = verified != 0
	if expiry.Valid {
		u.VerificationExpiry = expiry.Time
	}
	if lastOnline.Valid {
		u.LastOnline = lastOnline.Time
	}
	if err := json.Unmarshal([]byte(settingsJSON), &u.Settings); err != nil {
		return nil, fmt.Errorf("設定のデシリアライズに失敗: %w", err)
	}
	if err := json.Unmarshal([]byte(tokensJSON), &u.PushTokens); err != nil {
		return nil, fmt.Errorf("プッシュトークンのデシリアライズに失敗: %w", err)
	}
	return &u, nil
}

// scanUsers は複数行をUserのスライスに変換する。
func scanUsers(rows *sql.Rows) ([]*User, error) {
	var users []*User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("ユーザー行の変換に失敗: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ユーザー行の走査に失敗: %w", err)
	}
	return users, nil
}

// boolToInt はSQLiteのINTEGERカラム向けに真偽値を変換する。
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
