// Package user はユーザーモデルとSQLiteベースのユーザーストアを提供する。
//
// 設定（settings）とプッシュトークンはJSONカラムとして保持し、
// ドキュメント指向だった元のユーザーレコードの形を1テーブルに収める。
package user

import (
	"errors"
	"time"
)

// ErrNotFound は該当するユーザーが存在しないことを表す。
var ErrNotFound = errors.New("ユーザーが見つかりません")

// User は登録済みユーザーを表す。
type User struct {
	// ID はユーザーの一意識別子（UUID）。
	ID string
	// Username は一意のユーザー名。
	Username string
	// Email は一意のメールアドレス。
	Email string
	// PasswordHash はbcryptでハッシュ化されたパスワード。
	PasswordHash string
	// Verified はメールアドレスの確認が完了しているかどうか。
	Verified bool
	// VerificationToken はメール確認用トークン。確認後は空になる。
	VerificationToken string
	// VerificationExpiry はメール確認トークンの有効期限。
	VerificationExpiry time.Time
	// Settings はユーザー設定。認識される項目のみ格納される。
	Settings map[string]any
	// PushTokens は登録済みのプッシュ配信先トークン。
	// クライアントの再登録により重複が混入しうる。
	PushTokens []string
	// JoinedAt は登録日時。
	JoinedAt time.Time
	// LastOnline は最終オンライン日時。
	LastOnline time.Time
}
