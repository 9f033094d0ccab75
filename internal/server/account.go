package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yobidashi/backend/internal/mail"
	"github.com/yobidashi/backend/internal/user"
)

// verificationTokenTTL はメール確認トークンの有効期間。
const verificationTokenTTL = time.Hour

// reservedUsernames は登録を受け付けないユーザー名の一覧。
var reservedUsernames = map[string]struct{}{
	"admin":     {},
	"api":       {},
	"help":      {},
	"login":     {},
	"mail":      {},
	"register":  {},
	"root":      {},
	"settings":  {},
	"support":   {},
	"system":    {},
	"www":       {},
	"yobidashi": {},
}

// registerRequest は新規登録リクエストのJSON構造。
type registerRequest struct {
	// Email はメールアドレス。
	Email string `json:"email"`
	// Password は平文パスワード。保存前にハッシュ化される。
	Password string `json:"password"`
	// Username は希望するユーザー名。
	Username string `json:"username"`
}

// handleRegister は新規ユーザー登録のハンドラ。
// 登録成功時に確認メールを送信する。ログインはメール確認後に可能になる。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です"})
			return
		}
		if req.Email == "" || req.Password == "" || req.Username == "" {
			c.JSON(http.StatusNotAcceptable, gin.H{"error": "必須項目（email, password, username）が空です"})
			return
		}

		ctx := c.Request.Context()

		// ユーザー名の重複と予約語のチェック
		if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "このユーザー名は使用できません"})
			return
		} else if !errors.Is(err, user.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "登録処理に失敗しました"})
			log.Printf("ユーザー名検索エラー: %v", err)
			return
		}
		if _, ok := reservedUsernames[req.Username]; ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "このユーザー名は使用できません"})
			return
		}

		// メールアドレスの重複チェック
		if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "このメールアドレスのアカウントは既に存在します"})
			return
		} else if !errors.Is(err, user.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "登録処理に失敗しました"})
			log.Printf("メールアドレス検索エラー: %v", err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "登録処理に失敗しました"})
			log.Printf("パスワードハッシュ化エラー: %v", err)
			return
		}

		newUser := &user.User{
			ID:                 uuid.New().String(),
			Username:           req.Username,
			Email:              req.Email,
			PasswordHash:       string(hash),
			VerificationToken:  uuid.New().String(),
			VerificationExpiry: time.Now().Add(verificationTokenTTL).UTC(),
			JoinedAt:           time.Now().UTC(),
		}
		if err := s.users.Create(ctx, newUser); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "登録処理に失敗しました"})
			log.Printf("ユーザー作成エラー: %v", err)
			return
		}

		msg, err := mail.NewVerificationMessage(
			s.mailFrom, newUser.Email, newUser.Username, s.frontendURL, newUser.VerificationToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "登録処理に失敗しました"})
			log.Printf("確認メール組み立てエラー: %v", err)
			return
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "登録処理に失敗しました"})
			log.Printf("確認メール送信エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "確認メールを送信しました"})
	}
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Email はメールアドレス。
	Email string `json:"email"`
	// Password は平文パスワード。
	Password string `json:"password"`
}

// handleLogin はログインのハンドラ。
// 認証に成功するとステートレスなトークンを返す。
// 失敗理由（未登録・未確認・パスワード不一致）はレスポンスから区別できない。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
			return
		}

		ctx := c.Request.Context()
		u, err := s.users.FindByEmail(ctx, req.Email)
		if errors.Is(err, user.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ログイン処理に失敗しました"})
			log.Printf("ログイン時のユーザー検索エラー: %v", err)
			return
		}

		if !u.Verified {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
			return
		}

		tokenStr, err := s.tokens.Issue(u.ID, issuer)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの発行に失敗しました"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}

		if err := s.users.TouchLastOnline(ctx, u.ID); err != nil {
			// 最終オンライン日時はベストエフォートで更新する
			log.Printf("最終オンライン日時の更新に失敗: %v", err)
		}

		c.JSON(http.StatusOK, gin.H{"token": tokenStr})
	}
}

// handleVerifyEmail はメールアドレス確認のハンドラ。
// 確認メール内のリンクから呼び出される。
func (s *Server) handleVerifyEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		verificationToken := c.Param("token")

		ctx := c.Request.Context()
		u, err := s.users.FindByVerificationToken(ctx, verificationToken)
		if errors.Is(err, user.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "確認トークンが見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "メール確認処理に失敗しました"})
			log.Printf("確認トークン検索エラー: %v", err)
			return
		}

		if time.Now().After(u.VerificationExpiry) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "確認トークンの有効期限が切れています"})
			return
		}

		if err := s.users.MarkVerified(ctx, u.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "メール確認処理に失敗しました"})
			log.Printf("メール確認エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "メールアドレスを確認しました"})
	}
}
