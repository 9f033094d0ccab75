// Package server は召喚SNSバックエンドのHTTP APIサーバーを提供する。
//
// アカウント登録・ログイン、プロフィール設定、プッシュトークン登録、
// 召喚・メッセージ・カードドローの通知エンドポイントを持つ。
// 保護されたAPIは認証ゲートを通過したリクエストのみ処理する。
package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/yobidashi/backend/internal/mail"
	"github.com/yobidashi/backend/internal/notify"
	"github.com/yobidashi/backend/internal/push"
	"github.com/yobidashi/backend/internal/user"
	"github.com/yobidashi/backend/pkg/middleware"
	"github.com/yobidashi/backend/pkg/token"
)

// issuer はこのサービスが発行するトークンのissuerクレーム。
const issuer = "yobidashi.app"

// Server は召喚SNSバックエンドのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// users はユーザーストア。
	users *user.Store
	// tokens は認証トークンサービス。
	tokens *token.Service
	// mailer はメール送信クライアント。
	mailer mail.Sender
	// resolver は通知イベントの解決器。
	resolver *notify.Resolver
	// engine は通知配信のファンアウトエンジン。
	engine *notify.Engine
	// mailFrom は送信メールの差出人アドレス。
	mailFrom string
	// frontendURL はメール内の確認リンクのベースURL。
	frontendURL string
}

// NewServer は新しいサーバーを生成する。
// SQLiteデータベースの初期化、ストア・トークンサービス・
// メール/プッシュクライアントの構築を行う。
func NewServer(port string) (*Server, error) {
	dbPath := getEnvOr("DB_PATH", "/data/yobidashi.db")
	sqlDB, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	users, err := user.NewStore(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("ユーザーストアの初期化に失敗: %w", err)
	}

	tokens := token.NewService(getEnvOr("JWT_SECRET", "dev-secret-key"), 0)
	mailer := mail.NewSMTPSender(
		getEnvOr("SMTP_HOST", "localhost"),
		getEnvOr("SMTP_PORT", "587"),
		os.Getenv("SMTP_USERNAME"),
		os.Getenv("SMTP_PASSWORD"),
	)
	pusher := push.NewClient(os.Getenv("EXPO_PUSH_URL"))

	frontendURL := getEnvOr("FRONTEND_URL", "http://localhost:3000")

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{frontendURL}))

	s := &Server{
		router:      router,
		port:        port,
		db:          sqlDB,
		users:       users,
		tokens:      tokens,
		mailer:      mailer,
		resolver:    notify.NewResolver(users),
		engine:      notify.NewEngine(users, pusher),
		mailFrom:    getEnvOr("MAIL_FROM", "support@yobidashi.app"),
		frontendURL: frontendURL,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証不要のエンドポイント。アカウント作成とログインは
	// 事前の資格情報なしで成功しなければならない
	public := s.router.Group("/api")
	{
		public.POST("/register", s.handleRegister())
		public.POST("/login", s.handleLogin())
		public.GET("/verify-email/:token", s.handleVerifyEmail())
	}

	// 認証必須のエンドポイント
	api := s.router.Group("/api")
	api.Use(middleware.Auth(s.tokens, issuer, s.users))
	{
		// プロフィールと設定
		api.GET("/me", s.handleMe())
		api.GET("/settings", s.handleGetSettings())
		api.POST("/settings", s.handleUpdateSettings())

		// プッシュトークン登録
		api.POST("/expo_token/register", s.handleRegisterPushToken())

		// 通知を発生させるアクション
		api.POST("/summon", s.handleSummon())
		api.POST("/message", s.handleMessage())
		api.POST("/draw", s.handleDraw())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "yobidashi"})
	})
}

// getEnvOr は環境変数の値を返す。未設定の場合はフォールバック値を返す。
func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
