package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yobidashi/backend/internal/user"
	"github.com/yobidashi/backend/pkg/token"
)

// contextKeyCurrentUser は認証済みユーザーをginコンテキストに格納するキー。
const contextKeyCurrentUser = "current_user"

// UserFinder は認証ゲートが使用するユーザー検索の契約。
type UserFinder interface {
	// FindByID はIDでユーザーを検索する。
	// 存在しない場合はuser.ErrNotFoundを返す。
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// Auth は保護されたAPIへの全リクエストを検証するGinミドルウェアを返す。
//
// 資格情報が無い、またはトークン検証に失敗した場合は401を返す。
// トークンは有効だが対応するユーザーが存在しない場合は404を返す
// （アカウント消滅はクライアント側の対処が異なるため401と区別する）。
// 検証を通過したリクエストには解決済みユーザーがコンテキストに
// 設定され、以降のハンドラから参照できる。
func Auth(tokens *token.Service, issuer string, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// 資格情報が無い場合はストアに触れずに拒否する
			log.Printf("[Auth] 認証ヘッダーなし: %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "このAPIへのアクセスには認証が必要です",
			})
			return
		}

		// "Bearer xxx" 形式と素のトークンの両方を受け付ける
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subjectID, ok := tokens.Verify(tokenString, issuer)
		if !ok {
			log.Printf("[Auth] トークン検証に失敗: %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "このAPIへのアクセスには認証が必要です",
			})
			return
		}

		u, err := users.FindByID(c.Request.Context(), subjectID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"error": "このトークンに対応するユーザーが登録されていません",
				})
				return
			}
			log.Printf("[Auth] ユーザー検索に失敗: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "ユーザー情報の取得に失敗しました",
			})
			return
		}

		c.Set(contextKeyCurrentUser, u)
		c.Next()
	}
}

// CurrentUser はGinコンテキストから認証済みユーザーを取得する。
// Authミドルウェアが事前に適用されている必要がある。
func CurrentUser(c *gin.Context) *user.User {
	v, ok := c.Get(contextKeyCurrentUser)
	if !ok {
		return nil
	}
	u, ok := v.(*user.User)
	if !ok {
		return nil
	}
	return u
}
