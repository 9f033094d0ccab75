package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yobidashi/backend/internal/push"
	"github.com/yobidashi/backend/pkg/middleware"
)

// handleMe は認証済みユーザー自身のプロフィールを返すハンドラ。
func (s *Server) handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := middleware.CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{
			"id":        u.ID,
			"username":  u.Username,
			"email":     u.Email,
			"settings":  u.SettingsWithDefaults(),
			"joined_at": u.JoinedAt.Format(time.RFC3339),
		})
	}
}

// handleGetSettings は認証済みユーザーの設定を返すハンドラ。
// 認識される全項目が保存値またはデフォルト値で揃って返る。
func (s *Server) handleGetSettings() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := middleware.CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"settings": u.SettingsWithDefaults()})
	}
}

// updateSettingsRequest は設定更新リクエストのJSON構造。
type updateSettingsRequest struct {
	// Settings は更新する設定項目の部分集合。
	Settings map[string]any `json:"settings"`
}

// handleUpdateSettings は認証済みユーザーの設定をマージ更新するハンドラ。
func (s *Server) handleUpdateSettings() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.Settings) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "更新する設定項目を指定してください"})
			return
		}

		u := middleware.CurrentUser(c)
		if err := u.MergeSettings(req.Settings); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := s.users.UpdateSettings(c.Request.Context(), u.ID, u.Settings); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "設定の保存に失敗しました"})
			log.Printf("設定保存エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"settings": u.SettingsWithDefaults()})
	}
}

// registerPushTokenRequest はプッシュトークン登録リクエストのJSON構造。
type registerPushTokenRequest struct {
	// Token はクライアントが取得したExpoプッシュトークン。
	Token string `json:"token"`
}

// handleRegisterPushToken はプッシュ配信先トークンを登録するハンドラ。
// クライアントの再登録により同一トークンが重複して追加されることが
// あるが、ファンアウト時の重複排除で解消される。
func (s *Server) handleRegisterPushToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerPushTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "トークンが指定されていません"})
			return
		}
		if !push.IsValidPushToken(req.Token) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "トークンの形式が不正です"})
			return
		}

		u := middleware.CurrentUser(c)
		tokens := append(u.PushTokens, req.Token)
		if err := s.users.SavePushTokens(c.Request.Context(), u.ID, tokens); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの保存に失敗しました"})
			log.Printf("プッシュトークン保存エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "プッシュトークンを登録しました"})
	}
}
