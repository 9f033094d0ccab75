package server

import (
	"context"
	"log"
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yobidashi/backend/internal/notify"
	"github.com/yobidashi/backend/pkg/middleware"
)

// majorArcana はサーバー側でドローする大アルカナのカード名一覧。
var majorArcana = []string{
	"The Fool", "The Magician", "The High Priestess", "The Empress",
	"The Emperor", "The Hierophant", "The Lovers", "The Chariot",
	"Strength", "The Hermit", "Wheel of Fortune", "Justice",
	"The Hanged Man", "Death", "Temperance", "The Devil",
	"The Tower", "The Star", "The Moon", "The Sun",
	"Judgement", "The World",
}

// dispatch は解決済み通知をバックグラウンドで配信する。
// 配信の成否はリクエストの成否に影響しない。リクエストのコンテキストは
// レスポンス後にキャンセルされるため、配信には使わない。
func (s *Server) dispatch(res *notify.Resolution) {
	go s.engine.Deliver(context.Background(), res)
}

// summonRequest は召喚リクエストのJSON構造。
type summonRequest struct {
	// Purpose は召喚目的コード。
	Purpose string `json:"purpose"`
}

// handleSummon は召喚を発動するハンドラ。
// 送信者以外の全ユーザーへ通知がファンアウトされる。
func (s *Server) handleSummon() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req summonRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Purpose == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "召喚目的を指定してください"})
			return
		}

		sender := middleware.CurrentUser(c)
		res, err := s.resolver.Resolve(c.Request.Context(), sender, notify.SummonEvent{Purpose: req.Purpose})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "召喚の処理に失敗しました"})
			log.Printf("召喚の解決エラー: %v", err)
			return
		}
		s.dispatch(res)

		c.JSON(http.StatusOK, gin.H{"message": "召喚を発動しました"})
	}
}

// messageRequest はメッセージ送信リクエストのJSON構造。
type messageRequest struct {
	// RecipientIDs は宛先ユーザーIDのリスト。
	RecipientIDs []string `json:"recipient_ids"`
	// Text はメッセージ本文。
	Text string `json:"text"`
	// SummonerID はメッセージが属する召喚スレッドの召喚主。省略可。
	SummonerID string `json:"summoner_id"`
}

// handleMessage は召喚スレッド内のメッセージを通知するハンドラ。
// 宛先リストに送信者自身が含まれていても通知は送られない。
func (s *Server) handleMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req messageRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" || len(req.RecipientIDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "宛先と本文を指定してください"})
			return
		}

		sender := middleware.CurrentUser(c)
		res, err := s.resolver.Resolve(c.Request.Context(), sender, notify.MessageEvent{
			RecipientIDs: req.RecipientIDs,
			Text:         req.Text,
			SummonerID:   req.SummonerID,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "メッセージの処理に失敗しました"})
			log.Printf("メッセージの解決エラー: %v", err)
			return
		}
		s.dispatch(res)

		c.JSON(http.StatusOK, gin.H{"message": "メッセージを送信しました"})
	}
}

// drawRequest はカードドローリクエストのJSON構造。
type drawRequest struct {
	// Card は引いたカードの名前。省略時はサーバー側でドローする。
	Card string `json:"card"`
}

// handleDraw はタロットカードのドローを通知するハンドラ。
func (s *Server) handleDraw() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req drawRequest
		// ボディ省略も許容する
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です"})
			return
		}

		card := req.Card
		if card == "" {
			card = majorArcana[rand.Intn(len(majorArcana))]
		}

		sender := middleware.CurrentUser(c)
		res, err := s.resolver.Resolve(c.Request.Context(), sender, notify.CardDrawEvent{CardName: card})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "カードドローの処理に失敗しました"})
			log.Printf("カードドローの解決エラー: %v", err)
			return
		}
		s.dispatch(res)

		c.JSON(http.StatusOK, gin.H{"card": card})
	}
}
