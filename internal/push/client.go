// Package push はExpoプッシュ通知サービスへの配信クライアントを提供する。
//
// 配信はベストエフォートであり、レシートの追跡や再送は行わない。
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// DefaultBaseURL はExpoプッシュAPIのベースURL。
const DefaultBaseURL = "https://exp.host"

// sendPath は一括配信エンドポイントのパス。
const sendPath = "/--/api/v2/push/send"

// pushTokenPattern はExpoプッシュトークンの形式。
var pushTokenPattern = regexp.MustCompile(`^Expo(nent)?PushToken\[[^\[\]]+\]$`)

// IsValidPushToken は文字列がExpoプッシュトークンの形式かどうかを返す。
func IsValidPushToken(s string) bool {
	return pushTokenPattern.MatchString(s)
}

// Client はExpoプッシュAPIへのHTTPクライアント。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先のベースURL。テストで差し替えられる。
	baseURL string
}

// NewClient は新しいプッシュ配信クライアントを生成する。
// baseURLが空の場合はDefaultBaseURLを使用する。
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

// message はExpoプッシュAPIの1通知分のJSON構造。
type message struct {
	// To は配信先のプッシュトークン。
	To string `json:"to"`
	// Title は通知のタイトル。
	Title string `json:"title"`
	// Body は通知の本文。
	Body string `json:"body"`
	// Sound は通知音。
	Sound string `json:"sound"`
}

// SendBatch は全配信先に同一のタイトル・本文を1回のリクエストで送信する。
// 配信先が空の場合は何もしない。
func (c *Client) SendBatch(ctx context.Context, targets []string, title, body string) error {
	if len(targets) == 0 {
		return nil
	}

	messages := make([]message, 0, len(targets))
	for _, target := range targets {
		messages = append(messages, message{
			To:    target,
			Title: title,
			Body:  body,
			Sound: "default",
		})
	}

	jsonBody, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("配信リクエストのシリアライズに失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("プッシュAPIエラー: status=%d, body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}
