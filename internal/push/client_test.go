package push

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestIsValidPushToken はIsValidPushToken関数を検証する。
func TestIsValidPushToken(t *testing.T) {
	t.Parallel()

	t.Run("正しい形式のトークンが受理されること", func(t *testing.T) {
		t.Parallel()

		valid := []string{
			"ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]",
			"ExpoPushToken[abc123-DEF456]",
		}
		for _, token := range valid {
			if !IsValidPushToken(token) {
				t.Errorf("IsValidPushToken(%q) = false, want true", token)
			}
		}
	})

	t.Run("不正な形式のトークンが拒否されること", func(t *testing.T) {
		t.Parallel()

		invalid := []string{
			"",
			"not-a-token",
			"ExponentPushToken[]",
			"ExponentPushToken[abc",
			"exponentpushtoken[abc]",
			"FCMToken[abc]",
			"prefix ExponentPushToken[abc]",
		}
		for _, token := range invalid {
			if IsValidPushToken(token) {
				t.Errorf("IsValidPushToken(%q) = true, want false", token)
			}
		}
	})
}

// TestSendBatch はSendBatch関数を検証する。
func TestSendBatch(t *testing.T) {
	t.Parallel()

	t.Run("全配信先が1回のリクエストにまとめられること", func(t *testing.T) {
		t.Parallel()

		var (
			requests int
			path     string
			received []message
		)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			path = r.URL.Path
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &received); err != nil {
				t.Errorf("リクエストボディのパースに失敗: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":[]}`))
		}))
		defer ts.Close()

		client := NewClient(ts.URL)
		targets := []string{"ExponentPushToken[a]", "ExponentPushToken[b]", "ExponentPushToken[c]"}
		if err := client.SendBatch(context.Background(), targets, "呼び出しです", "集まりましょう"); err != nil {
			t.Fatalf("SendBatch()でエラーが発生: %v", err)
		}

		if requests != 1 {
			t.Errorf("リクエスト回数 = %d, want 1", requests)
		}
		if path != sendPath {
			t.Errorf("パス = %q, want %q", path, sendPath)
		}
		if len(received) != 3 {
			t.Fatalf("メッセージ数 = %d, want 3", len(received))
		}
		for i, m := range received {
			if m.To != targets[i] {
				t.Errorf("received[%d].To = %q, want %q", i, m.To, targets[i])
			}
			if m.Title != "呼び出しです" {
				t.Errorf("received[%d].Title = %q, want %q", i, m.Title, "呼び出しです")
			}
			if m.Body != "集まりましょう" {
				t.Errorf("received[%d].Body = %q, want %q", i, m.Body, "集まりましょう")
			}
		}
	})

	t.Run("配信先が空の場合はリクエストが発生しないこと", func(t *testing.T) {
		t.Parallel()

		requests := 0
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests++
			w.Write([]byte(`{"data":[]}`))
		}))
		defer ts.Close()

		client := NewClient(ts.URL)
		if err := client.SendBatch(context.Background(), nil, "t", "b"); err != nil {
			t.Fatalf("SendBatch()でエラーが発生: %v", err)
		}
		if requests != 0 {
			t.Errorf("リクエスト回数 = %d, want 0", requests)
		}
	})

	t.Run("サーバーエラーがエラーとして返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"errors":[{"code":"PUSH_TOO_MANY_EXPERIENCE_IDS"}]}`))
		}))
		defer ts.Close()

		client := NewClient(ts.URL)
		err := client.SendBatch(context.Background(), []string{"ExponentPushToken[a]"}, "t", "b")
		if err == nil {
			t.Fatal("SendBatch()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("キャンセルされたコンテキストでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"data":[]}`))
		}))
		defer ts.Close()

		client := NewClient(ts.URL)
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // 即座にキャンセル

		err := client.SendBatch(ctx, []string{"ExponentPushToken[a]"}, "t", "b")
		if err == nil {
			t.Fatal("SendBatch()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("ベースURL未指定の場合はデフォルトが使われること", func(t *testing.T) {
		t.Parallel()

		client := NewClient("")
		if client.baseURL != DefaultBaseURL {
			t.Errorf("baseURL = %q, want %q", client.baseURL, DefaultBaseURL)
		}
	})
}
