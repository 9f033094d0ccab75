package mail

import (
	"strings"
	"testing"
)

// TestNewVerificationMessage はNewVerificationMessage関数を検証する。
func TestNewVerificationMessage(t *testing.T) {
	t.Parallel()

	t.Run("確認リンクとユーザー名が本文に含まれること", func(t *testing.T) {
		t.Parallel()

		msg, err := NewVerificationMessage(
			"support@yobidashi.app", "momiji@example.com", "momiji",
			"https://yobidashi.app", "token-abc123")
		if err != nil {
			t.Fatalf("NewVerificationMessage()でエラーが発生: %v", err)
		}

		if msg.From != "support@yobidashi.app" {
			t.Errorf("From = %q, want %q", msg.From, "support@yobidashi.app")
		}
		if msg.To != "momiji@example.com" {
			t.Errorf("To = %q, want %q", msg.To, "momiji@example.com")
		}
		if msg.Subject == "" {
			t.Error("Subjectが空")
		}
		if !strings.Contains(msg.Body, "Hi momiji,") {
			t.Errorf("本文にユーザー名が含まれていない: %q", msg.Body)
		}
		if !strings.Contains(msg.Body, "https://yobidashi.app/verify-email/token-abc123") {
			t.Errorf("本文に確認リンクが含まれていない: %q", msg.Body)
		}
	})

	t.Run("ベースURL末尾のスラッシュが二重にならないこと", func(t *testing.T) {
		t.Parallel()

		msg, err := NewVerificationMessage(
			"support@yobidashi.app", "momiji@example.com", "momiji",
			"https://yobidashi.app/", "token-abc123")
		if err != nil {
			t.Fatalf("NewVerificationMessage()でエラーが発生: %v", err)
		}
		if strings.Contains(msg.Body, "yobidashi.app//verify-email") {
			t.Errorf("確認リンクのスラッシュが二重になっている: %q", msg.Body)
		}
	})
}
