// Package mail はメール送信の契約とSMTPによる実装を提供する。
//
// 送信失敗は呼び出し元のリクエストを500に落とすが、プロセスは
// 死なせない。テストではSenderを差し替える。
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Message は送信するメール1通分の内容。
type Message struct {
	// From は差出人アドレス。
	From string
	// To は宛先アドレス。
	To string
	// Subject は件名。
	Subject string
	// Body は本文（プレーンテキスト）。
	Body string
}

// Sender はメール送信の契約。
type Sender interface {
	// Send はメールを1通送信する。
	Send(ctx context.Context, msg Message) error
}

// SMTPSender はnet/smtpによるSender実装。
type SMTPSender struct {
	// host はSMTPサーバーのホスト名。
	host string
	// addr は接続先（host:port）。
	addr string
	// username と password は認証情報。空の場合は認証なしで送信する。
	username string
	password string
}

// NewSMTPSender は新しいSMTP送信クライアントを生成する。
func NewSMTPSender(host, port, username, password string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		addr:     host + ":" + port,
		username: username,
		password: password,
	}
}

// Send はSMTPでメールを1通送信する。
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("メール送信がキャンセルされた: %w", err)
	}

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(s.addr, auth, msg.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("SMTP送信に失敗: %w", err)
	}
	return nil
}
