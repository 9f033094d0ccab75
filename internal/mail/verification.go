package mail

import (
	"fmt"
	"strings"
	"text/template"
)

// verificationTemplate は新規登録時の確認メール本文のテンプレート。
var verificationTemplate = template.Must(template.New("verification").Parse(`Hi {{.Username}},

You are receiving this because you have created a new account with this email.

Please click on the following link, or paste it into your browser, to verify your email:

{{.BaseURL}}/verify-email/{{.Token}}

If you did not create an account, please ignore and delete this email. The link will expire in an hour.
`))

// verificationParams は確認メールテンプレートに渡すデータ。
type verificationParams struct {
	Username string
	BaseURL  string
	Token    string
}

// NewVerificationMessage は新規登録者向けの確認メールを組み立てる。
// baseURLはクライアントが確認リンクを開くためのベースURL。
func NewVerificationMessage(from, to, username, baseURL, token string) (Message, error) {
	var body strings.Builder
	params := verificationParams{
		Username: username,
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		Token:    token,
	}
	if err := verificationTemplate.Execute(&body, params); err != nil {
		return Message{}, fmt.Errorf("確認メールの組み立てに失敗: %w", err)
	}

	return Message{
		From:    from,
		To:      to,
		Subject: "New user verification",
		Body:    body.String(),
	}, nil
}
