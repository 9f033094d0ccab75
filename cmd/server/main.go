// 呼び出しバックエンドのエントリポイント。
// アカウント管理と召喚・メッセージ・カードドローの
// プッシュ通知ファンアウトを単一のHTTPサービスとして提供する。
package main

import (
	"log"
	"os"

	"github.com/yobidashi/backend/internal/server"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv, err := server.NewServer(port)
	if err != nil {
		log.Fatalf("サーバーの初期化に失敗: %v", err)
	}

	log.Printf("呼び出しバックエンドを起動します: :%s", port)
	if err := srv.Run(); err != nil {
		log.Fatalf("サーバーの起動に失敗: %v", err)
	}
}
