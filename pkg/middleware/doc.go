// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// 保護されたAPIへの認証ゲート、パニックリカバリ、CORS設定を含む。
// 認証ゲートはトークンサービスとユーザーストアを組み合わせ、
// リクエスト処理の前に認証済みユーザーをコンテキストへ解決する。
package middleware
