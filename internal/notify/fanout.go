package notify

import (
	"context"
	"log"
	"sync"

	"github.com/yobidashi/backend/internal/user"
)

// TargetSaver はファンアウト中の重複排除結果をユーザーごとに書き戻す契約。
type TargetSaver interface {
	// SavePushTokens はユーザーのプッシュトークン一覧を置き換える。
	SavePushTokens(ctx context.Context, userID string, tokens []string) error
}

// Pusher は一括プッシュ配信の契約。
type Pusher interface {
	// SendBatch は全配信先に同一のタイトル・本文を一括送信する。
	SendBatch(ctx context.Context, targets []string, title, body string) error
}

// Engine は解決済み通知の配信ファンアウトを実行する。
type Engine struct {
	// store は重複排除結果の書き戻し先。
	store TargetSaver
	// push はプッシュ配信トランスポート。
	push Pusher
}

// NewEngine は新しいファンアウトエンジンを生成する。
func NewEngine(store TargetSaver, push Pusher) *Engine {
	return &Engine{store: store, push: push}
}

// Deliver は解決済み通知を配信する。
//
//  1. 許可フラグが有効な宛先だけを残す
//  2. 宛先ごとにプッシュトークンを重複排除し、並行して書き戻す。
//     個々の書き戻し失敗はログに記録するだけで他の宛先を妨げない
//  3. 重複排除済みトークンを全宛先分連結する（宛先間では重複排除しない）
//  4. 連結結果が空でなければ一括配信を1回だけ呼び出す
//
// 配信結果は呼び出し元へ返らない。送信者のリクエスト成否とは独立した
// ベストエフォートの処理であり、ハンドラからはgoroutineで起動される。
func (e *Engine) Deliver(ctx context.Context, res *Resolution) {
	var eligible []*user.User
	for _, r := range res.Recipients {
		if r.BoolSetting(res.PermissionFlag) {
			eligible = append(eligible, r)
		}
	}
	if len(eligible) == 0 {
		return
	}

	// 書き戻しはユーザー単位で独立しており、順序保証なく並行に進む
	deduped := make([][]string, len(eligible))
	var wg sync.WaitGroup
	for i, recipient := range eligible {
		wg.Add(1)
		go func(i int, recipient *user.User) {
			defer wg.Done()
			tokens := dedupeTokens(recipient.PushTokens)
			deduped[i] = tokens
			if err := e.store.SavePushTokens(ctx, recipient.ID, tokens); err != nil {
				log.Printf("[Fanout] ユーザー %s のトークン書き戻しに失敗: %v", recipient.ID, err)
			}
		}(i, recipient)
	}
	wg.Wait()

	var targets []string
	for _, tokens := range deduped {
		targets = append(targets, tokens...)
	}
	if len(targets) == 0 {
		return
	}

	if err := e.push.SendBatch(ctx, targets, res.Title, res.Body); err != nil {
		log.Printf("[Fanout] 一括配信に失敗: %v", err)
	}
}

// dedupeTokens はトークンの重複を取り除く。初出順は維持される。
func dedupeTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	deduped := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		deduped = append(deduped, t)
	}
	return deduped
}
