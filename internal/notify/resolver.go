package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/yobidashi/backend/internal/user"
)

// ErrUnknownSubject は未登録のイベント種別が渡されたことを表す。
// 黙って宛先ゼロとして扱うのではなく、明示的にエラーにする。
var ErrUnknownSubject = errors.New("未知の通知イベント種別")

// MaxMessageBodyLength は通知本文に載せるメッセージの最大文字数。
const MaxMessageBodyLength = 64

// truncationMarker は切り詰めが発生したことを示すマーカー。
const truncationMarker = "…"

// purposeDescriptions は召喚目的コードから説明文へのマッピング。
var purposeDescriptions = map[string]string{
	"hang": "looking to hang out",
	"talk": "looking for someone to talk to",
	"help": "in need of assistance",
	"play": "looking for a playmate",
}

// defaultPurposeDescription は未知の目的コードに対するフォールバック。
const defaultPurposeDescription = "up to something mysterious"

// UserDirectory はResolverが宛先解決に使用するユーザー検索の契約。
type UserDirectory interface {
	// ListExcept は指定したID以外の全ユーザーを返す。
	ListExcept(ctx context.Context, excludeID string) ([]*user.User, error)
	// FindByIDs は指定したID群に一致するユーザーを返す。
	FindByIDs(ctx context.Context, ids []string) ([]*user.User, error)
	// FindByID はIDでユーザーを検索する。存在しない場合はuser.ErrNotFound。
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// Resolution は通知イベントの解決結果。
type Resolution struct {
	// Recipients は宛先候補のユーザー集合。許可フィルタ適用前。
	Recipients []*user.User
	// Title は通知のタイトル。
	Title string
	// Body は通知の本文。
	Body string
	// PermissionFlag は配信可否を決める設定項目名。
	PermissionFlag string
}

// Resolver は通知イベントを宛先と通知内容に解決する。
type Resolver struct {
	// users は宛先解決に使用するユーザーディレクトリ。
	users UserDirectory
}

// NewResolver は新しいResolverを生成する。
func NewResolver(users UserDirectory) *Resolver {
	return &Resolver{users: users}
}

// Resolve はイベントと送信者から解決結果を生成する。
// 未登録のバリアントに対してはErrUnknownSubjectを返す。
func (r *Resolver) Resolve(ctx context.Context, sender *user.User, ev Event) (*Resolution, error) {
	switch ev := ev.(type) {
	case SummonEvent:
		return r.resolveSummon(ctx, sender, ev)
	case MessageEvent:
		return r.resolveMessage(ctx, sender, ev)
	case CardDrawEvent:
		return r.resolveCardDraw(ctx, sender, ev)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubject, ev.subject())
	}
}

// resolveSummon は召喚イベントを解決する。宛先は送信者以外の全ユーザー。
func (r *Resolver) resolveSummon(ctx context.Context, sender *user.User, ev SummonEvent) (*Resolution, error) {
	recipients, err := r.users.ListExcept(ctx, sender.ID)
	if err != nil {
		return nil, fmt.Errorf("召喚の宛先解決に失敗: %w", err)
	}

	name := sender.DisplayName()
	return &Resolution{
		Recipients:     recipients,
		Title:          fmt.Sprintf("%s is summoning", name),
		Body:           fmt.Sprintf("%s is %s.", name, purposeDescription(ev.Purpose)),
		PermissionFlag: user.SettingSendSummoningNotifications,
	}, nil
}

// resolveMessage はメッセージイベントを解決する。
// 宛先は明示されたIDのうち送信者を除いたもの。
func (r *Resolver) resolveMessage(ctx context.Context, sender *user.User, ev MessageEvent) (*Resolution, error) {
	ids := make([]string, 0, len(ev.RecipientIDs))
	for _, id := range ev.RecipientIDs {
		if id != sender.ID {
			ids = append(ids, id)
		}
	}

	recipients, err := r.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("メッセージの宛先解決に失敗: %w", err)
	}

	summonerName, err := r.summonerName(ctx, sender, ev.SummonerID)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Recipients:     recipients,
		Title:          fmt.Sprintf("%s @ %s's summoning", sender.DisplayName(), summonerName),
		Body:           TruncateBody(ev.Text),
		PermissionFlag: user.SettingSendChatNotifications,
	}, nil
}

// resolveCardDraw はカードドローイベントを解決する。宛先は送信者以外の全ユーザー。
func (r *Resolver) resolveCardDraw(ctx context.Context, sender *user.User, ev CardDrawEvent) (*Resolution, error) {
	recipients, err := r.users.ListExcept(ctx, sender.ID)
	if err != nil {
		return nil, fmt.Errorf("カードドローの宛先解決に失敗: %w", err)
	}

	name := sender.DisplayName()
	return &Resolution{
		Recipients:     recipients,
		Title:          fmt.Sprintf("%s is drawing a card", name),
		Body:           fmt.Sprintf("%s drew %s.", name, ev.CardName),
		PermissionFlag: user.SettingSendTarotNotifications,
	}, nil
}

// summonerName は召喚主の表示名を解決する。
// IDが空、送信者自身、または該当ユーザーが存在しない場合は送信者の表示名にフォールバックする。
func (r *Resolver) summonerName(ctx context.Context, sender *user.User, summonerID string) (string, error) {
	if summonerID == "" || summonerID == sender.ID {
		return sender.DisplayName(), nil
	}
	summoner, err := r.users.FindByID(ctx, summonerID)
	if errors.Is(err, user.ErrNotFound) {
		return sender.DisplayName(), nil
	}
	if err != nil {
		return "", fmt.Errorf("召喚主の解決に失敗: %w", err)
	}
	return summoner.DisplayName(), nil
}

// purposeDescription は目的コードを説明文に変換する。
func purposeDescription(purpose string) string {
	if desc, ok := purposeDescriptions[purpose]; ok {
		return desc
	}
	return defaultPurposeDescription
}

// TruncateBody は本文をMaxMessageBodyLength文字以内に収める。
// 超過する場合はMaxMessageBodyLength-1文字に切り詰めてマーカーを付加する。
func TruncateBody(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxMessageBodyLength {
		return text
	}
	return string(runes[:MaxMessageBodyLength-1]) + truncationMarker
}
