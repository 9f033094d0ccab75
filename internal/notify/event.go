package notify

// Event は通知イベントを表す閉じたタグ付きバリアント。
// subjectメソッドは非公開のため、バリアントの追加はこのパッケージ内で
// Resolverのディスパッチと合わせて行うことになる。
type Event interface {
	subject() string
}

// SummonEvent は召喚イベント。送信者以外の全ユーザーへ通知される。
type SummonEvent struct {
	// Purpose は召喚目的コード。
	Purpose string
}

func (SummonEvent) subject() string { return "summon" }

// MessageEvent は召喚スレッド内のチャットメッセージイベント。
// 明示的に指定された宛先へ通知される。
type MessageEvent struct {
	// RecipientIDs は宛先ユーザーIDのリスト。送信者が含まれていても除外される。
	RecipientIDs []string
	// Text はメッセージ本文。通知時は一定長で切り詰められる。
	Text string
	// SummonerID は召喚主のユーザーID。空の場合は送信者が召喚主として扱われる。
	SummonerID string
}

func (MessageEvent) subject() string { return "message" }

// CardDrawEvent はタロットカードのドローイベント。
// 送信者以外の全ユーザーへ通知される。
type CardDrawEvent struct {
	// CardName は引いたカードの名前。
	CardName string
}

func (CardDrawEvent) subject() string { return "card-draw" }
