package user

import "fmt"

// 設定項目名。
const (
	// SettingDisplayName は表示名。空の場合はユーザー名が使われる。
	SettingDisplayName = "displayName"
	// SettingAbout は自己紹介文。
	SettingAbout = "about"
	// SettingPronouns は代名詞表記。
	SettingPronouns = "pronouns"
	// SettingSendSummoningNotifications は召喚通知の受信可否。
	SettingSendSummoningNotifications = "sendSummoningNotifications"
	// SettingSendChatNotifications はチャット通知の受信可否。
	SettingSendChatNotifications = "sendChatNotifications"
	// SettingSendTarotNotifications はタロット通知の受信可否。
	SettingSendTarotNotifications = "sendTarotNotifications"
)

// settingsDefaults は認識される全設定項目とそのデフォルト値。
// ここに無いキーは設定として受け付けない。
var settingsDefaults = map[string]any{
	SettingDisplayName:                "",
	SettingAbout:                      "",
	SettingPronouns:                   "",
	SettingSendSummoningNotifications: true,
	SettingSendChatNotifications:      true,
	SettingSendTarotNotifications:     true,
}

// SettingsDefaults は認識される全設定項目とデフォルト値のコピーを返す。
func SettingsDefaults() map[string]any {
	defaults := make(map[string]any, len(settingsDefaults))
	for k, v := range settingsDefaults {
		defaults[k] = v
	}
	return defaults
}

// SettingsWithDefaults は保存値とデフォルト値をマージした設定を返す。
// 認識される全項目が必ず含まれる。
func (u *User) SettingsWithDefaults() map[string]any {
	merged := SettingsDefaults()
	for k, v := range u.Settings {
		if _, ok := settingsDefaults[k]; ok {
			merged[k] = v
		}
	}
	return merged
}

// BoolSetting は指定項目が明示的にtrueとして保存されているか、
// または未保存でデフォルトがtrueの場合にtrueを返す。
func (u *User) BoolSetting(name string) bool {
	if v, ok := u.Settings[name]; ok {
		b, isBool := v.(bool)
		return isBool && b
	}
	b, _ := settingsDefaults[name].(bool)
	return b
}

// StringSetting は指定項目の文字列値を返す。未保存の場合はデフォルト値。
func (u *User) StringSetting(name string) string {
	if v, ok := u.Settings[name]; ok {
		if s, isString := v.(string); isString {
			return s
		}
	}
	s, _ := settingsDefaults[name].(string)
	return s
}

// DisplayName は表示名を返す。未設定の場合はユーザー名にフォールバックする。
func (u *User) DisplayName() string {
	if name := u.StringSetting(SettingDisplayName); name != "" {
		return name
	}
	return u.Username
}

// MergeSettings はpatchの内容を設定にマージする。
// 未認識のキー、またはデフォルト値と型が一致しない値はエラーになる。
func (u *User) MergeSettings(patch map[string]any) error {
	for k, v := range patch {
		def, ok := settingsDefaults[k]
		if !ok {
			return fmt.Errorf("未認識の設定項目: %q", k)
		}
		switch def.(type) {
		case bool:
			if _, isBool := v.(bool); !isBool {
				return fmt.Errorf("設定項目 %q には真偽値を指定してください", k)
			}
		case string:
			if _, isString := v.(string); !isString {
				return fmt.Errorf("設定項目 %q には文字列を指定してください", k)
			}
		}
		if u.Settings == nil {
			u.Settings = make(map[string]any)
		}
		u.Settings[k] = v
	}
	return nil
}
