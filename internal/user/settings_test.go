package user

import "testing"

// TestSettingsWithDefaults はSettingsWithDefaults関数を検証する。
func TestSettingsWithDefaults(t *testing.T) {
	t.Parallel()

	t.Run("未保存のユーザーでも全項目がデフォルト値で揃うこと", func(t *testing.T) {
		t.Parallel()

		u := &User{Username: "kitsune"}
		settings := u.SettingsWithDefaults()

		if len(settings) != len(settingsDefaults) {
			t.Errorf("設定項目数 = %d, want %d", len(settings), len(settingsDefaults))
		}
		if v, ok := settings[SettingSendSummoningNotifications]; !ok || v != true {
			t.Errorf("%s = %v, want true", SettingSendSummoningNotifications, v)
		}
		if v, ok := settings[SettingDisplayName]; !ok || v != "" {
			t.Errorf("%s = %v, want 空文字列", SettingDisplayName, v)
		}
	})

	t.Run("保存値がデフォルト値を上書きすること", func(t *testing.T) {
		t.Parallel()

		u := &User{
			Username: "kitsune",
			Settings: map[string]any{
				SettingDisplayName:                "お狐様",
				SettingSendSummoningNotifications: false,
			},
		}
		settings := u.SettingsWithDefaults()

		if settings[SettingDisplayName] != "お狐様" {
			t.Errorf("%s = %v, want %q", SettingDisplayName, settings[SettingDisplayName], "お狐様")
		}
		if settings[SettingSendSummoningNotifications] != false {
			t.Errorf("%s = %v, want false", SettingSendSummoningNotifications, settings[SettingSendSummoningNotifications])
		}
		// 未保存の項目はデフォルト値のまま
		if settings[SettingSendChatNotifications] != true {
			t.Errorf("%s = %v, want true", SettingSendChatNotifications, settings[SettingSendChatNotifications])
		}
	})

	t.Run("未認識のキーが保存されていても結果に含まれないこと", func(t *testing.T) {
		t.Parallel()

		u := &User{Settings: map[string]any{"legacyOption": 42}}
		settings := u.SettingsWithDefaults()

		if _, ok := settings["legacyOption"]; ok {
			t.Error("未認識のキーが結果に含まれている")
		}
	})
}

// TestBoolSetting はBoolSetting関数を検証する。
func TestBoolSetting(t *testing.T) {
	t.Parallel()

	t.Run("明示的にtrueが保存されている場合にtrueを返すこと", func(t *testing.T) {
		t.Parallel()

		u := &User{Settings: map[string]any{SettingSendChatNotifications: true}}
		if !u.BoolSetting(SettingSendChatNotifications) {
			t.Error("BoolSetting() = false, want true")
		}
	})

	t.Run("明示的にfalseが保存されている場合にfalseを返すこと", func(t *testing.T) {
		t.Parallel()

		u := &User{Settings: map[string]any{SettingSendChatNotifications: false}}
		if u.BoolSetting(SettingSendChatNotifications) {
			t.Error("BoolSetting() = true, want false")
		}
	})

	t.Run("未保存の場合はデフォルト値を返すこと", func(t *testing.T) {
		t.Parallel()

		u := &User{}
		if !u.BoolSetting(SettingSendTarotNotifications) {
			t.Error("BoolSetting() = false, want true（デフォルト値）")
		}
	})

	t.Run("真偽値以外が保存されている場合はfalseを返すこと", func(t *testing.T) {
		t.Parallel()

		u := &User{Settings: map[string]any{SettingSendChatNotifications: "yes"}}
		if u.BoolSetting(SettingSendChatNotifications) {
			t.Error("BoolSetting() = true, want false")
		}
	})
}

// TestDisplayName はDisplayName関数を検証する。
func TestDisplayName(t *testing.T) {
	t.Parallel()

	t.Run("表示名が設定されている場合はそれを返すこと", func(t *testing.T) {
		t.Parallel()

		u := &User{Username: "tanuki", Settings: map[string]any{SettingDisplayName: "狸の親分"}}
		if got := u.DisplayName(); got != "狸の親分" {
			t.Errorf("DisplayName() = %q, want %q", got, "狸の親分")
		}
	})

	t.Run("表示名が未設定の場合はユーザー名を返すこと", func(t *testing.T) {
		t.Parallel()

		u := &User{Username: "tanuki"}
		if got := u.DisplayName(); got != "tanuki" {
			t.Errorf("DisplayName() = %q, want %q", got, "tanuki")
		}
	})

	t.Run("表示名が空文字列の場合はユーザー名を返すこと", func(t *testing.T) {
		t.Parallel()

		u := &User{Username: "tanuki", Settings: map[string]any{SettingDisplayName: ""}}
		if got := u.DisplayName(); got != "tanuki" {
			t.Errorf("DisplayName() = %q, want %q", got, "tanuki")
		}
	})
}

// TestMergeSettings はMergeSettings関数を検証する。
func TestMergeSettings(t *testing.T) {
	t.Parallel()

	t.Run("認識されるキーがマージされること", func(t *testing.T) {
		t.Parallel()

		u := &User{}
		err := u.MergeSettings(map[string]any{
			SettingDisplayName:            "幻影",
			SettingSendTarotNotifications: false,
		})
		if err != nil {
			t.Fatalf("MergeSettings()でエラーが発生: %v", err)
		}
		if u.Settings[SettingDisplayName] != "幻影" {
			t.Errorf("%s = %v, want %q", SettingDisplayName, u.Settings[SettingDisplayName], "幻影")
		}
		if u.Settings[SettingSendTarotNotifications] != false {
			t.Errorf("%s = %v, want false", SettingSendTarotNotifications, u.Settings[SettingSendTarotNotifications])
		}
	})

	t.Run("既存の設定を保ったまま部分更新できること", func(t *testing.T) {
		t.Parallel()

		u := &User{Settings: map[string]any{SettingAbout: "よろしく"}}
		if err := u.MergeSettings(map[string]any{SettingPronouns: "she/her"}); err != nil {
			t.Fatalf("MergeSettings()でエラーが発生: %v", err)
		}
		if u.Settings[SettingAbout] != "よろしく" {
			t.Errorf("%s = %v, want %q", SettingAbout, u.Settings[SettingAbout], "よろしく")
		}
		if u.Settings[SettingPronouns] != "she/her" {
			t.Errorf("%s = %v, want %q", SettingPronouns, u.Settings[SettingPronouns], "she/her")
		}
	})

	t.Run("未認識のキーがエラーになること", func(t *testing.T) {
		t.Parallel()

		u := &User{}
		if err := u.MergeSettings(map[string]any{"hemisphere": "southern"}); err == nil {
			t.Error("MergeSettings()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("型が一致しない値がエラーになること", func(t *testing.T) {
		t.Parallel()

		u := &User{}
		if err := u.MergeSettings(map[string]any{SettingSendChatNotifications: "true"}); err == nil {
			t.Error("真偽値項目への文字列がエラーにならなかった")
		}
		if err := u.MergeSettings(map[string]any{SettingDisplayName: true}); err == nil {
			t.Error("文字列項目への真偽値がエラーにならなかった")
		}
	})
}
