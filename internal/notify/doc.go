// Package notify は通知イベントの解決と配信ファンアウトを提供する。
//
// Resolverは通知イベントと送信者から宛先ユーザー集合・タイトル・本文・
// 許可フラグを決定し、Engineが許可フィルタ・配信先トークンの重複排除・
// 一括配信呼び出しを行う。配信はベストエフォートであり、再送や
// 到達保証は持たない。
package notify
