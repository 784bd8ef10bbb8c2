package summarizer

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		"Probe Summary":       "調査サマリー",
		"Generated":           "生成日時",
		"Video":               "動画",
		"Frames":              "フレーム",
		"Settings":            "設定",
		"Item":                "項目",
		"Value":               "値",
		"File":                "ファイル",
		"Codec":               "コーデック",
		"Frame Size":          "フレームサイズ",
		"Container Samples":   "コンテナのサンプル数",
		"Fragmented":          "フラグメント化",
		"Frame Rate":          "フレームレート",
		"Last Valid Frame":    "最終有効フレーム",
		"Frame Count":         "フレーム数",
		"Duration":            "再生時間",
		"Probe Time":          "調査時間",
		"Undecodable Samples": "デコードできないサンプル",
		"Backend":             "バックエンド",
		"Speed":               "速度",
		"Skip Frames":         "フレームスキップ",
		"Jump Size":           "ジャンプ幅",
		"Frame Bound":         "フレーム上限",
		"Extra Iterations":    "追加反復回数",
		"Yes":                 "はい",
		"No":                  "いいえ",
	})
}
