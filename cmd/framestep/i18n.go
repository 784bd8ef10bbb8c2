// Package main provides localization for the framestep CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Configuration": "設定",
		"Decoding":      "デコード",
		"Logging":       "ログ",
		"Display":       "表示",
		"Playback":      "再生",

		// Root command
		"Frame-accurate video player":                                                    "フレーム単位の動画プレイヤー",
		"framestep plays videos frame by frame at a chosen rate, forward or in reverse.": "framestepは動画を指定したレートで1フレームずつ順再生または逆再生します。",

		// Commands
		"Open the player, optionally loading FILE":     "プレイヤーを開き、必要ならFILEを読み込む",
		"Print the frame rate and frame count of FILE": "FILEのフレームレートとフレーム数を表示",
		"Extract frame N of FILE as PNG or JPEG":       "FILEのフレームNをPNGまたはJPEGとして書き出す",
		"Show version information":                     "バージョン情報を表示",
		"framestep version %s":                         "framestep バージョン %s",

		// Global flags
		"YAML configuration file":              "YAML設定ファイル",
		"Decoding backend (ffmpeg, opencv)":    "デコードバックエンド（ffmpeg, opencv）",
		"Path to the ffmpeg executable":        "ffmpeg実行ファイルのパス",
		"Path to the ffprobe executable":       "ffprobe実行ファイルのパス",
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Write logs to this file":              "ログをこのファイルに書き込む",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Play flags
		"Display surface (terminal, sdl, snapshot, none)":     "表示先（terminal, sdl, snapshot, none）",
		"Swap the horizontal and vertical axes":               "縦横の軸を入れ替える",
		"Save every displayed frame as PNG in this directory": "表示した全フレームをこのディレクトリにPNGで保存",
		"Playback speed in frames per second":                 "再生速度（フレーム/秒）",
		"Show every frame even when decoding falls behind":    "デコードが遅れても全フレームを表示",
		"Frames moved by a jump":                              "ジャンプで移動するフレーム数",

		// Probe flags
		"Write a Markdown probe summary to this file": "Markdown形式の調査サマリーをこのファイルに書き込む",
		"Summary saved to %s":                         "サマリーを %s に保存しました",

		// Frame flags
		"Output file path, .jpg for JPEG (required)": "出力ファイルパス、.jpgでJPEG（必須）",

		// Probe output
		"File: %s":                        "ファイル: %s",
		"Frame rate: %.3f fps":            "フレームレート: %.3f fps",
		"Container: %s %dx%d, %d samples": "コンテナ: %s %dx%d, %d サンプル",
		"Last valid frame: %d":            "最終有効フレーム: %d",
		"Frame count: %d":                 "フレーム数: %d",
		"Duration: %.3f s":                "再生時間: %.3f 秒",
		"Saved frame %d (%.3f s) to %s":   "フレーム %d (%.3f 秒) を %s に保存しました",
		"Interrupted, shutting down...":   "中断されました。シャットダウン中...",

		// Error messages
		"At most one file argument is accepted": "ファイル引数は1つまでです",
		"A file argument is required":           "ファイル引数が必要です",
		"FILE and N are required":               "FILEとNが必要です",
		"Invalid frame number %s":               "不正なフレーム番号 %s",
	})
}
