package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Loading
		"Loaded %s: %.3f fps, %d frames": "%s を読み込みました: %.3f fps, %d フレーム",
		"Cannot open %s: %v":             "%s を開けません: %v",
		"Ignoring missing file %s":       "存在しないファイル %s を無視します",
		"%s is already loaded":           "%s は読み込み済みです",

		// Frame count probe
		"Probing frame count of %s": "%s のフレーム数を調査中",
		"Last valid frame is %d (%d frames), probed in %d ms": "最終有効フレームは %d (%d フレーム), 調査時間 %d ms",

		// Scheduler
		"Session %s: playing from frame %d at %.1f Hz (reverse=%t, skip=%t)": "セッション %s: フレーム %d から %.1f Hz で再生 (逆再生=%t, スキップ=%t)",
		"Session %s pre-empted at frame %d":                  "セッション %s はフレーム %d で置き換えられました",
		"Playback stopped at frame %d":                       "フレーム %d で再生を停止しました",
		"Playback reached the end at frame %d":               "フレーム %d で終端に達しました",
		"Skipped %d frames to keep up":                       "遅れを取り戻すため %d フレームをスキップしました",
		"Read miss at frame %d, retrying":                    "フレーム %d の読み込みに失敗しました。再試行します",
		"Read miss at frame %d":                              "フレーム %d の読み込みに失敗しました",
		"No frame at %d after %d attempts, ending playback":  "%d 回試行してもフレーム %d を読めません。再生を終了します",
		"Failed to present frame %d: %v":                     "フレーム %d の表示に失敗しました: %v",
		"Scheduler started":                                  "スケジューラを開始しました",
		"Scheduler stopped":                                  "スケジューラを停止しました",

		// Sinks and sources
		"Surface resized to %dx%d": "表示面を %dx%d に変更しました",
		"Saved %s":                 "%s を保存しました",
		"Using %s and %s":          "%s と %s を使用します",

		// Shutdown
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
	})
}
