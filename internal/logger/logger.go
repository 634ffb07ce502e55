package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// maxLogFileSizeMB はローテーション前のログファイル最大サイズ（MB）。
const maxLogFileSizeMB = 100

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// writerが指定された場合はそのwriterに出力する。
func Setup(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// writerが指定された場合はそのwriterに出力する。
// 本番ではos.Stdoutを渡すことを想定している。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	logger := Setup(w)
	slog.SetDefault(logger)
}

// NewRotatingFile はlumberjackによるローテーション付きのログファイルwriterを返す。
// retentionDaysを超えた古いファイルは削除される。
func NewRotatingFile(path string, retentionDays int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:  path,
		MaxSize:   maxLogFileSizeMB,
		MaxAge:    retentionDays,
		LocalTime: false,
		Compress:  true,
	}
}

// Tee はwとローテーション付きファイルの両方に書き込むwriterを返す。
// pathが空の場合はwをそのまま返し、closerはnilになる。
func Tee(w io.Writer, path string, retentionDays int) (io.Writer, io.Closer) {
	if w == nil {
		w = os.Stdout
	}
	if path == "" {
		return w, nil
	}
	file := NewRotatingFile(path, retentionDays)
	return io.MultiWriter(w, file), file
}
