package plugin

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger 框架与生成器共用的日志
var Logger = NewLogger(os.Stderr, false)

// NewLogger 创建控制台日志，不输出时间戳
// verbose 为 true 时输出 debug 级别
func NewLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return zerolog.New(out).Level(level)
}

// SetVerbose 调整全局日志级别
func SetVerbose(verbose bool) {
	if verbose {
		Logger = Logger.Level(zerolog.DebugLevel)
	} else {
		Logger = Logger.Level(zerolog.InfoLevel)
	}
}
