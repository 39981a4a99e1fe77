package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "15:04:05"

// ParseLevel accepts the zap level names plus "warning". Empty means info.
func ParseLevel(raw string) (zapcore.Level, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "warning" {
		return zapcore.WarnLevel, nil
	}

	lvl, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q: %w", raw, err)
	}
	return lvl, nil
}

// New builds the colored console logger used by long-running commands.
func New(level string) (*zap.Logger, error) {
	return NewWithWriter(level, colorable.NewColorableStdout(), true)
}

// NewWithWriter logs to w. Colors are only emitted when color is set.
func NewWithWriter(level string, w io.Writer, color bool) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	config := zap.NewDevelopmentEncoderConfig()
	config.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	config.EncodeCaller = nil
	config.CallerKey = zapcore.OmitKey
	if color {
		config.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(config),
		zapcore.AddSync(w),
		lvl,
	)), nil
}
