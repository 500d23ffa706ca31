package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger 按配置里的级别初始化全局日志器
// 级别字符串无法识别时回退到 info
func InitLogger(logLevel string) {
	level, parseErr := zapcore.ParseLevel(logLevel)
	if parseErr != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)

	lgr, err := cfg.Build()
	if err != nil {
		panic(fmt.Errorf("初始化日志器失败: %w", err))
	}

	zap.ReplaceGlobals(lgr)

	if parseErr != nil {
		zap.L().Warn(
			"无法识别的日志级别，回退到 info",
			zap.String("log_level", logLevel),
		)
	}
}
