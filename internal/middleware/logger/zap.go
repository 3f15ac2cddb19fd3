package logger

import (
	"go.uber.org/zap"
)

// NewLogger 创建一个新的 zap.Logger 实例
// mode: "production" 输出 JSON；其它值使用开发版 logger
func NewLogger(mode string) (*zap.Logger, error) {
	if mode == "production" {
		return zap.NewProduction()
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}

	return logger, nil
}
