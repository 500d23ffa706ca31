package main

import (
	"context"
	"fmt"

	"liar-game-be/internal/api/http"
	"liar-game-be/internal/config"
	"liar-game-be/internal/logger"
	"liar-game-be/internal/service"
	"liar-game-be/internal/state"
	"liar-game-be/internal/words"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel)

	// 初始化词语生成器（Gemini + 重试兜底）
	gen, err := words.NewGeminiGenerator(
		context.Background(),
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
	)
	if err != nil {
		panic(fmt.Errorf("初始化词语生成器失败: %w", err))
	}

	// 组装应用状态
	appState := state.NewAppState(
		cfg,
		service.NewRoomService(words.NewRetrySource(gen)),
	)

	// 启动服务器
	http.RunServer(appState)
}
