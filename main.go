package main

import (
	"context"
	"log/slog"
	"os"

	"tenmado/internal/config"
	"tenmado/internal/server"
)

func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		slog.Error("設定の読み込みに失敗しました", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger(os.Stdout))

	// コンテキストを作成
	ctx := context.Background()

	// カメラとサーバーを作成
	srv, err := server.Open(ctx, cfg)
	if err != nil {
		slog.Error("サーバーの作成に失敗しました", "error", err)
		os.Exit(1)
	}

	// サーバーを起動
	if err := srv.Start(ctx); err != nil {
		slog.Error("サーバーの起動に失敗しました", "error", err)
		os.Exit(1)
	}
}
