// Package main はTenmadoサーバーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"tenmado/internal/config"
	"tenmado/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	// コマンドラインオプション
	var (
		configPath = flag.String("config", "", "設定ファイルのパス (デフォルト: $"+config.ConfigPathEnv+")")
		host       = flag.String("host", "", "サーバーのホスト (デフォルト: 0.0.0.0)")
		port       = flag.Int("port", 0, "サーバーのポート (デフォルト: 8080)")
		driver     = flag.String("driver", "", "カメラドライバー sim または v4l2 (デフォルト: sim)")
		device     = flag.String("device", "", "V4L2デバイスのパス (デフォルト: /dev/video0)")
		help       = flag.Bool("help", false, "ヘルプを表示")
	)

	flag.Parse()

	// ヘルプ表示
	if *help {
		fmt.Println("Tenmado")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  server [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// 設定を読み込む
	path := *configPath
	if path == "" {
		path = os.Getenv(config.ConfigPathEnv)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		fatal("設定の読み込みに失敗しました", err)
	}

	// コマンドラインオプションで設定を上書き
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *driver != "" {
		cfg.Camera.Driver = *driver
	}
	if *device != "" {
		cfg.Camera.Device = *device
	}
	if err := cfg.Validate(); err != nil {
		fatal("設定の検証に失敗しました", err)
	}

	slog.SetDefault(cfg.NewLogger(os.Stdout))
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	srv, err := server.Open(ctx, cfg)
	if err != nil {
		fatal("サーバーの作成に失敗しました", err)
	}

	// サーバーを起動
	slog.Info("Tenmado サーバーを起動します",
		"address", cfg.ServerAddress(),
		"driver", cfg.Camera.Driver,
		"framesize", cfg.Camera.Framesize)
	if err := srv.Start(ctx); err != nil {
		fatal("サーバーの起動に失敗しました", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
