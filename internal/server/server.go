package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tenmado/internal/camera"
	"tenmado/internal/config"
	"tenmado/internal/generated"
	"tenmado/internal/stream"

	"github.com/gin-gonic/gin"
)

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	engine     *gin.Engine
	httpServer *http.Server
	source     camera.FrameSource

	// 配信中のストリームをシャットダウン時に終了させる
	baseCtx    context.Context
	stopStream context.CancelFunc
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, sensor camera.SensorHandle, source camera.FrameSource) *Server {
	policy := stream.Policy{
		AcquireRetries: cfg.Stream.AcquireRetries,
		RetryInterval:  cfg.Stream.RetryInterval,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	generated.RegisterHandlersWithOptions(engine, NewHandler(sensor, source, policy), generated.GinServerOptions{
		ErrorHandler: paramError,
	})

	baseCtx, stop := context.WithCancel(context.Background())

	s := &Server{
		config:     cfg,
		engine:     engine,
		source:     source,
		baseCtx:    baseCtx,
		stopStream: stop,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return s.baseCtx },
	}
	return s
}

// Handler はルーティング済みのhttp.Handlerを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// requestLogger はリクエストごとに1行のログを出力する
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("リクエスト",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// Start はサーバーを起動する
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("サーバーの起動に失敗: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve は listener で接続を受け付け、ctx の終了かシグナルでシャットダウンする
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	// サーバーを別ゴルーチンで起動
	go func() {
		slog.Info("HTTPサーバーを起動しています", "addr", listener.Addr().String())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownCh <- fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		slog.Info("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		slog.Info("シグナルを受信しました", "signal", sig.String())
	case err := <-shutdownCh:
		s.closeSource()
		return err
	}

	// グレースフルシャットダウン
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	slog.Info("サーバーをシャットダウンしています...")

	// 配信中のストリームを先に終了させる
	s.stopStream()

	// 5秒のタイムアウトを設定
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.closeSource()
	if err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	slog.Info("サーバーが正常にシャットダウンされました")
	return nil
}

// closeSource はフレームソースが閉じられるなら閉じる
func (s *Server) closeSource() {
	closer, ok := s.source.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		slog.Warn("フレームソースのクローズに失敗しました", "error", err)
	}
}
