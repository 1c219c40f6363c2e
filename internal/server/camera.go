package server

import (
	"context"
	"fmt"

	"tenmado/internal/camera"
	"tenmado/internal/config"
)

// cameraOptions は設定からカメラの構成を組み立てる
func cameraOptions(cfg *config.Config) camera.Options {
	return camera.Options{
		Driver:       cfg.Camera.Driver,
		Device:       cfg.Camera.Device,
		Sensor:       cfg.Camera.Sensor,
		FrameBuffers: cfg.Camera.FrameBuffers,
		FrameTimeout: cfg.Camera.FrameTimeout,
		FPS:          cfg.Camera.FPS,
		Framesize:    camera.Framesize(cfg.Camera.Framesize),
		Quality:      cfg.Camera.Quality,
		XclkMHz:      cfg.Camera.XclkMHz,
	}
}

// Open は設定に従ってカメラを初期化し、Serverを作成する
//
// カメラの初期化に失敗した場合はサーバーを作成しない。
// 作成したServerはShutdown時にカメラを閉じる。
func Open(ctx context.Context, cfg *config.Config) (*Server, error) {
	dev, err := camera.Open(ctx, cameraOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("カメラの初期化に失敗: %w", err)
	}
	return New(cfg, dev.Sensor, dev), nil
}
