package server

import (
	"context"
	"testing"

	"tenmado/internal/camera"
	"tenmado/internal/config"
)

func TestOpen_Sim(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.Sensor = "ov5640"
	cfg.Camera.Framesize = int(camera.FramesizeQQVGA)

	srv, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	dev, ok := srv.source.(*camera.Device)
	if !ok {
		t.Fatalf("Expected *camera.Device, got %T", srv.source)
	}
	if dev.Sensor.ID() != camera.SensorOV5640 {
		t.Errorf("Expected ov5640, got %s", dev.Sensor.ID())
	}

	srv.closeSource()
	if _, err := dev.Acquire(context.Background()); err == nil {
		t.Error("クローズ後の取得が成功しました")
	}
}

func TestOpen_DeviceUnavailable(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.Driver = "v4l2"
	cfg.Camera.Device = "/dev/video99"

	if _, err := Open(context.Background(), cfg); err == nil {
		t.Error("エラーが期待されましたが、エラーが発生しませんでした")
	}
}
