package camera

import (
	"context"
	"fmt"
	"time"
)

// Options はセンサーとフレームソースの構成
type Options struct {
	Driver       string // sim または v4l2
	Device       string
	Sensor       string // sim のセンサー種別
	FrameBuffers int
	FrameTimeout time.Duration
	FPS          int
	Framesize    Framesize
	Quality      int
	XclkMHz      int
}

// Device はセンサーとフレームソースの組
type Device struct {
	Sensor SensorHandle
	Source FrameSource
	pool   *FramePool
	closer func() error
}

// Close はフレームソースを停止してプールを閉じる
func (d *Device) Close() error {
	return d.closer()
}

// Acquire は Source.Acquire に委譲する
func (d *Device) Acquire(ctx context.Context) (*Frame, error) {
	return d.Source.Acquire(ctx)
}

// Release は Source.Release に委譲する
func (d *Device) Release(f *Frame) {
	d.Source.Release(f)
}

// Pool はフレームバッファのプールを返す
func (d *Device) Pool() *FramePool {
	return d.pool
}

// Open は構成に従ってセンサーとフレームソースを作成し、キャプチャを開始する
func Open(ctx context.Context, opts Options) (*Device, error) {
	if !opts.Framesize.Valid() {
		return nil, fmt.Errorf("framesize %d: %w", opts.Framesize, ErrOutOfRange)
	}
	res := opts.Framesize.Resolution()
	pool := NewFramePool(opts.FrameBuffers, frameCapacity(res), opts.FrameTimeout)

	dev, err := open(ctx, opts, res, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return dev, nil
}

func open(ctx context.Context, opts Options, res Resolution, pool *FramePool) (*Device, error) {
	switch opts.Driver {
	case "sim":
		id, ok := ParseSensorID(opts.Sensor)
		if !ok {
			return nil, fmt.Errorf("未知のセンサー: %s", opts.Sensor)
		}
		sensor := NewSimSensor(id)
		if err := sensor.SetFramesize(opts.Framesize); err != nil {
			return nil, err
		}
		if err := sensor.SetQuality(opts.Quality); err != nil {
			return nil, err
		}
		if err := sensor.SetXclk(opts.XclkMHz); err != nil {
			return nil, err
		}
		sensor.ResetCalls()

		source := NewSimulatedSource(sensor, pool, opts.FPS)
		return &Device{Sensor: sensor, Source: source, pool: pool, closer: source.Close}, nil

	case "v4l2":
		sensor := NewV4L2Sensor(opts.Device, opts.Framesize)
		source := NewV4L2Source(opts.Device, res, opts.FPS, pool)
		if err := source.Start(ctx); err != nil {
			return nil, err
		}
		return &Device{Sensor: sensor, Source: source, pool: pool, closer: source.Close}, nil

	default:
		return nil, fmt.Errorf("未知のドライバー: %s", opts.Driver)
	}
}

// frameCapacity はJPEG1枚分の初期バッファ容量を見積もる
func frameCapacity(res Resolution) int {
	capacity := res.Width * res.Height / 4
	if capacity < 64*1024 {
		capacity = 64 * 1024
	}
	return capacity
}
