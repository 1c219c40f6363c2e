package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// colorbarPalette はカラーバー表示の8色
var colorbarPalette = [8]color.RGBA{
	{255, 255, 255, 255}, {255, 255, 0, 255}, {0, 255, 255, 255}, {0, 255, 0, 255},
	{255, 0, 255, 255}, {255, 0, 0, 255}, {0, 0, 255, 255}, {0, 0, 0, 255},
}

// SimulatedSource はテストパターンをJPEGで生成するFrameSource
//
// センサーの現在設定（framesize, quality, brightness, colorbar）を毎フレーム参照する。
type SimulatedSource struct {
	sensor   SensorHandle
	pool     *FramePool
	interval time.Duration

	mu   sync.Mutex
	next time.Time
	seq  uint64

	// テスト用に差し替え可能
	now func() time.Time
}

// NewSimulatedSource は新しいSimulatedSourceを作成する
func NewSimulatedSource(sensor SensorHandle, pool *FramePool, fps int) *SimulatedSource {
	var interval time.Duration
	if fps > 0 {
		interval = time.Second / time.Duration(fps)
	}

	return &SimulatedSource{
		sensor:   sensor,
		pool:     pool,
		interval: interval,
		now:      time.Now,
	}
}

// Acquire はプールからバッファを借用し、テストパターンを書き込んで返す
func (s *SimulatedSource) Acquire(ctx context.Context) (*Frame, error) {
	f, err := s.pool.Get(ctx)
	if err != nil {
		return nil, err
	}

	seq, err := s.pace(ctx)
	if err != nil {
		s.Release(f)
		return nil, err
	}

	if err := s.render(f, seq); err != nil {
		s.Release(f)
		return nil, fmt.Errorf("テストパターンの生成に失敗: %w", err)
	}

	return f, nil
}

// Release はフレームをプールへ返却する
func (s *SimulatedSource) Release(f *Frame) {
	if err := s.pool.Put(f); err != nil {
		slog.Warn("不正なフレーム返却を無視しました", "error", err)
	}
}

// Close はプールを閉じる
func (s *SimulatedSource) Close() error {
	s.pool.Close()
	return nil
}

// pace はフレームレートに合わせて待機し、通し番号を払い出す
func (s *SimulatedSource) pace(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq

	var wait time.Duration
	if s.interval > 0 {
		now := s.now()
		if s.next.Before(now) {
			s.next = now
		}
		wait = s.next.Sub(now)
		s.next = s.next.Add(s.interval)
	}
	s.mu.Unlock()

	if wait <= 0 {
		return seq, nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return seq, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// render はセンサー設定に従ってテストパターンを描画しJPEGに変換する
func (s *SimulatedSource) render(f *Frame, seq uint64) error {
	status := s.sensor.Status()
	res := status.Framesize.Resolution()
	if res.Width == 0 {
		res = FramesizeVGA.Resolution()
	}

	img := image.NewRGBA(image.Rect(0, 0, res.Width, res.Height))
	offset := status.Brightness * 24

	for y := 0; y < res.Height; y++ {
		for x := 0; x < res.Width; x++ {
			var c color.RGBA
			if status.Colorbar == 1 {
				c = colorbarPalette[x*len(colorbarPalette)/res.Width]
			} else {
				c = color.RGBA{
					R: uint8(x * 255 / res.Width),
					G: uint8(y * 255 / res.Height),
					B: uint8(seq * 4),
					A: 255,
				}
			}
			c.R, c.G, c.B = shift(c.R, offset), shift(c.G, offset), shift(c.B, offset)
			img.SetRGBA(x, y, c)
		}
	}

	ts := s.now()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, 20),
	}
	d.DrawString(fmt.Sprintf("#%d %s", seq, ts.Format("15:04:05.000000")))

	buf := bytes.NewBuffer(f.Data[:0])
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality(status.Quality)}); err != nil {
		return err
	}

	f.Data = buf.Bytes()
	f.Width = res.Width
	f.Height = res.Height
	f.Format = PixFormatJPEG
	f.Timestamp = ts
	f.Seq = seq
	return nil
}

// jpegQuality はセンサーの品質値（0が最高）をimage/jpegの品質に変換する
func jpegQuality(q uint) int {
	if q > 63 {
		q = 63
	}
	return 100 - int(q)*90/63
}

func shift(v uint8, offset int) uint8 {
	n := int(v) + offset
	switch {
	case n < 0:
		return 0
	case n > 255:
		return 255
	default:
		return uint8(n)
	}
}
