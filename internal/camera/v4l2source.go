package camera

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

// defaultCaptureTimeout はプールにタイムアウトがない場合のキャプチャ待ち時間
const defaultCaptureTimeout = 5 * time.Second

// V4L2Source はffmpeg経由でV4L2デバイスからMJPEGを取得するFrameSource
type V4L2Source struct {
	device string
	res    Resolution
	fps    int
	pool   *FramePool

	// 最新フレームのみを保持する
	frames chan []byte
	seq    atomic.Uint64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewV4L2Source は新しいV4L2Sourceを作成する
func NewV4L2Source(device string, res Resolution, fps int, pool *FramePool) *V4L2Source {
	return &V4L2Source{
		device: device,
		res:    res,
		fps:    fps,
		pool:   pool,
		frames: make(chan []byte, 1),
	}
}

// IsDeviceAvailable はV4L2デバイスが利用可能かチェックする
func IsDeviceAvailable(device string) bool {
	// /dev/videoXX パターンかチェック
	if matched, _ := regexp.MatchString(`^/dev/video\d+$`, device); !matched {
		return false
	}

	file, err := os.OpenFile(device, os.O_RDONLY, 0)
	if err != nil {
		return false
	}
	_ = file.Close()
	return true
}

// Start はffmpegを起動し、フレームの読み取りを開始する
func (s *V4L2Source) Start(ctx context.Context) error {
	if !IsDeviceAvailable(s.device) {
		return fmt.Errorf("デバイスが利用できません: %s", s.device)
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-f", "v4l2",
		"-input_format", "mjpeg",
		"-video_size", fmt.Sprintf("%dx%d", s.res.Width, s.res.Height),
		"-framerate", strconv.Itoa(s.fps),
		"-i", s.device,
		"-f", "image2pipe",
		"-c:v", "copy",
		"-",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("stdoutパイプの作成に失敗: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("stderrパイプの作成に失敗: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("ffmpegの起動に失敗: %w", err)
	}
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			slog.Debug("ffmpeg", "device", s.device, "line", scanner.Text())
		}
	}()
	go func() {
		defer s.wg.Done()
		defer func() {
			_ = cmd.Wait() // コンテキストキャンセル時のエラーは無視
		}()
		if err := s.readFrames(ctx, stdout); err != nil {
			slog.Error("フレーム読み取りエラー", "device", s.device, "error", err)
		}
	}()

	slog.Info("V4L2キャプチャを開始しました", "device", s.device, "width", s.res.Width, "height", s.res.Height, "fps", s.fps)
	return nil
}

// readFrames はパイプからJPEGフレームを切り出して最新フレームを更新する
func (s *V4L2Source) readFrames(ctx context.Context, r io.Reader) error {
	buffer := make([]byte, 64*1024)
	var pending []byte

	for {
		n, err := r.Read(buffer)
		if n > 0 {
			var frames [][]byte
			frames, pending = splitJPEG(append(pending, buffer[:n]...))
			for _, frame := range frames {
				s.publish(frame)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// publish は古いフレームを捨てて最新フレームを置く
func (s *V4L2Source) publish(frame []byte) {
	select {
	case <-s.frames:
	default:
	}
	select {
	case s.frames <- frame:
	default:
	}
}

// splitJPEG は完全なJPEGを切り出し、残りのデータを返す
func splitJPEG(data []byte) ([][]byte, []byte) {
	var frames [][]byte

	for {
		// JPEGの開始マーカー（FF D8）を探す
		start := bytes.Index(data, jpegSOI)
		if start == -1 {
			// マーカーが読み込み境界で分断されている場合に備えて末尾の0xFFを残す
			if len(data) > 0 && data[len(data)-1] == 0xFF {
				return frames, []byte{0xFF}
			}
			return frames, nil
		}

		// JPEGの終了マーカー（FF D9）を探す
		end := bytes.Index(data[start+2:], jpegEOI)
		if end == -1 {
			rest := make([]byte, len(data)-start)
			copy(rest, data[start:])
			return frames, rest
		}

		end += start + 2 + len(jpegEOI)
		frame := make([]byte, end-start)
		copy(frame, data[start:end])
		frames = append(frames, frame)
		data = data[end:]
	}
}

// Acquire はプールのバッファに最新フレームをコピーして返す
func (s *V4L2Source) Acquire(ctx context.Context) (*Frame, error) {
	f, err := s.pool.Get(ctx)
	if err != nil {
		return nil, err
	}

	timeout := s.pool.Timeout()
	if timeout <= 0 {
		timeout = defaultCaptureTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case data := <-s.frames:
		f.Data = append(f.Data[:0], data...)
		f.Width = s.res.Width
		f.Height = s.res.Height
		f.Format = PixFormatJPEG
		f.Timestamp = time.Now()
		f.Seq = s.seq.Add(1)
		return f, nil
	case <-timer.C:
		s.Release(f)
		return nil, fmt.Errorf("%s からのキャプチャがタイムアウト: %w", s.device, ErrNoFrame)
	case <-ctx.Done():
		s.Release(f)
		return nil, ctx.Err()
	}
}

// Release はフレームをプールへ返却する
func (s *V4L2Source) Release(f *Frame) {
	if err := s.pool.Put(f); err != nil {
		slog.Warn("不正なフレーム返却を無視しました", "device", s.device, "error", err)
	}
}

// Close はffmpegを停止し、プールを閉じる
func (s *V4L2Source) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.pool.Close()
	return nil
}
