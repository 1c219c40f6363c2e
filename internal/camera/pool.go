package camera

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidRelease は借用中でないフレームの返却を表す
var ErrInvalidRelease = errors.New("camera: frame is not checked out")

// FramePool は固定数のフレームバッファを管理する
type FramePool struct {
	frames  []*Frame
	free    chan int
	inUse   []bool
	timeout time.Duration
	mu      sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
}

// NewFramePool は count 個のスロットを持つプールを作成する
// timeout が0の場合、Get は空きスロットがなければ即座に失敗する
func NewFramePool(count, capacity int, timeout time.Duration) *FramePool {
	if count < 1 {
		count = 1
	}

	p := &FramePool{
		frames:  make([]*Frame, count),
		free:    make(chan int, count),
		inUse:   make([]bool, count),
		timeout: timeout,
		closed:  make(chan struct{}),
	}
	for i := range p.frames {
		p.frames[i] = &Frame{Data: make([]byte, 0, capacity), Format: PixFormatJPEG, slot: i}
		p.free <- i
	}

	return p
}

// Get は空きスロットを借用する
func (p *FramePool) Get(ctx context.Context) (*Frame, error) {
	select {
	case <-p.closed:
		return nil, ErrClosed
	default:
	}

	var timeoutCh <-chan time.Time
	if p.timeout > 0 {
		timer := time.NewTimer(p.timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	} else {
		select {
		case slot := <-p.free:
			return p.checkout(slot), nil
		default:
			return nil, ErrNoFrame
		}
	}

	select {
	case slot := <-p.free:
		return p.checkout(slot), nil
	case <-timeoutCh:
		return nil, fmt.Errorf("%d個のバッファが全て使用中: %w", len(p.frames), ErrNoFrame)
	case <-p.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// checkout はスロットを借用中にする
func (p *FramePool) checkout(slot int) *Frame {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.inUse[slot] = true
	f := p.frames[slot]
	f.Data = f.Data[:0]
	return f
}

// Put は借用中のフレームを返却する
func (p *FramePool) Put(f *Frame) error {
	if f == nil || f.slot < 0 || f.slot >= len(p.frames) || p.frames[f.slot] != f {
		return ErrInvalidRelease
	}

	p.mu.Lock()
	if !p.inUse[f.slot] {
		p.mu.Unlock()
		return ErrInvalidRelease
	}
	p.inUse[f.slot] = false
	p.mu.Unlock()

	p.free <- f.slot
	return nil
}

// InUse は借用中のスロット数を返す
func (p *FramePool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, used := range p.inUse {
		if used {
			n++
		}
	}
	return n
}

// Size はスロット数を返す
func (p *FramePool) Size() int {
	return len(p.frames)
}

// Timeout は取得待ちのタイムアウトを返す
func (p *FramePool) Timeout() time.Duration {
	return p.timeout
}

// Close はプールを閉じ、待機中の Get を解放する
func (p *FramePool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
}
