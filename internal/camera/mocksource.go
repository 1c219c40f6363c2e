package camera

import (
	"context"
	"sync"
)

// MockFrameSource はテスト用のFrameSource実装
//
// 登録されたフレームを順に返し、尽きたら ErrNoFrame を返す。
// 取得・返却の回数と不正な返却を記録する。
type MockFrameSource struct {
	mu          sync.Mutex
	frames      []*Frame
	outstanding map[*Frame]bool

	acquired        int
	released        int
	invalidReleases int

	// テスト制御用
	failures int
}

// NewMockFrameSource は新しいMockFrameSourceを作成する
func NewMockFrameSource(frames ...*Frame) *MockFrameSource {
	return &MockFrameSource{
		frames:      frames,
		outstanding: make(map[*Frame]bool),
	}
}

// Acquire は次のフレームを返す
func (m *MockFrameSource) Acquire(ctx context.Context) (*Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.failures > 0 {
		m.failures--
		return nil, ErrNoFrame
	}
	if len(m.frames) == 0 {
		return nil, ErrNoFrame
	}

	f := m.frames[0]
	m.frames = m.frames[1:]
	m.outstanding[f] = true
	m.acquired++
	return f, nil
}

// Release はフレームを返却する
func (m *MockFrameSource) Release(f *Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.outstanding[f] {
		m.invalidReleases++
		return
	}
	delete(m.outstanding, f)
	m.released++
}

// SetFailures はテスト用に次のn回の取得を失敗させる
func (m *MockFrameSource) SetFailures(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

// Acquired は取得に成功した回数を返す
func (m *MockFrameSource) Acquired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquired
}

// Released は正しく返却された回数を返す
func (m *MockFrameSource) Released() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

// Outstanding は返却されていないフレーム数を返す
func (m *MockFrameSource) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.outstanding)
}

// InvalidReleases は二重返却など不正な返却の回数を返す
func (m *MockFrameSource) InvalidReleases() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invalidReleases
}
