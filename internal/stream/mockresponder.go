package stream

import (
	"bytes"
	"errors"
	"sync"
)

// ErrMockSend はMockResponderが注入する送信エラー
var ErrMockSend = errors.New("mock send failure")

// MockResponder はテスト用のResponder実装
//
// 送信された内容を記録し、指定した回数目の操作を失敗させられる。
type MockResponder struct {
	mu sync.Mutex

	ContentType  string
	ContentTypes int // SetContentType の呼び出し回数
	Headers      map[string]string
	Body         bytes.Buffer
	Chunks       int
	Status       int
	ErrorMessage string

	// テスト制御用
	failContentType bool
	failChunkAt     int // 1始まり。0 なら失敗しない
	failSend        bool
}

// NewMockResponder は新しいMockResponderを作成する
func NewMockResponder() *MockResponder {
	return &MockResponder{Headers: make(map[string]string)}
}

// SetShouldFailContentType はSetContentTypeを失敗させる
func (m *MockResponder) SetShouldFailContentType(shouldFail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failContentType = shouldFail
}

// SetFailChunkAt はn回目のSendChunkを失敗させる
func (m *MockResponder) SetFailChunkAt(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failChunkAt = n
}

// SetShouldFailSend はSendを失敗させる
func (m *MockResponder) SetShouldFailSend(shouldFail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSend = shouldFail
}

func (m *MockResponder) SetContentType(contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ContentTypes++
	if m.failContentType {
		return ErrMockSend
	}
	m.ContentType = contentType
	return nil
}

func (m *MockResponder) SetHeader(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Headers[key] = value
}

func (m *MockResponder) SendChunk(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Chunks++
	if m.failChunkAt > 0 && m.Chunks >= m.failChunkAt {
		return ErrMockSend
	}
	m.Body.Write(p)
	return nil
}

func (m *MockResponder) Send(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSend {
		return ErrMockSend
	}
	m.Body.Write(p)
	return nil
}

func (m *MockResponder) SendError(status int, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Status = status
	m.ErrorMessage = message
	return nil
}
