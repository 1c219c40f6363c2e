package stream

import (
	"fmt"

	"github.com/google/uuid"
)

// Responder はHTTPレスポンスの書き込み手段
type Responder interface {
	// SetContentType はContent-Typeを設定する。最初の送信より前に呼ぶ
	SetContentType(contentType string) error
	// SetHeader は任意のヘッダーを設定する
	SetHeader(key, value string)
	// SendChunk はチャンクを1つ送信する
	SendChunk(p []byte) error
	// Send はボディ全体を送信する
	Send(p []byte) error
	// SendError はステータスコードと短いテキストで応答する
	SendError(status int, message string) error
}

// State はストリーム接続の状態
type State int

const (
	// StateStreaming は配信中
	StateStreaming State = iota
	// StateFailed はフレーム取得に失敗して終了した
	StateFailed
	// StateClosed は送信失敗または切断で終了した
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStreaming:
		return "streaming"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Connection はストリーム1本分の状態
type Connection struct {
	ID uuid.UUID

	state          State
	contentTypeSet bool
	header         []byte // パートヘッダー用に使い回すバッファ
	frames         uint64
}

// NewConnection は新しいConnectionを作成する
func NewConnection() *Connection {
	return &Connection{
		ID:     uuid.New(),
		state:  StateStreaming,
		header: make([]byte, 0, 128),
	}
}

// State は現在の状態を返す
func (c *Connection) State() State {
	return c.state
}

// Frames は送信し終えたフレーム数を返す
func (c *Connection) Frames() uint64 {
	return c.frames
}

// Started はContent-Typeが設定済みかを返す
func (c *Connection) Started() bool {
	return c.contentTypeSet
}
