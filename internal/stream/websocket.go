package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tenmado/internal/camera"
)

// writeWait は1メッセージの書き込み期限
const writeWait = 10 * time.Second

// WebSocketStreamer はフレームを1枚ずつバイナリメッセージで送信する
type WebSocketStreamer struct {
	source   camera.FrameSource
	policy   Policy
	upgrader websocket.Upgrader
}

// NewWebSocketStreamer は新しいWebSocketStreamerを作成する
func NewWebSocketStreamer(source camera.FrameSource, policy Policy) *WebSocketStreamer {
	return &WebSocketStreamer{
		source: source,
		policy: policy,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve は接続をWebSocketへ切り替えて配信する
func (s *WebSocketStreamer) Serve(w http.ResponseWriter, r *http.Request, conn *Connection) error {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("WebSocketへの切り替えに失敗: %w", err)
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// クライアントからのメッセージは読み捨て、切断の検知だけに使う
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("WebSocketの読み込みエラー", "conn", conn.ID, "error", err)
				}
				return
			}
		}
	}()

	err = s.stream(ctx, ws, conn)
	if conn.state == StateClosed {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	}
	return err
}

func (s *WebSocketStreamer) stream(ctx context.Context, ws *websocket.Conn, conn *Connection) error {
	for {
		frame, err := s.policy.Acquire(ctx, s.source)
		if err != nil {
			if isCanceled(err) {
				conn.state = StateClosed
			} else {
				conn.state = StateFailed
			}
			return err
		}
		conn.contentTypeSet = true

		if err := s.send(ws, frame); err != nil {
			conn.state = StateClosed
			return err
		}
		conn.frames++
	}
}

func (s *WebSocketStreamer) send(ws *websocket.Conn, frame *camera.Frame) error {
	defer s.source.Release(frame)

	if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := ws.WriteMessage(websocket.BinaryMessage, frame.Data); err != nil {
		return fmt.Errorf("フレームの送信に失敗: %w", err)
	}
	return nil
}
