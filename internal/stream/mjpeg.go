package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"tenmado/internal/camera"
)

// Boundary はmultipartの境界文字列
const Boundary = "123456789000000000000987654321"

// ContentType はMJPEGストリームのContent-Type
const ContentType = "multipart/x-mixed-replace;boundary=" + Boundary

var boundaryChunk = []byte("\r\n--" + Boundary + "\r\n")

// FormatTimestamp はキャプチャ時刻を 秒.マイクロ秒（6桁固定）で表す
func FormatTimestamp(t time.Time) string {
	return string(appendTimestamp(nil, t))
}

func appendTimestamp(buf []byte, t time.Time) []byte {
	buf = strconv.AppendInt(buf, t.Unix(), 10)
	buf = append(buf, '.')
	usec := t.Nanosecond() / 1000
	for div := 100000; div > 0; div /= 10 {
		buf = append(buf, byte('0'+usec/div%10))
	}
	return buf
}

// AppendPartHeader はフレーム1枚分のパートヘッダーを buf に追記する
func AppendPartHeader(buf []byte, f *camera.Frame) []byte {
	buf = append(buf, "Content-Type: image/jpeg\r\nContent-Length: "...)
	buf = strconv.AppendUint(buf, uint64(f.Len()), 10)
	buf = append(buf, "\r\nX-Timestamp: "...)
	buf = appendTimestamp(buf, f.Timestamp)
	return append(buf, "\r\n\r\n"...)
}

// MjpegStreamer はフレームを取り続けてmultipartチャンクとして送信する
type MjpegStreamer struct {
	source camera.FrameSource
	policy Policy
}

// NewMjpegStreamer は新しいMjpegStreamerを作成する
func NewMjpegStreamer(source camera.FrameSource, policy Policy) *MjpegStreamer {
	return &MjpegStreamer{source: source, policy: policy}
}

// Stream は取得失敗か送信失敗まで配信を続け、終了の原因を返す
//
// 返すエラーはこの接続に閉じたもので、呼び出し側はログに残すだけでよい。
func (s *MjpegStreamer) Stream(ctx context.Context, conn *Connection, w Responder) error {
	for {
		frame, err := s.policy.Acquire(ctx, s.source)
		if err != nil {
			if isCanceled(err) {
				conn.state = StateClosed
				return err
			}
			conn.state = StateFailed
			slog.Error("カメラのキャプチャに失敗しました", "conn", conn.ID, "error", err)
			if !conn.contentTypeSet {
				// まだ何も送っていなければエラー応答を返せる
				_ = w.SendError(http.StatusInternalServerError, "Camera capture failed")
			}
			return err
		}

		if err := s.writePart(conn, w, frame); err != nil {
			conn.state = StateClosed
			return err
		}
		conn.frames++
	}
}

// writePart は1フレーム分を送信する。フレームはどの経路でも返却される
func (s *MjpegStreamer) writePart(conn *Connection, w Responder, frame *camera.Frame) error {
	defer s.source.Release(frame)

	if !conn.contentTypeSet {
		if err := w.SetContentType(ContentType); err != nil {
			return fmt.Errorf("Content-Typeの設定に失敗: %w", err)
		}
		conn.contentTypeSet = true
	}

	if err := w.SendChunk(boundaryChunk); err != nil {
		return fmt.Errorf("境界の送信に失敗: %w", err)
	}

	conn.header = AppendPartHeader(conn.header[:0], frame)
	if err := w.SendChunk(conn.header); err != nil {
		return fmt.Errorf("パートヘッダーの送信に失敗: %w", err)
	}

	if err := w.SendChunk(frame.Data); err != nil {
		return fmt.Errorf("フレームの送信に失敗: %w", err)
	}
	return nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
