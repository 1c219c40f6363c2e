package stream

import (
	"context"
	"log/slog"
	"net/http"

	"tenmado/internal/camera"
)

// SnapshotResponder は1フレームだけ取得して完全なレスポンスで返す
type SnapshotResponder struct {
	source camera.FrameSource
	policy Policy
}

// NewSnapshotResponder は新しいSnapshotResponderを作成する
func NewSnapshotResponder(source camera.FrameSource, policy Policy) *SnapshotResponder {
	return &SnapshotResponder{source: source, policy: policy}
}

// Respond はJPEGを1枚送信する。送信に失敗してもフレームは返却する
func (s *SnapshotResponder) Respond(ctx context.Context, w Responder) error {
	frame, err := s.policy.Acquire(ctx, s.source)
	if err != nil {
		slog.Error("スナップショットの取得に失敗しました", "error", err)
		_ = w.SendError(http.StatusInternalServerError, "Camera capture failed")
		return err
	}
	defer s.source.Release(frame)

	if err := w.SetContentType("image/jpeg"); err != nil {
		return err
	}
	w.SetHeader("Content-Disposition", "inline; filename=capture.jpg")
	w.SetHeader("Access-Control-Allow-Origin", "*")
	w.SetHeader("X-Timestamp", FormatTimestamp(frame.Timestamp))

	return w.Send(frame.Data)
}
