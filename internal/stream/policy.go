package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tenmado/internal/camera"
)

// Policy はフレーム取得失敗時の再試行方針
type Policy struct {
	AcquireRetries int           // 失敗後に再試行する回数。0 は最初の失敗で終了
	RetryInterval  time.Duration // 再試行までの待ち時間
}

// Acquire は方針に従ってフレームを取得する
func (p Policy) Acquire(ctx context.Context, src camera.FrameSource) (*camera.Frame, error) {
	var lastErr error
	for attempt := 0; attempt <= p.AcquireRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("フレーム取得を再試行します", "attempt", attempt, "error", lastErr)
			if err := p.wait(ctx); err != nil {
				return nil, err
			}
		}

		frame, err := src.Acquire(ctx)
		if err == nil {
			return frame, nil
		}
		lastErr = err

		if !retryable(err) {
			break
		}
	}
	return nil, fmt.Errorf("フレームの取得に失敗: %w", lastErr)
}

func (p Policy) wait(ctx context.Context) error {
	if p.RetryInterval <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.RetryInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryable は一時的な失敗かを判定する
func retryable(err error) bool {
	return !errors.Is(err, camera.ErrClosed) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
