package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tenmado/internal/camera"
)

func TestWebSocketStreamer_Serve(t *testing.T) {
	frames := testFrames(2)
	src := camera.NewMockFrameSource(frames...)
	streamer := NewWebSocketStreamer(src, Policy{})

	done := make(chan *Connection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn := NewConnection()
		_ = streamer.Serve(w, r, conn)
		done <- conn
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer ws.Close()

	for i, f := range frames {
		_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage #%d failed: %v", i, err)
		}
		if msgType != websocket.BinaryMessage {
			t.Errorf("Expected binary message, got %d", msgType)
		}
		if string(data) != string(f.Data) {
			t.Errorf("フレーム #%d が一致しません", i)
		}
	}

	select {
	case conn := <-done:
		if conn.Frames() != 2 {
			t.Errorf("Expected 2 frames, got %d", conn.Frames())
		}
		if conn.State() != StateFailed {
			t.Errorf("Expected failed state after exhaustion, got %s", conn.State())
		}
	case <-time.After(3 * time.Second):
		t.Fatal("ストリームが終了しませんでした")
	}

	if src.Acquired() != src.Released() {
		t.Errorf("取得と返却の回数が一致しません: %d/%d", src.Acquired(), src.Released())
	}
}

func TestWebSocketStreamer_ClientDisconnect(t *testing.T) {
	pool := camera.NewFramePool(2, 64*1024, time.Second)
	sensor := camera.NewSimSensor(camera.SensorOV2640)
	_ = sensor.SetFramesize(camera.FramesizeQQVGA)
	src := camera.NewSimulatedSource(sensor, pool, 30)
	streamer := NewWebSocketStreamer(src, Policy{})

	done := make(chan *Connection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn := NewConnection()
		_ = streamer.Serve(w, r, conn)
		done <- conn
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	ws.Close()

	select {
	case conn := <-done:
		if conn.State() != StateClosed {
			t.Errorf("Expected closed state, got %s", conn.State())
		}
	case <-time.After(3 * time.Second):
		t.Fatal("切断後もストリームが終了しませんでした")
	}

	if pool.InUse() != 0 {
		t.Errorf("切断後に借用中のスロットが残っています: %d", pool.InUse())
	}
}
