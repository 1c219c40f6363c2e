package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tenmado/internal/camera"
	"tenmado/internal/config"
	"tenmado/internal/generated"
	"tenmado/internal/stream"

	"github.com/gin-gonic/gin"
)

// newTestServer はシミュレーションセンサーとモックソースでサーバーを作成する
func newTestServer(t *testing.T, sensor camera.SensorHandle, source camera.FrameSource) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	return New(cfg, sensor, source)
}

func doGet(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandlers_Index(t *testing.T) {
	srv := newTestServer(t, camera.NewSimSensor(camera.SensorOV2640), camera.NewMockFrameSource())

	w := doGet(t, srv, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Unexpected content type: %s", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "Hello, Streamer!") {
		t.Error("ランディングページの内容が一致しません")
	}
}

func TestHandlers_Control(t *testing.T) {
	t.Run("brightnessを設定", func(t *testing.T) {
		sensor := camera.NewSimSensor(camera.SensorOV2640)
		srv := newTestServer(t, sensor, camera.NewMockFrameSource())

		w := doGet(t, srv, "/control?var=brightness&val=2")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if w.Body.String() != "OK" {
			t.Errorf("Expected body OK, got %q", w.Body.String())
		}

		calls := sensor.Calls()
		if len(calls) != 1 || calls[0].Op != "set_brightness" || calls[0].Args[0] != 2 {
			t.Errorf("Expected set_brightness(2), got %+v", calls)
		}
	})

	testCases := []struct {
		name       string
		target     string
		failOp     string
		wantStatus int
		wantBody   string
	}{
		{"varなし", "/control?val=2", "", http.StatusBadRequest, "missing parameter: var"},
		{"valなし", "/control?var=contrast", "", http.StatusBadRequest, "missing parameter: val"},
		{"未知のキー", "/control?var=zoom&val=1", "", http.StatusBadRequest, ""},
		{"valが数値でない", "/control?var=quality&val=high", "", http.StatusBadRequest, ""},
		{"ドライバー失敗", "/control?var=quality&val=10", "set_quality", http.StatusInternalServerError, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sensor := camera.NewSimSensor(camera.SensorOV2640)
			if tc.failOp != "" {
				sensor.SetShouldFail(tc.failOp, true)
			}
			srv := newTestServer(t, sensor, camera.NewMockFrameSource())

			w := doGet(t, srv, tc.target)
			if w.Code != tc.wantStatus {
				t.Errorf("ステータスが一致しません: got %d, want %d", w.Code, tc.wantStatus)
			}
			if tc.wantBody != "" && w.Body.String() != tc.wantBody {
				t.Errorf("ボディが一致しません: got %q, want %q", w.Body.String(), tc.wantBody)
			}
			if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain") {
				t.Errorf("エラーはプレーンテキストであるべきです: %s", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestHandlers_Registers(t *testing.T) {
	sensor := camera.NewSimSensor(camera.SensorOV3660)
	if err := sensor.SetReg(0x3406, 0xFF, 7); err != nil {
		t.Fatalf("SetReg failed: %v", err)
	}
	srv := newTestServer(t, sensor, camera.NewMockFrameSource())

	w := doGet(t, srv, "/greg?register=0x3406&mask=0xFF")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	want := `{ "reg": "0x3406", "mask": "0xFF", "value": "0x7", "masked": "0x7" }`
	if w.Body.String() != want {
		t.Errorf("ボディが一致しません:\n got %s\nwant %s", w.Body.String(), want)
	}

	w = doGet(t, srv, "/sreg?register=0x3406&mask=0x0F&value=0x3")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doGet(t, srv, "/greg?register=0x3406&mask=0xFF")
	if !strings.Contains(w.Body.String(), `"value": "0x3"`) {
		t.Errorf("書き込みが反映されていません: %s", w.Body.String())
	}

	sensor.ResetCalls()
	w = doGet(t, srv, "/sreg?register=0x3406&mask=0xFF")
	if w.Code != http.StatusBadRequest || w.Body.String() != "missing parameter: value" {
		t.Errorf("Expected 400 missing value, got %d %q", w.Code, w.Body.String())
	}
	if len(sensor.Calls()) != 0 {
		t.Errorf("ドライバーが呼ばれました: %+v", sensor.Calls())
	}
}

func TestHandlers_Status(t *testing.T) {
	sensor := camera.NewSimSensor(camera.SensorOV5640)
	_ = sensor.SetContrast(-1)
	srv := newTestServer(t, sensor, camera.NewMockFrameSource())

	w := doGet(t, srv, "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Unexpected content type: %s", w.Header().Get("Content-Type"))
	}

	var status map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("JSONとして不正です: %v", err)
	}
	if status["contrast"] != -1 {
		t.Errorf("Expected contrast -1, got %d", status["contrast"])
	}
	if _, ok := status["0x3406"]; !ok {
		t.Error("OV5640のレジスタダンプが含まれていません")
	}
}

func TestHandlers_Clock(t *testing.T) {
	sensor := camera.NewSimSensor(camera.SensorOV3660)
	srv := newTestServer(t, sensor, camera.NewMockFrameSource())

	w := doGet(t, srv, "/xclk?var=xclk&val=10")
	if w.Code != http.StatusOK || sensor.Xclk() != 10 {
		t.Errorf("xclkが設定されていません: %d, xclk=%d", w.Code, sensor.Xclk())
	}

	w = doGet(t, srv, "/spll?mul=25&pre=2&pclk=4")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	want := camera.PLL{Mul: 25, Pre: 2, PCLK: 4}
	if sensor.PLL() != want {
		t.Errorf("Expected %+v, got %+v", want, sensor.PLL())
	}

	w = doGet(t, srv, "/spll?mul=abc")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid mul, got %d", w.Code)
	}

	sensor.SetShouldFail("set_pll", true)
	w = doGet(t, srv, "/spll?mul=25")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "set_pll") {
		t.Errorf("エラーメッセージに操作名がありません: %s", w.Body.String())
	}
}

func TestHandlers_Resolution(t *testing.T) {
	t.Run("シミュレーションセンサー", func(t *testing.T) {
		sensor := camera.NewSimSensor(camera.SensorOV5640)
		srv := newTestServer(t, sensor, camera.NewMockFrameSource())

		w := doGet(t, srv, "/resolution?sx=0&sy=0&ex=2623&ey=1951&ox=800&oy=600&binning=true")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		want := camera.Window{EndX: 2623, EndY: 1951, OutputX: 800, OutputY: 600, Binning: true}
		if sensor.Window() != want {
			t.Errorf("Expected %+v, got %+v", want, sensor.Window())
		}
		if sensor.Status().Binning != 1 {
			t.Error("binningがステータスに反映されていません")
		}
	})

	t.Run("窓設定に未対応のセンサー", func(t *testing.T) {
		srv := newTestServer(t, camera.NewV4L2Sensor("/dev/video0", camera.FramesizeVGA), camera.NewMockFrameSource())

		w := doGet(t, srv, "/resolution?ox=640&oy=480")
		if w.Code != http.StatusNotImplemented {
			t.Errorf("Expected 501, got %d", w.Code)
		}
	})
}

func TestHandlers_Stream(t *testing.T) {
	frames := []*camera.Frame{
		camera.NewFrame([]byte("\xff\xd8first\xff\xd9"), time.Unix(1700000000, 1000)),
		camera.NewFrame([]byte("\xff\xd8second frame\xff\xd9"), time.Unix(1700000001, 999999000)),
	}
	source := camera.NewMockFrameSource(frames...)
	srv := newTestServer(t, camera.NewSimSensor(camera.SensorOV2640), source)

	w := doGet(t, srv, "/stream")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != stream.ContentType {
		t.Errorf("Unexpected content type: %s", w.Header().Get("Content-Type"))
	}

	var want strings.Builder
	for _, f := range frames {
		fmt.Fprintf(&want, "\r\n--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\nX-Timestamp: %s\r\n\r\n%s",
			stream.Boundary, len(f.Data), stream.FormatTimestamp(f.Timestamp), f.Data)
	}
	if w.Body.String() != want.String() {
		t.Errorf("ストリームの出力が一致しません:\n got %q\nwant %q", w.Body.String(), want.String())
	}
	if !w.Flushed {
		t.Error("チャンクがフラッシュされていません")
	}
	if source.Acquired() != 2 || source.Released() != 2 || source.InvalidReleases() != 0 {
		t.Errorf("取得と返却が一致しません: %d/%d/%d", source.Acquired(), source.Released(), source.InvalidReleases())
	}
}

func TestHandlers_StreamAcquireFailure(t *testing.T) {
	srv := newTestServer(t, camera.NewSimSensor(camera.SensorOV2640), camera.NewMockFrameSource())

	w := doGet(t, srv, "/stream")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
}

func TestHandlers_Snapshot(t *testing.T) {
	for _, path := range []string{"/snapshot", "/capture"} {
		t.Run(path, func(t *testing.T) {
			frame := camera.NewFrame([]byte("\xff\xd8jpeg\xff\xd9"), time.Unix(1700000000, 5000))
			source := camera.NewMockFrameSource(frame)
			srv := newTestServer(t, camera.NewSimSensor(camera.SensorOV2640), source)

			w := doGet(t, srv, path)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}

			expectedHeaders := map[string]string{
				"Content-Type":                "image/jpeg",
				"Content-Disposition":         "inline; filename=capture.jpg",
				"Access-Control-Allow-Origin": "*",
				"X-Timestamp":                 "1700000000.000005",
				"Content-Length":              fmt.Sprint(len(frame.Data)),
			}
			for key, want := range expectedHeaders {
				if got := w.Header().Get(key); got != want {
					t.Errorf("%s: got %q, want %q", key, got, want)
				}
			}
			if w.Body.String() != string(frame.Data) {
				t.Error("ボディが一致しません")
			}
			if source.Released() != 1 {
				t.Errorf("Expected 1 release, got %d", source.Released())
			}
		})
	}

	t.Run("取得失敗", func(t *testing.T) {
		srv := newTestServer(t, camera.NewSimSensor(camera.SensorOV2640), camera.NewMockFrameSource())

		w := doGet(t, srv, "/snapshot")
		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", w.Code)
		}
		body, _ := io.ReadAll(w.Body)
		if string(body) != "Camera capture failed" {
			t.Errorf("Unexpected body: %q", body)
		}
	})
}

func TestRoutesMatchContract(t *testing.T) {
	srv := newTestServer(t, camera.NewSimSensor(camera.SensorOV2640), camera.NewMockFrameSource())

	doc, err := generated.GetSwagger()
	if err != nil {
		t.Fatalf("GetSwagger failed: %v", err)
	}

	routes := make(map[string]bool)
	for _, r := range srv.engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for path := range doc.Paths.Map() {
		if !routes["GET "+path] {
			t.Errorf("%s がルーティングされていません", path)
		}
	}
	if len(routes) != doc.Paths.Len() {
		t.Errorf("ルート数が一致しません: engine %d, contract %d", len(routes), doc.Paths.Len())
	}
}
