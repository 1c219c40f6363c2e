package generated

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	if err != nil {
		t.Fatalf("GetSwagger failed: %v", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI定義が不正です: %v", err)
	}

	expected := map[string]string{
		"/":           "index",
		"/stream":     "stream",
		"/ws":         "streamWebSocket",
		"/snapshot":   "snapshot",
		"/capture":    "capture",
		"/control":    "control",
		"/status":     "status",
		"/greg":       "getRegister",
		"/sreg":       "setRegister",
		"/xclk":       "setXclk",
		"/spll":       "setPll",
		"/resolution": "setResolution",
	}

	if doc.Paths.Len() != len(expected) {
		t.Errorf("パス数が一致しません: got %d, want %d", doc.Paths.Len(), len(expected))
	}
	for path, opID := range expected {
		item := doc.Paths.Value(path)
		if item == nil || item.Get == nil {
			t.Errorf("%s: GETが定義されていません", path)
			continue
		}
		if item.Get.OperationID != opID {
			t.Errorf("%s: operationId got %s, want %s", path, item.Get.OperationID, opID)
		}
	}

	pll := doc.Paths.Value("/spll").Get.Parameters
	if len(pll) != 8 {
		t.Errorf("Expected 8 PLL parameters, got %d", len(pll))
	}
}

// recordingServer は受け取ったパラメータを記録する
type recordingServer struct {
	control ControlParams
	pll     SetPllParams
	window  SetResolutionParams
	called  string
}

func (s *recordingServer) Index(c *gin.Context)           { s.called = "index" }
func (s *recordingServer) Capture(c *gin.Context)         { s.called = "capture" }
func (s *recordingServer) Snapshot(c *gin.Context)        { s.called = "snapshot" }
func (s *recordingServer) Status(c *gin.Context)          { s.called = "status" }
func (s *recordingServer) Stream(c *gin.Context)          { s.called = "stream" }
func (s *recordingServer) StreamWebSocket(c *gin.Context) { s.called = "ws" }
func (s *recordingServer) GetRegister(c *gin.Context, params GetRegisterParams) {
	s.called = "greg"
}
func (s *recordingServer) SetRegister(c *gin.Context, params SetRegisterParams) {
	s.called = "sreg"
}
func (s *recordingServer) SetXclk(c *gin.Context, params SetXclkParams) { s.called = "xclk" }
func (s *recordingServer) Control(c *gin.Context, params ControlParams) {
	s.called = "control"
	s.control = params
}
func (s *recordingServer) SetPll(c *gin.Context, params SetPllParams) {
	s.called = "spll"
	s.pll = params
}
func (s *recordingServer) SetResolution(c *gin.Context, params SetResolutionParams) {
	s.called = "resolution"
	s.window = params
}

func TestRegisterHandlers_BindQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("文字列パラメータ", func(t *testing.T) {
		router := gin.New()
		srv := &recordingServer{}
		RegisterHandlers(router, srv)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/control?var=brightness&val=-2", nil))

		if srv.called != "control" {
			t.Fatalf("Expected control handler, got %q", srv.called)
		}
		if srv.control.Var == nil || *srv.control.Var != "brightness" {
			t.Errorf("var: got %v", srv.control.Var)
		}
		if srv.control.Val == nil || *srv.control.Val != "-2" {
			t.Errorf("val: got %v", srv.control.Val)
		}
	})

	t.Run("省略したパラメータはnil", func(t *testing.T) {
		router := gin.New()
		srv := &recordingServer{}
		RegisterHandlers(router, srv)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/spll?mul=25&pclk=4", nil))

		if srv.pll.Mul == nil || *srv.pll.Mul != 25 {
			t.Errorf("mul: got %v", srv.pll.Mul)
		}
		if srv.pll.Bypass != nil || srv.pll.Root != nil {
			t.Error("省略したフィールドがnilではありません")
		}
	})

	t.Run("真偽値", func(t *testing.T) {
		router := gin.New()
		srv := &recordingServer{}
		RegisterHandlers(router, srv)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resolution?ox=640&oy=480&binning=true", nil))

		if srv.window.Binning == nil || !*srv.window.Binning {
			t.Errorf("binning: got %v", srv.window.Binning)
		}
		if srv.window.Scale != nil {
			t.Error("scale should be nil")
		}
	})

	t.Run("整数でない値は400", func(t *testing.T) {
		router := gin.New()
		srv := &recordingServer{}
		RegisterHandlersWithOptions(router, srv, GinServerOptions{
			ErrorHandler: func(c *gin.Context, err error, status int) {
				c.String(status, err.Error())
			},
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/spll?mul=abc", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
		if srv.called != "" {
			t.Errorf("ハンドラーが呼ばれました: %s", srv.called)
		}
	})
}
