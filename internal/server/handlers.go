package server

import (
	"log/slog"
	"net/http"

	"tenmado/internal/camera"
	"tenmado/internal/control"
	"tenmado/internal/generated"
	"tenmado/internal/stream"

	"github.com/gin-gonic/gin"
)

// TenmadoHandler は生成されたServerInterfaceを実装する
type TenmadoHandler struct {
	sensor    camera.SensorHandle
	mjpeg     *stream.MjpegStreamer
	snapshot  *stream.SnapshotResponder
	websocket *stream.WebSocketStreamer
	indexHTML []byte
}

var _ generated.ServerInterface = (*TenmadoHandler)(nil)

// NewHandler は新しいTenmadoHandlerを作成する
func NewHandler(sensor camera.SensorHandle, source camera.FrameSource, policy stream.Policy) *TenmadoHandler {
	return &TenmadoHandler{
		sensor:    sensor,
		mjpeg:     stream.NewMjpegStreamer(source, policy),
		snapshot:  stream.NewSnapshotResponder(source, policy),
		websocket: stream.NewWebSocketStreamer(source, policy),
		indexHTML: getIndexHTML(),
	}
}

// Index はランディングページを返す
func (h *TenmadoHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.indexHTML)
}

// Stream はMJPEGストリーミングエンドポイントの実装
func (h *TenmadoHandler) Stream(c *gin.Context) {
	conn := stream.NewConnection()
	slog.Info("ストリームを開始します", "conn", conn.ID, "remote", c.ClientIP())

	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Cache-Control", "no-cache")

	err := h.mjpeg.Stream(c.Request.Context(), conn, newResponder(c))
	logStreamEnd(conn, err)
}

// StreamWebSocket はWebSocketストリーミングエンドポイントの実装
func (h *TenmadoHandler) StreamWebSocket(c *gin.Context) {
	conn := stream.NewConnection()
	slog.Info("WebSocketストリームを開始します", "conn", conn.ID, "remote", c.ClientIP())

	err := h.websocket.Serve(c.Writer, c.Request, conn)
	logStreamEnd(conn, err)
}

// Snapshot はJPEGを1枚返す
func (h *TenmadoHandler) Snapshot(c *gin.Context) {
	if err := h.snapshot.Respond(c.Request.Context(), newResponder(c)); err != nil {
		slog.Warn("スナップショットの送信に失敗しました", "error", err)
	}
}

// Capture は /snapshot の別名
func (h *TenmadoHandler) Capture(c *gin.Context) {
	h.Snapshot(c)
}

// Control は名前付き設定を1つ適用する
func (h *TenmadoHandler) Control(c *gin.Context, params generated.ControlParams) {
	if err := control.ApplyQuery(h.sensor, params.Var, params.Val); err != nil {
		h.fail(c, err)
		return
	}
	slog.Info("設定を適用しました", "var", *params.Var, "val", *params.Val)
	h.ok(c)
}

// Status はセンサー設定をJSONで返す
func (h *TenmadoHandler) Status(c *gin.Context) {
	data, err := control.Report(h.sensor).MarshalJSON()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(http.StatusOK, "application/json", data)
}

// GetRegister はレジスタを読み出す
func (h *TenmadoHandler) GetRegister(c *gin.Context, params generated.GetRegisterParams) {
	reading, err := control.ReadRegister(h.sensor, params.Register, params.Mask)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(http.StatusOK, "application/json", []byte(reading.JSON()))
}

// SetRegister はレジスタへ書き込む
func (h *TenmadoHandler) SetRegister(c *gin.Context, params generated.SetRegisterParams) {
	written, err := control.WriteRegister(h.sensor, params.Register, params.Mask, params.Value)
	if err != nil {
		h.fail(c, err)
		return
	}
	slog.Info("レジスタに書き込みました", "reg", written.Address, "mask", written.Mask, "value", written.Value)
	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(http.StatusOK, "application/json", []byte(written.JSON()))
}

// SetXclk はマスタークロックを設定する
func (h *TenmadoHandler) SetXclk(c *gin.Context, params generated.SetXclkParams) {
	if err := control.SetClock(h.sensor, params.Var, params.Val); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c)
}

// SetPll はPLLを設定する
func (h *TenmadoHandler) SetPll(c *gin.Context, params generated.SetPllParams) {
	query := control.PLLQuery{
		Bypass: params.Bypass,
		Mul:    params.Mul,
		Sys:    params.Sys,
		Root:   params.Root,
		Pre:    params.Pre,
		SelD5:  params.Seld5,
		PCLKEn: params.Pclken,
		PCLK:   params.Pclk,
	}
	if err := control.SetPLL(h.sensor, query.PLL()); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c)
}

// SetResolution は切り出し窓を設定する
func (h *TenmadoHandler) SetResolution(c *gin.Context, params generated.SetResolutionParams) {
	query := control.WindowQuery{
		SX: params.Sx, SY: params.Sy,
		EX: params.Ex, EY: params.Ey,
		OffX: params.Offx, OffY: params.Offy,
		TX: params.Tx, TY: params.Ty,
		OX: params.Ox, OY: params.Oy,
		Scale:   params.Scale,
		Binning: params.Binning,
	}
	if err := control.SetWindow(h.sensor, query.Window()); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c)
}

// ヘルパー関数

func (h *TenmadoHandler) ok(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.String(http.StatusOK, "OK")
}

// fail はエラーの種類に応じたステータスでテキストを返す
func (h *TenmadoHandler) fail(c *gin.Context, err error) {
	status := control.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("制御リクエストに失敗しました", "path", c.Request.URL.Path, "status", status, "error", err)
	} else {
		slog.Warn("不正な制御リクエスト", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	c.String(status, err.Error())
}

// paramError は生成コードのパラメータ解析エラーをテキストで返す
func paramError(c *gin.Context, err error, status int) {
	c.String(status, err.Error())
}

func logStreamEnd(conn *stream.Connection, err error) {
	attrs := []any{"conn", conn.ID, "frames", conn.Frames(), "state", conn.State()}
	switch {
	case err == nil:
		slog.Info("ストリームを終了しました", attrs...)
	case conn.State() == stream.StateClosed:
		slog.Info("クライアントが切断しました", append(attrs, "reason", err)...)
	default:
		slog.Warn("ストリームが異常終了しました", append(attrs, "error", err)...)
	}
}
