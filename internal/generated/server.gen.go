// Package generated はOpenAPI定義（openapi.yaml）に対応するサーバーインターフェースを提供します。
//
// oapi-codegen の gin-server 出力と同じ構成で、openapi.yaml と揃えて保守する。
package generated

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// ControlParams defines parameters for Control.
type ControlParams struct {
	// Var 設定キー
	Var *string `form:"var,omitempty" json:"var,omitempty"`

	// Val 設定値（整数）
	Val *string `form:"val,omitempty" json:"val,omitempty"`
}

// GetRegisterParams defines parameters for GetRegister.
type GetRegisterParams struct {
	// Register レジスタアドレス（0x などの接頭辞可）
	Register *string `form:"register,omitempty" json:"register,omitempty"`

	// Mask ビットマスク（0x などの接頭辞可）
	Mask *string `form:"mask,omitempty" json:"mask,omitempty"`
}

// SetRegisterParams defines parameters for SetRegister.
type SetRegisterParams struct {
	// Register レジスタアドレス（0x などの接頭辞可）
	Register *string `form:"register,omitempty" json:"register,omitempty"`

	// Mask ビットマスク（0x などの接頭辞可）
	Mask *string `form:"mask,omitempty" json:"mask,omitempty"`

	// Value 書き込む値（0x などの接頭辞可）
	Value *string `form:"value,omitempty" json:"value,omitempty"`
}

// SetXclkParams defines parameters for SetXclk.
type SetXclkParams struct {
	// Var 設定キー
	Var *string `form:"var,omitempty" json:"var,omitempty"`

	// Val 設定値（整数）
	Val *string `form:"val,omitempty" json:"val,omitempty"`
}

// SetPllParams defines parameters for SetPll.
type SetPllParams struct {
	Bypass *int `form:"bypass,omitempty" json:"bypass,omitempty"`
	Mul    *int `form:"mul,omitempty" json:"mul,omitempty"`
	Sys    *int `form:"sys,omitempty" json:"sys,omitempty"`
	Root   *int `form:"root,omitempty" json:"root,omitempty"`
	Pre    *int `form:"pre,omitempty" json:"pre,omitempty"`
	Seld5  *int `form:"seld5,omitempty" json:"seld5,omitempty"`
	Pclken *int `form:"pclken,omitempty" json:"pclken,omitempty"`
	Pclk   *int `form:"pclk,omitempty" json:"pclk,omitempty"`
}

// SetResolutionParams defines parameters for SetResolution.
type SetResolutionParams struct {
	Sx      *int  `form:"sx,omitempty" json:"sx,omitempty"`
	Sy      *int  `form:"sy,omitempty" json:"sy,omitempty"`
	Ex      *int  `form:"ex,omitempty" json:"ex,omitempty"`
	Ey      *int  `form:"ey,omitempty" json:"ey,omitempty"`
	Offx    *int  `form:"offx,omitempty" json:"offx,omitempty"`
	Offy    *int  `form:"offy,omitempty" json:"offy,omitempty"`
	Tx      *int  `form:"tx,omitempty" json:"tx,omitempty"`
	Ty      *int  `form:"ty,omitempty" json:"ty,omitempty"`
	Ox      *int  `form:"ox,omitempty" json:"ox,omitempty"`
	Oy      *int  `form:"oy,omitempty" json:"oy,omitempty"`
	Scale   *bool `form:"scale,omitempty" json:"scale,omitempty"`
	Binning *bool `form:"binning,omitempty" json:"binning,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// ランディングページ
	// (GET /)
	Index(c *gin.Context)
	// /snapshot の別名
	// (GET /capture)
	Capture(c *gin.Context)
	// 名前付き設定を1つ適用
	// (GET /control)
	Control(c *gin.Context, params ControlParams)
	// レジスタの読み出し
	// (GET /greg)
	GetRegister(c *gin.Context, params GetRegisterParams)
	// 切り出し窓と出力サイズの設定（省略したフィールドは0/false）
	// (GET /resolution)
	SetResolution(c *gin.Context, params SetResolutionParams)
	// JPEGを1枚取得
	// (GET /snapshot)
	Snapshot(c *gin.Context)
	// PLLの設定（省略したフィールドは0）
	// (GET /spll)
	SetPll(c *gin.Context, params SetPllParams)
	// レジスタへの書き込み
	// (GET /sreg)
	SetRegister(c *gin.Context, params SetRegisterParams)
	// センサー設定のJSON
	// (GET /status)
	Status(c *gin.Context)
	// MJPEGストリーム
	// (GET /stream)
	Stream(c *gin.Context)
	// WebSocketによるフレーム配信
	// (GET /ws)
	StreamWebSocket(c *gin.Context)
	// マスタークロック（MHz）の設定
	// (GET /xclk)
	SetXclk(c *gin.Context, params SetXclkParams)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandler       func(*gin.Context, error, int)
}

type MiddlewareFunc func(c *gin.Context)

// runMiddlewares は中断されていれば false を返す
func (siw *ServerInterfaceWrapper) runMiddlewares(c *gin.Context) bool {
	for _, middleware := range siw.HandlerMiddlewares {
		middleware(c)
		if c.IsAborted() {
			return false
		}
	}
	return true
}

// bindQuery は任意のクエリパラメータを dest に読み込む
func (siw *ServerInterfaceWrapper) bindQuery(c *gin.Context, name string, dest interface{}) bool {
	err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), dest)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter %s: %w", name, err), http.StatusBadRequest)
		return false
	}
	return true
}

// Index operation middleware
func (siw *ServerInterfaceWrapper) Index(c *gin.Context) {
	if !siw.runMiddlewares(c) {
		return
	}

	siw.Handler.Index(c)
}

// Capture operation middleware
func (siw *ServerInterfaceWrapper) Capture(c *gin.Context) {
	if !siw.runMiddlewares(c) {
		return
	}

	siw.Handler.Capture(c)
}

// Snapshot operation middleware
func (siw *ServerInterfaceWrapper) Snapshot(c *gin.Context) {
	if !siw.runMiddlewares(c) {
		return
	}

	siw.Handler.Snapshot(c)
}

// Status operation middleware
func (siw *ServerInterfaceWrapper) Status(c *gin.Context) {
	if !siw.runMiddlewares(c) {
		return
	}

	siw.Handler.Status(c)
}

// Stream operation middleware
func (siw *ServerInterfaceWrapper) Stream(c *gin.Context) {
	if !siw.runMiddlewares(c) {
		return
	}

	siw.Handler.Stream(c)
}

// StreamWebSocket operation middleware
func (siw *ServerInterfaceWrapper) StreamWebSocket(c *gin.Context) {
	if !siw.runMiddlewares(c) {
		return
	}

	siw.Handler.StreamWebSocket(c)
}

// Control operation middleware
func (siw *ServerInterfaceWrapper) Control(c *gin.Context) {
	var params ControlParams

	// ------------- Optional query parameter "var" -------------
	if !siw.bindQuery(c, "var", &params.Var) {
		return
	}

	// ------------- Optional query parameter "val" -------------
	if !siw.bindQuery(c, "val", &params.Val) {
		return
	}

	if !siw.runMiddlewares(c) {
		return
	}

	siw.Handler.Control(c, params)
}

// GetRegister operation middleware
func (siw *ServerInterfaceWrapper) GetRegister(c *gin.Context) {
	var params GetRegisterParams

	// ------------- Optional query parameter "register" -------------
	if !siw.bindQuery(c, "register", &params.Register) {
		return
	}

	// ------------- Optional query parameter "mask" -------------
	if !siw.bindQuery(c, "mask", &params.Mask) {
		return
	}

	if !siw.runMiddlewares(c) {
		return
	}

	siw.Handler.GetRegister(c, params)
}

// SetRegister operation middleware
func (siw *ServerInterfaceWrapper) SetRegister(c *gin.Context) {
	var params SetRegisterParams

	// ------------- Optional query parameter "register" -------------
	if !siw.bindQuery(c, "register", &params.Register) {
		return
	}

	// ------------- Optional query parameter "mask" -------------
	if !siw.bindQuery(c, "mask", &params.Mask) {
		return
	}

	// ------------- Optional query parameter "value" -------------
	if !siw.bindQuery(c, "value", &params.Value) {
		return
	}

	if !siw.runMiddlewares(c) {
		return
	}

	siw.Handler.SetRegister(c, params)
}

// SetXclk operation middleware
func (siw *ServerInterfaceWrapper) SetXclk(c *gin.Context) {
	var params SetXclkParams

	// ------------- Optional query parameter "var" -------------
	if !siw.bindQuery(c, "var", &params.Var) {
		return
	}

	// ------------- Optional query parameter "val" -------------
	if !siw.bindQuery(c, "val", &params.Val) {
		return
	}

	if !siw.runMiddlewares(c) {
		return
	}

	siw.Handler.SetXclk(c, params)
}

// SetPll operation middleware
func (siw *ServerInterfaceWrapper) SetPll(c *gin.Context) {
	var params SetPllParams

	// ------------- Optional query parameter "bypass" -------------
	if !siw.bindQuery(c, "bypass", &params.Bypass) {
		return
	}

	// ------------- Optional query parameter "mul" -------------
	if !siw.bindQuery(c, "mul", &params.Mul) {
		return
	}

	// ------------- Optional query parameter "sys" -------------
	if !siw.bindQuery(c, "sys", &params.Sys) {
		return
	}

	// ------------- Optional query parameter "root" -------------
	if !siw.bindQuery(c, "root", &params.Root) {
		return
	}

	// ------------- Optional query parameter "pre" -------------
	if !siw.bindQuery(c, "pre", &params.Pre) {
		return
	}

	// ------------- Optional query parameter "seld5" -------------
	if !siw.bindQuery(c, "seld5", &params.Seld5) {
		return
	}

	// ------------- Optional query parameter "pclken" -------------
	if !siw.bindQuery(c, "pclken", &params.Pclken) {
		return
	}

	// ------------- Optional query parameter "pclk" -------------
	if !siw.bindQuery(c, "pclk", &params.Pclk) {
		return
	}

	if !siw.runMiddlewares(c) {
		return
	}

	siw.Handler.SetPll(c, params)
}

// SetResolution operation middleware
func (siw *ServerInterfaceWrapper) SetResolution(c *gin.Context) {
	var params SetResolutionParams

	// ------------- Optional query parameter "sx" -------------
	if !siw.bindQuery(c, "sx", &params.Sx) {
		return
	}

	// ------------- Optional query parameter "sy" -------------
	if !siw.bindQuery(c, "sy", &params.Sy) {
		return
	}

	// ------------- Optional query parameter "ex" -------------
	if !siw.bindQuery(c, "ex", &params.Ex) {
		return
	}

	// ------------- Optional query parameter "ey" -------------
	if !siw.bindQuery(c, "ey", &params.Ey) {
		return
	}

	// ------------- Optional query parameter "offx" -------------
	if !siw.bindQuery(c, "offx", &params.Offx) {
		return
	}

	// ------------- Optional query parameter "offy" -------------
	if !siw.bindQuery(c, "offy", &params.Offy) {
		return
	}

	// ------------- Optional query parameter "tx" -------------
	if !siw.bindQuery(c, "tx", &params.Tx) {
		return
	}

	// ------------- Optional query parameter "ty" -------------
	if !siw.bindQuery(c, "ty", &params.Ty) {
		return
	}

	// ------------- Optional query parameter "ox" -------------
	if !siw.bindQuery(c, "ox", &params.Ox) {
		return
	}

	// ------------- Optional query parameter "oy" -------------
	if !siw.bindQuery(c, "oy", &params.Oy) {
		return
	}

	// ------------- Optional query parameter "scale" -------------
	if !siw.bindQuery(c, "scale", &params.Scale) {
		return
	}

	// ------------- Optional query parameter "binning" -------------
	if !siw.bindQuery(c, "binning", &params.Binning) {
		return
	}

	if !siw.runMiddlewares(c) {
		return
	}

	siw.Handler.SetResolution(c, params)
}

// GinServerOptions provides options for the Gin server.
type GinServerOptions struct {
	BaseURL      string
	Middlewares  []MiddlewareFunc
	ErrorHandler func(*gin.Context, error, int)
}

// RegisterHandlers creates http.Handler with routing matching OpenAPI spec.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, GinServerOptions{})
}

// RegisterHandlersWithOptions creates http.Handler with additional options
func RegisterHandlersWithOptions(router gin.IRouter, si ServerInterface, options GinServerOptions) {
	errorHandler := options.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(c *gin.Context, err error, statusCode int) {
			c.JSON(statusCode, gin.H{"msg": err.Error()})
		}
	}

	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandler:       errorHandler,
	}

	router.GET(options.BaseURL+"/", wrapper.Index)
	router.GET(options.BaseURL+"/capture", wrapper.Capture)
	router.GET(options.BaseURL+"/control", wrapper.Control)
	router.GET(options.BaseURL+"/greg", wrapper.GetRegister)
	router.GET(options.BaseURL+"/resolution", wrapper.SetResolution)
	router.GET(options.BaseURL+"/snapshot", wrapper.Snapshot)
	router.GET(options.BaseURL+"/spll", wrapper.SetPll)
	router.GET(options.BaseURL+"/sreg", wrapper.SetRegister)
	router.GET(options.BaseURL+"/status", wrapper.Status)
	router.GET(options.BaseURL+"/stream", wrapper.Stream)
	router.GET(options.BaseURL+"/ws", wrapper.StreamWebSocket)
	router.GET(options.BaseURL+"/xclk", wrapper.SetXclk)
}
