package camera

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoFrame はフレームを取得できなかったことを表す（プール枯渇・キャプチャ失敗）
	ErrNoFrame = errors.New("camera: frame buffer unavailable")
	// ErrClosed はクローズ済みのソースへのアクセスを表す
	ErrClosed = errors.New("camera: source closed")
	// ErrUnsupported はドライバーが操作をサポートしていないことを表す
	ErrUnsupported = errors.New("camera: operation not supported by driver")
	// ErrOutOfRange はドライバーが値を受け付けなかったことを表す
	ErrOutOfRange = errors.New("camera: value out of range")
	// ErrDriver はドライバー内部の失敗を表す
	ErrDriver = errors.New("camera: driver failure")
)

// PixFormat はセンサーの出力ピクセルフォーマット
type PixFormat int

const (
	PixFormatRGB565 PixFormat = iota
	PixFormatYUV422
	PixFormatYUV420
	PixFormatGrayscale
	PixFormatJPEG
	PixFormatRGB888
	PixFormatRAW
	PixFormatRGB444
	PixFormatRGB555
)

// SensorID はセンサーの製品ID（PID）
type SensorID int

const (
	SensorUnknown SensorID = 0
	SensorOV2640  SensorID = 0x26
	SensorOV3660  SensorID = 0x3660
	SensorOV5640  SensorID = 0x5640
)

// String はセンサー名を返す
func (id SensorID) String() string {
	switch id {
	case SensorOV2640:
		return "ov2640"
	case SensorOV3660:
		return "ov3660"
	case SensorOV5640:
		return "ov5640"
	default:
		return "unknown"
	}
}

// ParseSensorID は設定ファイルのセンサー名をSensorIDに変換する
func ParseSensorID(name string) (SensorID, bool) {
	for _, id := range []SensorID{SensorOV2640, SensorOV3660, SensorOV5640} {
		if id.String() == name {
			return id, true
		}
	}
	return SensorUnknown, false
}

// Resolution はカメラの解像度を表す
type Resolution struct {
	Width  int // 幅
	Height int // 高さ
}

// Framesize はセンサーの出力サイズ番号
type Framesize int

const (
	Framesize96X96 Framesize = iota
	FramesizeQQVGA
	FramesizeQCIF
	FramesizeHQVGA
	Framesize240X240
	FramesizeQVGA
	FramesizeCIF
	FramesizeHVGA
	FramesizeVGA
	FramesizeSVGA
	FramesizeXGA
	FramesizeHD
	FramesizeSXGA
	FramesizeUXGA
	FramesizeFHD
	FramesizePHD
	FramesizeP3MP
	FramesizeQXGA
	FramesizeQHD
	FramesizeWQXGA
	FramesizePFHD
	FramesizeQSXGA
)

var framesizeResolutions = [...]Resolution{
	{96, 96}, {160, 120}, {176, 144}, {240, 176}, {240, 240}, {320, 240},
	{400, 296}, {480, 320}, {640, 480}, {800, 600}, {1024, 768}, {1280, 720},
	{1280, 1024}, {1600, 1200}, {1920, 1080}, {720, 1280}, {864, 1536},
	{2048, 1536}, {2560, 1440}, {2560, 1600}, {1080, 1920}, {2560, 1920},
}

// Valid はテーブルに存在するサイズか判定する
func (f Framesize) Valid() bool {
	return f >= 0 && int(f) < len(framesizeResolutions)
}

// Resolution はサイズ番号に対応する解像度を返す
func (f Framesize) Resolution() Resolution {
	if !f.Valid() {
		return Resolution{}
	}
	return framesizeResolutions[f]
}

// MaxFramesize はセンサーが出力できる最大サイズを返す
func (id SensorID) MaxFramesize() Framesize {
	switch id {
	case SensorOV2640:
		return FramesizeUXGA
	case SensorOV3660:
		return FramesizeQXGA
	case SensorOV5640:
		return FramesizeQSXGA
	default:
		return FramesizeFHD
	}
}

// SensorStatus はセンサー設定の読み取り専用スナップショット
type SensorStatus struct {
	Framesize     Framesize
	Quality       uint
	Brightness    int
	Contrast      int
	Saturation    int
	Sharpness     int
	SpecialEffect uint
	WBMode        uint
	AWB           uint
	AWBGain       uint
	AEC           uint
	AEC2          uint
	AELevel       int
	AECValue      uint
	AGC           uint
	AGCGain       uint
	GainCeiling   uint
	BPC           uint
	WPC           uint
	RawGMA        uint
	Lenc          uint
	HMirror       uint
	VFlip         uint
	DCW           uint
	Scale         uint
	Binning       uint
	Colorbar      uint
}

// PLL はセンサー内部クロック生成器のパラメータ
type PLL struct {
	Bypass int
	Mul    int
	Sys    int
	Root   int
	Pre    int
	SelD5  int
	PCLKEn int
	PCLK   int
}

// Window はセンサー座標系での切り出し窓と出力サイズ
type Window struct {
	StartX, StartY   int // 切り出し開始座標
	EndX, EndY       int // 切り出し終了座標
	OffsetX, OffsetY int // 位置合わせオフセット
	TotalX, TotalY   int // センサー全体の感光領域
	OutputX, OutputY int // 出力フレームバッファのサイズ
	Scale            bool
	Binning          bool
}

// Frame はハードウェアフレームバッファへのハンドル
//
// FrameSource から取得したフレームはレスポンス書き込みの間だけ借用し、
// 成功・失敗にかかわらず一度だけ Release しなければならない。
type Frame struct {
	Data      []byte    // JPEGデータ
	Width     int       // 画像幅
	Height    int       // 画像高さ
	Format    PixFormat // ピクセルフォーマット
	Timestamp time.Time // キャプチャ時刻
	Seq       uint64    // 取得順の通し番号

	slot int
}

// Len はペイロードのバイト長を返す
func (f *Frame) Len() int {
	return len(f.Data)
}

// NewFrame はプールに属さないフレームを作成する
func NewFrame(data []byte, ts time.Time) *Frame {
	return &Frame{Data: data, Format: PixFormatJPEG, Timestamp: ts, slot: -1}
}

// FrameSource はフレームバッファの取得と返却を提供する
type FrameSource interface {
	// Acquire はフレームを取得する。取得できない場合はブロックするか失敗する
	Acquire(ctx context.Context) (*Frame, error)

	// Release はフレームをプールへ返却する
	Release(frame *Frame)
}

// SensorHandle はセンサー固有の設定操作を提供する
type SensorHandle interface {
	// ID はセンサーの製品IDを返す
	ID() SensorID
	// PixFormat は現在のピクセルフォーマットを返す
	PixFormat() PixFormat
	// Status は現在の設定のスナップショットを返す
	Status() SensorStatus
	// Xclk は現在のマスタークロック（MHz）を返す
	Xclk() int

	SetFramesize(size Framesize) error
	SetQuality(v int) error
	SetBrightness(v int) error
	SetContrast(v int) error
	SetSaturation(v int) error
	SetSharpness(v int) error
	SetGainCeiling(v int) error
	SetColorbar(v int) error
	SetWhitebal(v int) error
	SetGainCtrl(v int) error
	SetExposureCtrl(v int) error
	SetHMirror(v int) error
	SetVFlip(v int) error
	SetAEC2(v int) error
	SetAWBGain(v int) error
	SetAGCGain(v int) error
	SetAECValue(v int) error
	SetSpecialEffect(v int) error
	SetWBMode(v int) error
	SetAELevel(v int) error
	SetDCW(v int) error
	SetBPC(v int) error
	SetWPC(v int) error
	SetRawGMA(v int) error
	SetLenc(v int) error

	// GetReg はレジスタ値を読み出す。マスクの扱いはドライバーに委ねる
	GetReg(reg, mask int) (int, error)
	// SetReg はマスクされたビットにだけ値を書き込む
	SetReg(reg, mask, value int) error
	// SetPLL はクロック生成器を再設定する
	SetPLL(pll PLL) error
	// SetXclk はマスタークロックを設定する
	SetXclk(mhz int) error
}

// WindowSetter は切り出し窓を直接設定できるセンサーが実装する
type WindowSetter interface {
	SetResRaw(w Window) error
}
