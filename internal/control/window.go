package control

import (
	"tenmado/internal/camera"
)

// WindowQuery は /resolution のクエリ。欠落したフィールドは0またはfalse
type WindowQuery struct {
	SX, SY     *int // センサー座標系の切り出し開始
	EX, EY     *int // センサー座標系の切り出し終了
	OffX, OffY *int // 位置合わせオフセット
	TX, TY     *int // センサー全体の感光領域
	OX, OY     *int // 出力フレームバッファのサイズ
	Scale      *bool
	Binning    *bool
}

// Window はクエリを切り出し窓に変換する
func (q WindowQuery) Window() camera.Window {
	return camera.Window{
		StartX:  intOrZero(q.SX),
		StartY:  intOrZero(q.SY),
		EndX:    intOrZero(q.EX),
		EndY:    intOrZero(q.EY),
		OffsetX: intOrZero(q.OffX),
		OffsetY: intOrZero(q.OffY),
		TotalX:  intOrZero(q.TX),
		TotalY:  intOrZero(q.TY),
		OutputX: intOrZero(q.OX),
		OutputY: intOrZero(q.OY),
		Scale:   boolOrFalse(q.Scale),
		Binning: boolOrFalse(q.Binning),
	}
}

// SetWindow は WindowSetter を実装するセンサーにだけ切り出し窓を渡す
func SetWindow(sensor camera.SensorHandle, w camera.Window) error {
	setter, ok := sensor.(camera.WindowSetter)
	if !ok {
		return ErrNotImplemented
	}
	if err := setter.SetResRaw(w); err != nil {
		return &DriverError{Op: "set_res_raw", Err: err}
	}
	return nil
}
