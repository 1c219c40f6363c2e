package camera

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// ctlTimeout は v4l2-ctl 1回あたりのタイムアウト
const ctlTimeout = 3 * time.Second

// CommandRunner は外部コマンドを実行する
type CommandRunner func(ctx context.Context, name string, args ...string) error

// execRunner は os/exec でコマンドを実行する
func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", name, err, out)
	}
	return nil
}

// V4L2Sensor は v4l2-ctl でUVCカメラのコントロールを操作するSensorHandle
//
// 名前付きセッターのうちV4L2コントロールに対応するものだけを実装する。
// 生レジスタ、PLL、クロックの操作は ErrUnsupported を返す。
type V4L2Sensor struct {
	device string
	run    CommandRunner

	mu     sync.Mutex
	status SensorStatus
}

// NewV4L2Sensor は新しいV4L2Sensorを作成する
func NewV4L2Sensor(device string, framesize Framesize) *V4L2Sensor {
	return &V4L2Sensor{
		device: device,
		run:    execRunner,
		status: SensorStatus{Framesize: framesize, AWB: 1, AEC: 1},
	}
}

// SetRunner はテスト用にコマンド実行関数を差し替える
func (s *V4L2Sensor) SetRunner(run CommandRunner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
}

// ID はUVCカメラなので常に SensorUnknown を返す
func (s *V4L2Sensor) ID() SensorID { return SensorUnknown }

// PixFormat はMJPEG入力なので常にJPEG
func (s *V4L2Sensor) PixFormat() PixFormat { return PixFormatJPEG }

// Xclk はUVCカメラでは取得できない
func (s *V4L2Sensor) Xclk() int { return 0 }

// Status は最後に設定された値のスナップショットを返す
func (s *V4L2Sensor) Status() SensorStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// control はV4L2コントロールを設定し、成功したら状態を更新する
func (s *V4L2Sensor) control(name string, value int, update func(st *SensorStatus)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), ctlTimeout)
	defer cancel()

	if err := s.run(ctx, "v4l2-ctl", "--device", s.device, "--set-ctrl", fmt.Sprintf("%s=%d", name, value)); err != nil {
		return fmt.Errorf("コントロール %s の設定に失敗: %w", name, err)
	}
	update(&s.status)
	return nil
}

func unsupported(op string) error {
	return fmt.Errorf("%s: %w", op, ErrUnsupported)
}

// SetFramesize は実行中のキャプチャを再起動する必要があるため未対応
func (s *V4L2Sensor) SetFramesize(Framesize) error { return unsupported("set_framesize") }

func (s *V4L2Sensor) SetQuality(v int) error {
	return s.control("compression_quality", 100-v*90/63, func(st *SensorStatus) { st.Quality = uint(v) })
}

func (s *V4L2Sensor) SetBrightness(v int) error {
	return s.control("brightness", v, func(st *SensorStatus) { st.Brightness = v })
}

func (s *V4L2Sensor) SetContrast(v int) error {
	return s.control("contrast", v, func(st *SensorStatus) { st.Contrast = v })
}

func (s *V4L2Sensor) SetSaturation(v int) error {
	return s.control("saturation", v, func(st *SensorStatus) { st.Saturation = v })
}

func (s *V4L2Sensor) SetSharpness(v int) error {
	return s.control("sharpness", v, func(st *SensorStatus) { st.Sharpness = v })
}

func (s *V4L2Sensor) SetWhitebal(v int) error {
	return s.control("white_balance_automatic", v, func(st *SensorStatus) { st.AWB = uint(v) })
}

// SetExposureCtrl は自動露出のオン/オフを V4L2 の auto_exposure メニュー値に変換する
func (s *V4L2Sensor) SetExposureCtrl(v int) error {
	mode := 1 // 手動
	if v != 0 {
		mode = 3 // 絞り優先
	}
	return s.control("auto_exposure", mode, func(st *SensorStatus) { st.AEC = uint(v) })
}

func (s *V4L2Sensor) SetAECValue(v int) error {
	return s.control("exposure_time_absolute", v, func(st *SensorStatus) { st.AECValue = uint(v) })
}

func (s *V4L2Sensor) SetAGCGain(v int) error {
	return s.control("gain", v, func(st *SensorStatus) { st.AGCGain = uint(v) })
}

func (s *V4L2Sensor) SetHMirror(v int) error {
	return s.control("horizontal_flip", v, func(st *SensorStatus) { st.HMirror = uint(v) })
}

func (s *V4L2Sensor) SetVFlip(v int) error {
	return s.control("vertical_flip", v, func(st *SensorStatus) { st.VFlip = uint(v) })
}

func (s *V4L2Sensor) SetGainCeiling(int) error   { return unsupported("set_gainceiling") }
func (s *V4L2Sensor) SetColorbar(int) error      { return unsupported("set_colorbar") }
func (s *V4L2Sensor) SetGainCtrl(int) error      { return unsupported("set_gain_ctrl") }
func (s *V4L2Sensor) SetAEC2(int) error          { return unsupported("set_aec2") }
func (s *V4L2Sensor) SetAWBGain(int) error       { return unsupported("set_awb_gain") }
func (s *V4L2Sensor) SetSpecialEffect(int) error { return unsupported("set_special_effect") }
func (s *V4L2Sensor) SetWBMode(int) error        { return unsupported("set_wb_mode") }
func (s *V4L2Sensor) SetAELevel(int) error       { return unsupported("set_ae_level") }
func (s *V4L2Sensor) SetDCW(int) error           { return unsupported("set_dcw") }
func (s *V4L2Sensor) SetBPC(int) error           { return unsupported("set_bpc") }
func (s *V4L2Sensor) SetWPC(int) error           { return unsupported("set_wpc") }
func (s *V4L2Sensor) SetRawGMA(int) error        { return unsupported("set_raw_gma") }
func (s *V4L2Sensor) SetLenc(int) error          { return unsupported("set_lenc") }

func (s *V4L2Sensor) GetReg(int, int) (int, error) { return 0, unsupported("get_reg") }
func (s *V4L2Sensor) SetReg(int, int, int) error   { return unsupported("set_reg") }
func (s *V4L2Sensor) SetPLL(PLL) error             { return unsupported("set_pll") }
func (s *V4L2Sensor) SetXclk(int) error            { return unsupported("set_xclk") }
