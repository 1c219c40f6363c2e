package camera

import (
	"fmt"
	"sync"
)

// Call はセンサーへの呼び出し記録
type Call struct {
	Op   string
	Args []int
}

// SimSensor はレジスタファイルを持つソフトウェアセンサー
//
// ハードウェアのない環境での動作確認と、テストでの呼び出し記録に使用する。
// SetReg はマスクされたビットだけを書き換え、GetReg はマスク済みの値を返す。
type SimSensor struct {
	mu        sync.Mutex
	id        SensorID
	pixformat PixFormat
	status    SensorStatus
	xclk      int
	pll       PLL
	window    Window
	regs      map[int]int

	// テスト制御用
	calls   []Call
	failOps map[string]bool
}

// NewSimSensor は新しいSimSensorを作成する
func NewSimSensor(id SensorID) *SimSensor {
	return &SimSensor{
		id:        id,
		pixformat: PixFormatJPEG,
		status: SensorStatus{
			Framesize:   FramesizeVGA,
			Quality:     12,
			AWB:         1,
			AWBGain:     1,
			AEC:         1,
			AECValue:    204,
			AGC:         1,
			GainCeiling: 0,
			BPC:         0,
			WPC:         1,
			RawGMA:      1,
			Lenc:        1,
			DCW:         1,
		},
		xclk:    20,
		regs:    make(map[int]int),
		failOps: make(map[string]bool),
	}
}

// ID はセンサーの製品IDを返す
func (s *SimSensor) ID() SensorID {
	return s.id
}

// PixFormat は現在のピクセルフォーマットを返す
func (s *SimSensor) PixFormat() PixFormat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pixformat
}

// SetPixFormat はピクセルフォーマットを変更する
func (s *SimSensor) SetPixFormat(format PixFormat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pixformat = format
}

// Status は現在の設定のスナップショットを返す
func (s *SimSensor) Status() SensorStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Xclk は現在のマスタークロック（MHz）を返す
func (s *SimSensor) Xclk() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xclk
}

// PLL は最後に設定されたPLLパラメータを返す
func (s *SimSensor) PLL() PLL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pll
}

// Window は最後に設定された切り出し窓を返す
func (s *SimSensor) Window() Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// Calls は記録された呼び出しのコピーを返す
func (s *SimSensor) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]Call, len(s.calls))
	copy(calls, s.calls)
	return calls
}

// ResetCalls は呼び出し記録を消去する
func (s *SimSensor) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// SetShouldFail はテスト用に指定操作の失敗を設定する
func (s *SimSensor) SetShouldFail(op string, shouldFail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOps[op] = shouldFail
}

// record は呼び出しを記録し、失敗が設定されていればエラーを返す（ロック済み前提）
func (s *SimSensor) record(op string, args ...int) error {
	s.calls = append(s.calls, Call{Op: op, Args: args})
	if s.failOps[op] {
		return fmt.Errorf("%s: %w", op, ErrDriver)
	}
	return nil
}

// apply は範囲を検証してから状態を更新する
func (s *SimSensor) apply(op string, v, lo, hi int, update func(st *SensorStatus)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record(op, v); err != nil {
		return err
	}
	if v < lo || v > hi {
		return fmt.Errorf("%s=%d (許容範囲 %d..%d): %w", op, v, lo, hi, ErrOutOfRange)
	}
	update(&s.status)
	return nil
}

// SetFramesize は出力サイズを変更する
func (s *SimSensor) SetFramesize(size Framesize) error {
	return s.apply("set_framesize", int(size), 0, int(s.id.MaxFramesize()), func(st *SensorStatus) { st.Framesize = size })
}

func (s *SimSensor) SetQuality(v int) error {
	return s.apply("set_quality", v, 0, 63, func(st *SensorStatus) { st.Quality = uint(v) })
}

func (s *SimSensor) SetBrightness(v int) error {
	return s.apply("set_brightness", v, -2, 2, func(st *SensorStatus) { st.Brightness = v })
}

func (s *SimSensor) SetContrast(v int) error {
	return s.apply("set_contrast", v, -2, 2, func(st *SensorStatus) { st.Contrast = v })
}

func (s *SimSensor) SetSaturation(v int) error {
	return s.apply("set_saturation", v, -2, 2, func(st *SensorStatus) { st.Saturation = v })
}

func (s *SimSensor) SetSharpness(v int) error {
	return s.apply("set_sharpness", v, -2, 2, func(st *SensorStatus) { st.Sharpness = v })
}

func (s *SimSensor) SetGainCeiling(v int) error {
	return s.apply("set_gainceiling", v, 0, 6, func(st *SensorStatus) { st.GainCeiling = uint(v) })
}

func (s *SimSensor) SetColorbar(v int) error {
	return s.apply("set_colorbar", v, 0, 1, func(st *SensorStatus) { st.Colorbar = uint(v) })
}

func (s *SimSensor) SetWhitebal(v int) error {
	return s.apply("set_whitebal", v, 0, 1, func(st *SensorStatus) { st.AWB = uint(v) })
}

func (s *SimSensor) SetGainCtrl(v int) error {
	return s.apply("set_gain_ctrl", v, 0, 1, func(st *SensorStatus) { st.AGC = uint(v) })
}

func (s *SimSensor) SetExposureCtrl(v int) error {
	return s.apply("set_exposure_ctrl", v, 0, 1, func(st *SensorStatus) { st.AEC = uint(v) })
}

func (s *SimSensor) SetHMirror(v int) error {
	return s.apply("set_hmirror", v, 0, 1, func(st *SensorStatus) { st.HMirror = uint(v) })
}

func (s *SimSensor) SetVFlip(v int) error {
	return s.apply("set_vflip", v, 0, 1, func(st *SensorStatus) { st.VFlip = uint(v) })
}

func (s *SimSensor) SetAEC2(v int) error {
	return s.apply("set_aec2", v, 0, 1, func(st *SensorStatus) { st.AEC2 = uint(v) })
}

func (s *SimSensor) SetAWBGain(v int) error {
	return s.apply("set_awb_gain", v, 0, 1, func(st *SensorStatus) { st.AWBGain = uint(v) })
}

func (s *SimSensor) SetAGCGain(v int) error {
	return s.apply("set_agc_gain", v, 0, 30, func(st *SensorStatus) { st.AGCGain = uint(v) })
}

func (s *SimSensor) SetAECValue(v int) error {
	return s.apply("set_aec_value", v, 0, 1200, func(st *SensorStatus) { st.AECValue = uint(v) })
}

func (s *SimSensor) SetSpecialEffect(v int) error {
	return s.apply("set_special_effect", v, 0, 6, func(st *SensorStatus) { st.SpecialEffect = uint(v) })
}

func (s *SimSensor) SetWBMode(v int) error {
	return s.apply("set_wb_mode", v, 0, 4, func(st *SensorStatus) { st.WBMode = uint(v) })
}

func (s *SimSensor) SetAELevel(v int) error {
	return s.apply("set_ae_level", v, -2, 2, func(st *SensorStatus) { st.AELevel = v })
}

func (s *SimSensor) SetDCW(v int) error {
	return s.apply("set_dcw", v, 0, 1, func(st *SensorStatus) { st.DCW = uint(v) })
}

func (s *SimSensor) SetBPC(v int) error {
	return s.apply("set_bpc", v, 0, 1, func(st *SensorStatus) { st.BPC = uint(v) })
}

func (s *SimSensor) SetWPC(v int) error {
	return s.apply("set_wpc", v, 0, 1, func(st *SensorStatus) { st.WPC = uint(v) })
}

func (s *SimSensor) SetRawGMA(v int) error {
	return s.apply("set_raw_gma", v, 0, 1, func(st *SensorStatus) { st.RawGMA = uint(v) })
}

func (s *SimSensor) SetLenc(v int) error {
	return s.apply("set_lenc", v, 0, 1, func(st *SensorStatus) { st.Lenc = uint(v) })
}

// GetReg はマスク済みのレジスタ値を返す
func (s *SimSensor) GetReg(reg, mask int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("get_reg", reg, mask); err != nil {
		return 0, err
	}
	if reg < 0 || reg > 0xFFFF {
		return 0, fmt.Errorf("レジスタ 0x%X: %w", reg, ErrOutOfRange)
	}
	return s.regs[reg] & mask, nil
}

// SetReg はマスクされたビットだけを書き換える
func (s *SimSensor) SetReg(reg, mask, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("set_reg", reg, mask, value); err != nil {
		return err
	}
	if reg < 0 || reg > 0xFFFF {
		return fmt.Errorf("レジスタ 0x%X: %w", reg, ErrOutOfRange)
	}
	s.regs[reg] = (s.regs[reg] &^ mask) | (value & mask)
	return nil
}

// SetPLL はPLLパラメータを保存する
func (s *SimSensor) SetPLL(pll PLL) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("set_pll", pll.Bypass, pll.Mul, pll.Sys, pll.Root, pll.Pre, pll.SelD5, pll.PCLKEn, pll.PCLK); err != nil {
		return err
	}
	for _, v := range []int{pll.Bypass, pll.Mul, pll.Sys, pll.Root, pll.Pre, pll.SelD5, pll.PCLKEn, pll.PCLK} {
		if v < 0 || v > 0xFF {
			return fmt.Errorf("PLLパラメータ %d: %w", v, ErrOutOfRange)
		}
	}
	s.pll = pll
	return nil
}

// SetXclk はマスタークロックを設定する
func (s *SimSensor) SetXclk(mhz int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("set_xclk", mhz); err != nil {
		return err
	}
	if mhz < 1 || mhz > 40 {
		return fmt.Errorf("xclk=%dMHz: %w", mhz, ErrOutOfRange)
	}
	s.xclk = mhz
	return nil
}

// SetResRaw は切り出し窓を設定する
func (s *SimSensor) SetResRaw(w Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record("set_res_raw",
		w.StartX, w.StartY, w.EndX, w.EndY, w.OffsetX, w.OffsetY,
		w.TotalX, w.TotalY, w.OutputX, w.OutputY, boolToInt(w.Scale), boolToInt(w.Binning)); err != nil {
		return err
	}
	if w.EndX < w.StartX || w.EndY < w.StartY {
		return fmt.Errorf("切り出し窓 (%d,%d)-(%d,%d): %w", w.StartX, w.StartY, w.EndX, w.EndY, ErrOutOfRange)
	}
	s.window = w
	s.status.Scale = uint(boolToInt(w.Scale))
	s.status.Binning = uint(boolToInt(w.Binning))
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
