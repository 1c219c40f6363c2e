package control

import (
	"fmt"
	"log/slog"
	"strconv"

	"tenmado/internal/camera"
)

// dumpRegister はステータスに含めるレジスタとマスク
type dumpRegister struct {
	addr int
	mask int
}

// ov3660Registers は OV3660/OV5640 のAEC/AWB、ガンマ、カラーマトリクス、SDEブロック
var ov3660Registers = buildRegisterDump()

func buildRegisterDump() []dumpRegister {
	regs := []dumpRegister{
		// AWBゲイン（12ビット）
		{0x3400, 0xFFF}, {0x3402, 0xFFF}, {0x3404, 0xFFF},
		{0x3406, 0xFF},
		// AEC
		{0x3500, 0xFFFF0}, {0x3503, 0xFF}, {0x350a, 0x3FF}, {0x350c, 0xFFFF},
	}
	// ガンマカーブ
	for reg := 0x5480; reg <= 0x5490; reg++ {
		regs = append(regs, dumpRegister{reg, 0xFF})
	}
	// カラーマトリクス
	for reg := 0x5380; reg <= 0x538b; reg++ {
		regs = append(regs, dumpRegister{reg, 0xFF})
	}
	// SDE
	for reg := 0x5580; reg < 0x558a; reg++ {
		regs = append(regs, dumpRegister{reg, 0xFF})
	}
	return append(regs, dumpRegister{0x558a, 0x1FF})
}

// registerDump はセンサーファミリーごとのダンプ対象を返す
func registerDump(id camera.SensorID) []dumpRegister {
	switch id {
	case camera.SensorOV3660, camera.SensorOV5640:
		return ov3660Registers
	default:
		return nil
	}
}

type statusField struct {
	key   string
	value string
}

// StatusReport はキー順が固定されたフラットなステータス
type StatusReport struct {
	fields []statusField
}

func (r *StatusReport) signed(key string, v int) {
	r.fields = append(r.fields, statusField{key, strconv.FormatInt(int64(v), 10)})
}

func (r *StatusReport) unsigned(key string, v uint) {
	r.fields = append(r.fields, statusField{key, strconv.FormatUint(uint64(v), 10)})
}

// Keys はフィールドのキーを出力順に返す
func (r *StatusReport) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.key
	}
	return keys
}

// MarshalJSON は1行のJSONオブジェクトを返す（末尾の区切りなし）
func (r *StatusReport) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 32*len(r.fields)+2)
	buf = append(buf, '{')
	for i, f := range r.fields {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendQuote(buf, f.key)
		buf = append(buf, ':')
		buf = append(buf, f.value...)
	}
	return append(buf, '}'), nil
}

// Report はセンサーの現在設定をまとめる
func Report(sensor camera.SensorHandle) *StatusReport {
	r := &StatusReport{}

	for _, reg := range registerDump(sensor.ID()) {
		v, err := sensor.GetReg(reg.addr, reg.mask)
		if err != nil {
			slog.Warn("ステータス用レジスタの読み出しに失敗", "reg", fmt.Sprintf("0x%X", reg.addr), "error", err)
			v = -1
		}
		r.signed(fmt.Sprintf("0x%X", reg.addr), v)
	}

	st := sensor.Status()
	r.signed("xclk", sensor.Xclk())
	r.unsigned("pixformat", uint(sensor.PixFormat()))
	r.unsigned("framesize", uint(st.Framesize))
	r.unsigned("quality", st.Quality)
	r.signed("brightness", st.Brightness)
	r.signed("contrast", st.Contrast)
	r.signed("saturation", st.Saturation)
	r.signed("sharpness", st.Sharpness)
	r.unsigned("special_effect", st.SpecialEffect)
	r.unsigned("wb_mode", st.WBMode)
	r.unsigned("awb", st.AWB)
	r.unsigned("awb_gain", st.AWBGain)
	r.unsigned("aec", st.AEC)
	r.unsigned("aec2", st.AEC2)
	r.signed("ae_level", st.AELevel)
	r.unsigned("aec_value", st.AECValue)
	r.unsigned("agc", st.AGC)
	r.unsigned("agc_gain", st.AGCGain)
	r.unsigned("gainceiling", st.GainCeiling)
	r.unsigned("bpc", st.BPC)
	r.unsigned("wpc", st.WPC)
	r.unsigned("raw_gma", st.RawGMA)
	r.unsigned("lenc", st.Lenc)
	r.unsigned("hmirror", st.HMirror)
	r.unsigned("vflip", st.VFlip)
	r.unsigned("dcw", st.DCW)
	r.unsigned("scale", st.Scale)
	r.unsigned("binning", st.Binning)
	r.unsigned("colorbar", st.Colorbar)

	return r
}
