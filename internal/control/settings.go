package control

import (
	"fmt"

	"tenmado/internal/camera"
)

// op は名前付き設定が呼び出すセッターの種類
type op int

const (
	opFramesize op = iota
	opQuality
	opContrast
	opBrightness
	opSaturation
	opSharpness
	opGainCeiling
	opColorbar
	opWhitebal
	opGainCtrl
	opExposureCtrl
	opHMirror
	opVFlip
	opAWBGain
	opAGCGain
	opAECValue
	opAEC2
	opDCW
	opBPC
	opWPC
	opRawGMA
	opLenc
	opSpecialEffect
	opWBMode
	opAELevel
)

type setting struct {
	key string
	op  op
}

// settings は要求キーとセッターの対応表（構築後は変更しない）
var settings = [...]setting{
	{"framesize", opFramesize},
	{"quality", opQuality},
	{"contrast", opContrast},
	{"brightness", opBrightness},
	{"saturation", opSaturation},
	{"sharpness", opSharpness},
	{"gainceiling", opGainCeiling},
	{"colorbar", opColorbar},
	{"awb", opWhitebal},
	{"agc", opGainCtrl},
	{"aec", opExposureCtrl},
	{"hmirror", opHMirror},
	{"vflip", opVFlip},
	{"awb_gain", opAWBGain},
	{"agc_gain", opAGCGain},
	{"aec_value", opAECValue},
	{"aec2", opAEC2},
	{"dcw", opDCW},
	{"bpc", opBPC},
	{"wpc", opWPC},
	{"raw_gma", opRawGMA},
	{"lenc", opLenc},
	{"special_effect", opSpecialEffect},
	{"wb_mode", opWBMode},
	{"ae_level", opAELevel},
}

// Keys は認識される設定キーを表の順に返す
func Keys() []string {
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.key
	}
	return keys
}

// Apply は1つの設定をセンサーに適用する
//
// framesize はピクセルフォーマットがJPEGの場合のみ反映し、それ以外は何もせず成功を返す。
func Apply(sensor camera.SensorHandle, key string, value int) error {
	for _, s := range settings {
		if s.key != key {
			continue
		}
		if err := invoke(sensor, s.op, value); err != nil {
			return &DriverError{Op: "set " + key, Err: err}
		}
		return nil
	}
	return fmt.Errorf("%q: %w", key, ErrUnknownKey)
}

// ApplyQuery は var/val クエリを解析して Apply する
func ApplyQuery(sensor camera.SensorHandle, key, value *string) error {
	if key == nil || *key == "" {
		return &MissingParamError{Name: "var"}
	}
	v, err := ParseInt("val", value)
	if err != nil {
		return err
	}
	return Apply(sensor, *key, v)
}

// invoke は種類に対応するセッターを1回だけ呼び出す
func invoke(sensor camera.SensorHandle, o op, v int) error {
	switch o {
	case opFramesize:
		if sensor.PixFormat() != camera.PixFormatJPEG {
			return nil
		}
		return sensor.SetFramesize(camera.Framesize(v))
	case opQuality:
		return sensor.SetQuality(v)
	case opContrast:
		return sensor.SetContrast(v)
	case opBrightness:
		return sensor.SetBrightness(v)
	case opSaturation:
		return sensor.SetSaturation(v)
	case opSharpness:
		return sensor.SetSharpness(v)
	case opGainCeiling:
		return sensor.SetGainCeiling(v)
	case opColorbar:
		return sensor.SetColorbar(v)
	case opWhitebal:
		return sensor.SetWhitebal(v)
	case opGainCtrl:
		return sensor.SetGainCtrl(v)
	case opExposureCtrl:
		return sensor.SetExposureCtrl(v)
	case opHMirror:
		return sensor.SetHMirror(v)
	case opVFlip:
		return sensor.SetVFlip(v)
	case opAWBGain:
		return sensor.SetAWBGain(v)
	case opAGCGain:
		return sensor.SetAGCGain(v)
	case opAECValue:
		return sensor.SetAECValue(v)
	case opAEC2:
		return sensor.SetAEC2(v)
	case opDCW:
		return sensor.SetDCW(v)
	case opBPC:
		return sensor.SetBPC(v)
	case opWPC:
		return sensor.SetWPC(v)
	case opRawGMA:
		return sensor.SetRawGMA(v)
	case opLenc:
		return sensor.SetLenc(v)
	case opSpecialEffect:
		return sensor.SetSpecialEffect(v)
	case opWBMode:
		return sensor.SetWBMode(v)
	case opAELevel:
		return sensor.SetAELevel(v)
	default:
		return fmt.Errorf("未定義の操作: %d", o)
	}
}
