package control

import (
	"fmt"

	"tenmado/internal/camera"
)

// PLLQuery は /spll のクエリ。欠落したフィールドは0として扱う
type PLLQuery struct {
	Bypass *int
	Mul    *int
	Sys    *int
	Root   *int
	Pre    *int
	SelD5  *int
	PCLKEn *int
	PCLK   *int
}

// PLL はクエリをPLLパラメータに変換する
func (q PLLQuery) PLL() camera.PLL {
	return camera.PLL{
		Bypass: intOrZero(q.Bypass),
		Mul:    intOrZero(q.Mul),
		Sys:    intOrZero(q.Sys),
		Root:   intOrZero(q.Root),
		Pre:    intOrZero(q.Pre),
		SelD5:  intOrZero(q.SelD5),
		PCLKEn: intOrZero(q.PCLKEn),
		PCLK:   intOrZero(q.PCLK),
	}
}

// SetPLL はPLLを再設定する
func SetPLL(sensor camera.SensorHandle, pll camera.PLL) error {
	if err := sensor.SetPLL(pll); err != nil {
		return &DriverError{
			Op: fmt.Sprintf("set_pll(bypass=%d mul=%d sys=%d root=%d pre=%d seld5=%d pclken=%d pclk=%d)",
				pll.Bypass, pll.Mul, pll.Sys, pll.Root, pll.Pre, pll.SelD5, pll.PCLKEn, pll.PCLK),
			Err: err,
		}
	}
	return nil
}

// clockVar は /xclk で認識されるクロックパラメータ名
const clockVar = "xclk"

// SetClock は var/val でクロックパラメータを1つ設定する
func SetClock(sensor camera.SensorHandle, key, value *string) error {
	if key == nil || *key == "" {
		return &MissingParamError{Name: "var"}
	}
	mhz, err := ParseInt("val", value)
	if err != nil {
		return err
	}
	if *key != clockVar {
		return fmt.Errorf("%q: %w", *key, ErrUnknownKey)
	}

	if err := sensor.SetXclk(mhz); err != nil {
		return &DriverError{Op: fmt.Sprintf("set_xclk %dMHz", mhz), Err: err}
	}
	return nil
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func boolOrFalse(v *bool) bool {
	return v != nil && *v
}
