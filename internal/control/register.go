package control

import (
	"fmt"
	"strconv"

	"tenmado/internal/camera"
)

// maxRegister はレジスタアドレスの上限
const maxRegister = 0xFFFF

// ParseInt はクエリ値を整数として解釈する（0x などの接頭辞で基数を判定）
func ParseInt(name string, raw *string) (int, error) {
	if raw == nil || *raw == "" {
		return 0, &MissingParamError{Name: name}
	}

	v, err := strconv.ParseInt(*raw, 0, 64)
	if err != nil {
		return 0, &InvalidParamError{Name: name, Value: *raw, Err: err}
	}
	return int(v), nil
}

// parseUnsigned は負でない整数を解釈する
func parseUnsigned(name string, raw *string, max int) (int, error) {
	v, err := ParseInt(name, raw)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > max {
		return 0, &InvalidParamError{Name: name, Value: *raw, Err: fmt.Errorf("0..0x%X の範囲外", max)}
	}
	return v, nil
}

// RegisterValue はレジスタアクセスの要求内容
type RegisterValue struct {
	Address int
	Mask    int
	Value   int
}

// RegisterReading はレジスタ読み出しの結果
type RegisterReading struct {
	Address int
	Mask    int
	Raw     int // ドライバーが返した値
}

// Masked はこの層でマスクを適用した表示用の値を返す
func (r RegisterReading) Masked() int {
	return r.Raw & r.Mask
}

// JSON は読み出し結果を1行のJSONにする
func (r RegisterReading) JSON() string {
	return fmt.Sprintf(`{ "reg": "0x%X", "mask": "0x%X", "value": "0x%X", "masked": "0x%X" }`,
		r.Address, r.Mask, r.Raw, r.Masked())
}

// JSON は書き込み要求を1行のJSONにする
func (v RegisterValue) JSON() string {
	return fmt.Sprintf(`{ "reg": "0x%X", "mask": "0x%X", "value": "0x%X" }`, v.Address, v.Mask, v.Value)
}

// ParseRegister は register と mask を解釈する。欠落はドライバー呼び出し前にエラーにする
func ParseRegister(register, mask *string) (RegisterValue, error) {
	addr, err := parseUnsigned("register", register, maxRegister)
	if err != nil {
		return RegisterValue{}, err
	}
	m, err := parseUnsigned("mask", mask, 0xFFFFFFFF)
	if err != nil {
		return RegisterValue{}, err
	}
	return RegisterValue{Address: addr, Mask: m}, nil
}

// ReadRegister はレジスタを読み出す
func ReadRegister(sensor camera.SensorHandle, register, mask *string) (RegisterReading, error) {
	req, err := ParseRegister(register, mask)
	if err != nil {
		return RegisterReading{}, err
	}

	raw, err := sensor.GetReg(req.Address, req.Mask)
	if err != nil {
		return RegisterReading{}, &DriverError{Op: fmt.Sprintf("get_reg 0x%X", req.Address), Err: err}
	}
	if raw < 0 {
		return RegisterReading{}, &DriverError{Op: fmt.Sprintf("get_reg 0x%X", req.Address), Err: camera.ErrDriver}
	}

	return RegisterReading{Address: req.Address, Mask: req.Mask, Raw: raw}, nil
}

// WriteRegister はレジスタのマスクされたビットに書き込む
func WriteRegister(sensor camera.SensorHandle, register, mask, value *string) (RegisterValue, error) {
	req, err := ParseRegister(register, mask)
	if err != nil {
		return RegisterValue{}, err
	}
	req.Value, err = ParseInt("value", value)
	if err != nil {
		return RegisterValue{}, err
	}

	if err := sensor.SetReg(req.Address, req.Mask, req.Value); err != nil {
		return RegisterValue{}, &DriverError{Op: fmt.Sprintf("set_reg 0x%X", req.Address), Err: err}
	}
	return req, nil
}
