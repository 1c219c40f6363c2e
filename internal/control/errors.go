package control

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnknownKey は設定テーブルに存在しないキーを表す
	ErrUnknownKey = errors.New("unknown setting")
	// ErrNotImplemented はセンサーが操作の拡張ポイントを実装していないことを表す
	ErrNotImplemented = errors.New("not implemented by sensor")
)

// MissingParamError は必須パラメータの欠落を表す
type MissingParamError struct {
	Name string
}

func (e *MissingParamError) Error() string {
	return "missing parameter: " + e.Name
}

// InvalidParamError は整数として解釈できないパラメータを表す
type InvalidParamError struct {
	Name  string
	Value string
	Err   error
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%q", e.Name, e.Value)
}

func (e *InvalidParamError) Unwrap() error {
	return e.Err
}

// DriverError はセンサードライバーが失敗を返したことを表す
type DriverError struct {
	Op  string
	Err error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// HTTPStatus はエラー種別をHTTPステータスに対応付ける
func HTTPStatus(err error) int {
	var missing *MissingParamError
	var invalid *InvalidParamError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &missing), errors.As(err, &invalid), errors.Is(err, ErrUnknownKey):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
