package generated

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiYAML []byte

// GetSwagger は埋め込まれたOpenAPI定義を読み込んで返す
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiYAML)
	if err != nil {
		return nil, fmt.Errorf("OpenAPI定義の読み込みに失敗: %w", err)
	}
	return doc, nil
}

// RawSpec は埋め込まれたOpenAPI定義（YAML）を返す
func RawSpec() []byte {
	return openapiYAML
}
