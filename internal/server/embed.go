package server

import (
	"embed"
	"log/slog"
)

//go:embed web/index.html
var embedFS embed.FS

// getIndexHTML はランディングページを返す
func getIndexHTML() []byte {
	data, err := embedFS.ReadFile("web/index.html")
	if err != nil {
		slog.Error("埋め込みindex.htmlの読み込みに失敗", "error", err)
		return []byte("<!DOCTYPE html><html><body>Hello, Streamer!</body></html>")
	}
	return data
}
