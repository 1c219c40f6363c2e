package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

var errHeaderWritten = errors.New("レスポンスヘッダーは送信済みです")

// ginResponder は stream.Responder を gin.Context の上に実装する
type ginResponder struct {
	c *gin.Context
}

func newResponder(c *gin.Context) *ginResponder {
	return &ginResponder{c: c}
}

func (r *ginResponder) SetContentType(contentType string) error {
	if r.c.Writer.Written() {
		return errHeaderWritten
	}
	r.c.Header("Content-Type", contentType)
	return nil
}

func (r *ginResponder) SetHeader(key, value string) {
	r.c.Header(key, value)
}

// SendChunk は書き込んでフラッシュする。切断済みならエラーを返す
func (r *ginResponder) SendChunk(p []byte) error {
	if err := r.c.Request.Context().Err(); err != nil {
		return err
	}
	if _, err := r.c.Writer.Write(p); err != nil {
		return err
	}
	r.c.Writer.Flush()
	return nil
}

func (r *ginResponder) Send(p []byte) error {
	r.c.Header("Content-Length", strconv.Itoa(len(p)))
	r.c.Status(http.StatusOK)
	_, err := r.c.Writer.Write(p)
	return err
}

func (r *ginResponder) SendError(status int, message string) error {
	if r.c.Writer.Written() {
		return errHeaderWritten
	}
	r.c.String(status, message)
	return nil
}
