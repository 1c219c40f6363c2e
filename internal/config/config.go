package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv は設定ファイルのパスを指定する環境変数
const ConfigPathEnv = "TENMADO_CONFIG"

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Camera  CameraConfig  `yaml:"camera"`
	Stream  StreamConfig  `yaml:"stream"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host"`                             // リッスンするホスト
	Port int    `yaml:"port" validate:"min=1,max=65535"` // リッスンするポート番号

	// タイムアウト設定
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"min=0"`  // 読み込みタイムアウト
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"min=0"` // 書き込みタイムアウト（0でストリーミング向けに無効）
}

// CameraConfig はカメラ関連の設定
type CameraConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sim v4l2"`              // sim: ソフトウェアセンサー, v4l2: USBカメラ
	Device string `yaml:"device" validate:"required_if=Driver v4l2"`     // デバイスパス (例: /dev/video0)
	Sensor string `yaml:"sensor" validate:"oneof=ov2640 ov3660 ov5640"` // sim のセンサー種別

	FrameBuffers int           `yaml:"frame_buffers" validate:"min=1,max=16"` // フレームバッファ数
	FrameTimeout time.Duration `yaml:"frame_timeout" validate:"min=0"`        // バッファ待ちの上限（0で待たない）
	FPS          int           `yaml:"fps" validate:"min=1,max=120"`

	Framesize int `yaml:"framesize" validate:"min=0,max=21"` // 初期出力サイズ番号
	Quality   int `yaml:"quality" validate:"min=0,max=63"`   // JPEG品質（小さいほど高画質）
	XclkMHz   int `yaml:"xclk_mhz" validate:"min=1,max=40"`  // マスタークロック
}

// StreamConfig はフレーム取得の再試行設定
type StreamConfig struct {
	AcquireRetries int           `yaml:"acquire_retries" validate:"min=0,max=100"` // 0 なら最初の失敗で終了
	RetryInterval  time.Duration `yaml:"retry_interval" validate:"min=0"`
}

// LoggingConfig はログ出力の設定
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0,
		},
		Camera: CameraConfig{
			Driver:       "sim",
			Device:       "/dev/video0",
			Sensor:       "ov2640",
			FrameBuffers: 2,
			FrameTimeout: time.Second,
			FPS:          15,
			Framesize:    8, // VGA
			Quality:      12,
			XclkMHz:      20,
		},
		Stream: StreamConfig{
			AcquireRetries: 0,
			RetryInterval:  100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load は設定を読み込む
// TENMADO_CONFIG が指すファイルがあれば読み込み、なければデフォルト値を使う
func Load() (*Config, error) {
	return LoadFile(os.Getenv(ConfigPathEnv))
}

// LoadFile は path の設定ファイルをデフォルト値の上に読み込む
// path が空の場合はデフォルト値に環境変数だけを反映する
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("設定ファイルの解析に失敗: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// applyEnv は環境変数で設定を上書きする
func (c *Config) applyEnv() error {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if value := os.Getenv("PORT"); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("環境変数 PORT が不正です: %q", value)
		}
		c.Server.Port = port
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %v は %s を満たしません", fe.Namespace(), fe.Value(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
