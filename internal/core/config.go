package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/GaabGarcez/Arenna-cameras/internal/dvr"
)

// Config는 전체 애플리케이션 설정을 담는 구조체
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	DVR     DVRConfig     `yaml:"dvr"`
	Capture CaptureConfig `yaml:"capture"`
	Stream  StreamConfig  `yaml:"stream"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	HTTPPort   int  `yaml:"http_port"`
	Production bool `yaml:"production"`
}

// DVRConfig는 프로세스 시작 시 적용할 기본 DVR 연결 설정.
// IP가 비어 있으면 시작 시 자동 연결하지 않습니다.
type DVRConfig struct {
	IP           string `yaml:"ip"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Channels     []int  `yaml:"channels"`
	Subtype      int    `yaml:"subtype"`
	TargetHeight int    `yaml:"target_height"`
}

type CaptureConfig struct {
	ReadTimeoutSec   int `yaml:"read_timeout"`      // FFmpeg 소켓 타임아웃 (초)
	CooldownSec      int `yaml:"reconnect_cooldown"` // 재연결 최소 간격 (초)
	RetrySleepMillis int `yaml:"retry_sleep_ms"`    // 실패 후 재시도 대기 (ms)
	ProbeTimeoutSec  int `yaml:"probe_timeout"`     // 채널 점검 제한 시간 (초)
}

type StreamConfig struct {
	FPS         float64 `yaml:"fps"`
	JPEGQuality int     `yaml:"jpeg_quality"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// LoadConfig는 YAML 파일에서 설정을 로드합니다
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// applyDefaults는 생략된 설정에 기본값을 채웁니다
func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8000
	}
	if c.Capture.ReadTimeoutSec == 0 {
		c.Capture.ReadTimeoutSec = 5
	}
	if c.Capture.CooldownSec == 0 {
		c.Capture.CooldownSec = 2
	}
	if c.Capture.RetrySleepMillis == 0 {
		c.Capture.RetrySleepMillis = 50
	}
	if c.Capture.ProbeTimeoutSec == 0 {
		c.Capture.ProbeTimeoutSec = 10
	}
	if c.Stream.FPS == 0 {
		c.Stream.FPS = 12
	}
	if c.Stream.JPEGQuality == 0 {
		c.Stream.JPEGQuality = 80
	}
	if c.DVR.TargetHeight == 0 {
		c.DVR.TargetHeight = 360
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}
}

// Validate는 설정값의 유효성을 검증합니다
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.Server.HTTPPort)
	}

	if c.Stream.FPS <= 0 {
		return fmt.Errorf("fps must be positive")
	}

	if c.Stream.JPEGQuality < 1 || c.Stream.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be in 1..100: %d", c.Stream.JPEGQuality)
	}

	// DVR 기본 설정은 IP가 있을 때만 검증 (시작 시 자동 연결용)
	if c.DVR.IP != "" {
		if err := c.DVRSettings().Validate(); err != nil {
			return fmt.Errorf("invalid dvr defaults: %w", err)
		}
	}

	return nil
}

// DVRSettings는 YAML의 DVR 기본값을 dvr.Settings로 변환합니다
func (c *Config) DVRSettings() dvr.Settings {
	return dvr.Settings{
		IP:           c.DVR.IP,
		User:         c.DVR.User,
		Password:     c.DVR.Password,
		Channels:     c.DVR.Channels,
		Subtype:      c.DVR.Subtype,
		TargetHeight: c.DVR.TargetHeight,
	}
}
