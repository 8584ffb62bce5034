package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/GaabGarcez/Arenna-cameras/internal/api"
	"github.com/GaabGarcez/Arenna-cameras/internal/core"
	"github.com/GaabGarcez/Arenna-cameras/internal/dvr"
	"github.com/GaabGarcez/Arenna-cameras/pkg/logger"
)

const (
	defaultConfigPath = "configs/config.yaml"
	version           = "0.1.0"
)

func main() {
	// 커맨드라인 플래그 파싱
	configPath := flag.String("config", defaultConfigPath, "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ARENNA DVR Viewer v%s\n", version)
		fmt.Printf("Go version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	// 설정 로드
	config, err := core.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 로거 초기화
	if err := logger.InitLogger(logger.LogConfig{
		Level:      config.Logging.Level,
		Output:     config.Logging.Output,
		FilePath:   config.Logging.FilePath,
		MaxSize:    config.Logging.MaxSize,
		MaxBackups: config.Logging.MaxBackups,
		MaxAge:     config.Logging.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting ARENNA DVR Viewer",
		zap.String("version", version),
		zap.String("go_version", runtime.Version()),
		zap.Int("num_cpu", runtime.NumCPU()),
	)

	// 채널 관리자 생성
	manager := core.NewChannelManager(core.ChannelManagerConfig{
		ReadTimeout: time.Duration(config.Capture.ReadTimeoutSec) * time.Second,
		Cooldown:    time.Duration(config.Capture.CooldownSec) * time.Second,
		RetrySleep:  time.Duration(config.Capture.RetrySleepMillis) * time.Millisecond,
		Logger:      logger.Log.Named("capture"),
	})
	defer manager.StopAll()

	// DVR 기본 설정이 있으면 바로 캡처 시작 (실패해도 서버는 계속)
	if config.DVR.IP != "" {
		if err := manager.Reconfigure(config.DVRSettings()); err != nil {
			logger.Error("Initial channel setup failed", zap.Error(err))
		}
	}

	// API 서버 시작
	server := api.NewServer(api.ServerConfig{
		Port:         config.Server.HTTPPort,
		Production:   config.Server.Production,
		Logger:       logger.Log.Named("api"),
		Manager:      manager,
		StreamFPS:    config.Stream.FPS,
		JPEGQuality:  config.Stream.JPEGQuality,
		ProbeTimeout: time.Duration(config.Capture.ProbeTimeoutSec) * time.Second,
	})

	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start API server", zap.Error(err))
	}

	// 같은 LAN의 다른 장비에서 접속할 주소 안내
	lanIP := dvr.LANIP(config.DVR.IP, "127.0.0.1")
	logger.Info("Server is running",
		zap.String("lan_url", fmt.Sprintf("http://%s:%d", lanIP, config.Server.HTTPPort)),
		zap.String("local_url", fmt.Sprintf("http://127.0.0.1:%d", config.Server.HTTPPort)),
	)

	// 종료 시그널 대기
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received shutdown signal",
		zap.String("signal", sig.String()),
	)

	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop API server", zap.Error(err))
	}
	manager.StopAll()

	logger.Info("Shutdown complete")
}
