package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GaabGarcez/Arenna-cameras/internal/core"
)

// Server는 설정 페이지와 MJPEG 스트림을 제공하는 HTTP 서버입니다
type Server struct {
	logger     *zap.Logger
	httpServer *http.Server
	router     *gin.Engine
	port       int

	manager      *core.ChannelManager
	streamFPS    float64
	jpegQuality  int
	probeTimeout time.Duration

	upgrader websocket.Upgrader
}

// ServerConfig는 API 서버 설정
type ServerConfig struct {
	Port         int
	Production   bool
	Logger       *zap.Logger
	Manager      *core.ChannelManager
	StreamFPS    float64
	JPEGQuality  int
	ProbeTimeout time.Duration
}

// NewServer는 새로운 API 서버를 생성합니다
func NewServer(config ServerConfig) *Server {
	if !config.Production {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(loggerMiddleware(config.Logger))
	router.SetHTMLTemplate(pageTemplates)

	server := &Server{
		logger:       config.Logger,
		router:       router,
		port:         config.Port,
		manager:      config.Manager,
		streamFPS:    config.StreamFPS,
		jpegQuality:  config.JPEGQuality,
		probeTimeout: config.ProbeTimeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // LAN 전용 배포: 모든 origin 허용
			},
		},
	}

	server.setupRoutes()

	return server
}

// setupRoutes는 라우트를 설정합니다
func (s *Server) setupRoutes() {
	// 설정/시청 페이지
	s.router.GET("/", s.handleIndex)
	s.router.POST("/connect", s.handleConnect)
	s.router.GET("/view", s.handleView)

	// MJPEG 스트림
	s.router.GET("/ch/:ch", s.handleChannelStream)
	s.router.GET("/mosaic.mjpg", s.handleMosaicStream)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/status", s.handleStatus)
		v1.POST("/probe", s.handleProbe)
	}

	// 상태 푸시 WebSocket
	s.router.GET("/ws/status", s.handleStatusSocket)
}

// Start는 API 서버를 시작합니다
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)

	// MJPEG 응답은 무한 스트림이므로 WriteTimeout은 두지 않음
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	s.logger.Info("Starting API server",
		zap.String("addr", addr),
	)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("API server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop은 API 서버를 종료합니다
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")

	if s.httpServer != nil {
		return s.httpServer.Close()
	}

	return nil
}

// Router는 테스트용으로 내부 라우터를 노출합니다
func (s *Server) Router() http.Handler {
	return s.router
}

// corsMiddleware는 CORS 미들웨어입니다
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// loggerMiddleware는 로깅 미들웨어입니다
func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
