package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	statusPushInterval = 1 * time.Second
	wsWriteTimeout     = 5 * time.Second
)

// handleStatusSocket은 채널 상태를 주기적으로 푸시하는 WebSocket입니다.
// 클라이언트가 끊으면 쓰기 실패로 감지하고 종료합니다.
func (s *Server) handleStatusSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	s.logger.Info("Status socket connected",
		zap.String("remote_addr", c.Request.RemoteAddr),
	)

	// 제어 프레임 처리와 연결 종료 감지를 위한 읽기 루프
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			s.logger.Info("Status socket disconnected",
				zap.String("remote_addr", c.Request.RemoteAddr),
			)
			return
		case <-ticker.C:
			payload := gin.H{
				"channels": s.manager.Status(),
				"time":     time.Now().UTC(),
			}

			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(payload); err != nil {
				s.logger.Debug("Status push failed", zap.Error(err))
				return
			}
		}
	}
}
