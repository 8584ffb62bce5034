package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GaabGarcez/Arenna-cameras/internal/dvr"
	"github.com/GaabGarcez/Arenna-cameras/internal/frame"
	"github.com/GaabGarcez/Arenna-cameras/internal/mjpeg"
	"github.com/GaabGarcez/Arenna-cameras/internal/mosaic"
)

// indexData는 설정 페이지 템플릿 데이터
type indexData struct {
	IP           string
	User         string
	Password     string
	Subtype      int
	TargetHeight int
	Selected     map[int]bool
	AllChannels  []int
	Connected    bool
}

// handleIndex는 DVR 연결 설정 페이지를 렌더링합니다
func (s *Server) handleIndex(c *gin.Context) {
	data := indexData{
		TargetHeight: 360,
		Selected:     make(map[int]bool),
	}
	for ch := dvr.MinChannel; ch <= dvr.MaxChannel; ch++ {
		data.AllChannels = append(data.AllChannels, ch)
	}

	if settings, ok := s.manager.Settings(); ok {
		data.IP = settings.IP
		data.User = settings.User
		data.Password = settings.Password
		data.Subtype = settings.Subtype
		data.TargetHeight = settings.TargetHeight
		data.Connected = true
		for _, ch := range settings.Channels {
			data.Selected[ch] = true
		}
	}

	c.HTML(http.StatusOK, "index", data)
}

// handleConnect는 설정 폼을 받아 채널 집합을 재구성합니다
func (s *Server) handleConnect(c *gin.Context) {
	subtype, err := strconv.Atoi(c.DefaultPostForm("subtype", "0"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid subtype")
		return
	}

	targetHeight, err := strconv.Atoi(c.DefaultPostForm("target_height", "360"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid target_height")
		return
	}

	var channels []int
	for _, v := range c.PostFormArray("channels") {
		ch, err := strconv.Atoi(v)
		if err != nil {
			c.String(http.StatusBadRequest, "invalid channel: %s", v)
			return
		}
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		channels = []int{1}
	}

	settings := dvr.Settings{
		IP:           strings.TrimSpace(c.PostForm("ip")),
		User:         strings.TrimSpace(c.PostForm("user")),
		Password:     c.PostForm("password"),
		Channels:     channels,
		Subtype:      subtype,
		TargetHeight: targetHeight,
	}

	if err := s.manager.Reconfigure(settings); err != nil {
		c.String(http.StatusBadRequest, "reconfigure failed: %v", err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/view")
}

// viewData는 시청 페이지 템플릿 데이터
type viewData struct {
	Mode     string
	Channels []int
}

// handleView는 시청 페이지를 렌더링합니다
func (s *Server) handleView(c *gin.Context) {
	mode := c.DefaultQuery("mode", "row") // row | grid2 | grid4

	c.HTML(http.StatusOK, "view", viewData{
		Mode:     mode,
		Channels: s.manager.Channels(),
	})
}

// newEncoder는 쿼리 파라미터로 레이트/품질을 재정의할 수 있는 인코더를 만듭니다
func (s *Server) newEncoder(c *gin.Context) *mjpeg.Encoder {
	fps := s.streamFPS
	if v := c.Query("fps"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			fps = parsed
		}
	}

	quality := s.jpegQuality
	if v := c.Query("quality"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 && parsed <= 100 {
			quality = parsed
		}
	}

	return mjpeg.NewEncoder(mjpeg.Config{
		FPS:     fps,
		Quality: quality,
		Logger:  s.logger,
	})
}

// serveStream은 접근자를 MJPEG 스트림으로 전송합니다.
// 뷰어가 끊으면 요청 컨텍스트가 취소되어 생산 루프가 종료됩니다.
func (s *Server) serveStream(c *gin.Context, src frame.Accessor) {
	enc := s.newEncoder(c)

	c.Header("Content-Type", enc.ContentType())
	c.Header("Cache-Control", "no-cache, no-store")
	c.Header("Connection", "close")

	if err := enc.Serve(c.Request.Context(), c.Writer, src); err != nil {
		// 뷰어 연결 종료가 정상 경로
		s.logger.Debug("Viewer stream closed", zap.Error(err))
	}
}

// handleChannelStream은 단일 채널 MJPEG 스트림을 제공합니다.
// 경로 형식: /ch/5.mjpg
func (s *Server) handleChannelStream(c *gin.Context) {
	raw := strings.TrimSuffix(c.Param("ch"), ".mjpg")
	channel, err := strconv.Atoi(raw)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid channel: %s", raw)
		return
	}

	accessor, ok := s.manager.Accessor(channel)
	if !ok {
		c.String(http.StatusNotFound, "channel %d not active", channel)
		return
	}

	s.serveStream(c, accessor)
}

// handleMosaicStream은 모자이크 MJPEG 스트림을 제공합니다.
// mode=row|grid, cols=N, subset=all|first4
func (s *Server) handleMosaicStream(c *gin.Context) {
	mode := c.DefaultQuery("mode", "row")
	subset := c.DefaultQuery("subset", "all")

	cols, err := strconv.Atoi(c.DefaultQuery("cols", "2"))
	if err != nil || cols < 1 {
		c.String(http.StatusBadRequest, "invalid cols")
		return
	}

	settings, ok := s.manager.Settings()
	if !ok {
		c.String(http.StatusNotFound, "no active channels")
		return
	}

	channels := s.manager.Channels()
	if subset == "first4" && len(channels) > 4 {
		channels = channels[:4]
	}

	accessors := make([]frame.Accessor, 0, len(channels))
	for _, ch := range channels {
		if acc, ok := s.manager.Accessor(ch); ok {
			accessors = append(accessors, acc)
		}
	}
	if len(accessors) == 0 {
		c.String(http.StatusNotFound, "no active channels")
		return
	}

	var src frame.Accessor
	if mode == "grid" {
		src = mosaic.Grid(accessors, cols, settings.TargetHeight)
	} else {
		src = mosaic.Row(accessors)
	}

	s.serveStream(c, src)
}

// handleStatus는 채널 상태를 JSON으로 반환합니다
func (s *Server) handleStatus(c *gin.Context) {
	status := s.manager.Status()

	resp := gin.H{
		"channels": status,
		"count":    len(status),
	}
	if settings, ok := s.manager.Settings(); ok {
		resp["dvr"] = gin.H{
			"ip":            settings.IP,
			"user":          settings.User,
			"subtype":       settings.Subtype,
			"target_height": settings.TargetHeight,
		}
	}

	c.JSON(http.StatusOK, resp)
}

// probeRequest는 채널 점검 요청
type probeRequest struct {
	Channel int `json:"channel" binding:"required"`
}

// handleProbe는 현재 자격 증명으로 채널 연결을 사전 점검합니다
func (s *Server) handleProbe(c *gin.Context) {
	var req probeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Channel < dvr.MinChannel || req.Channel > dvr.MaxChannel {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel out of range"})
		return
	}

	settings, ok := s.manager.Settings()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "not connected to a DVR"})
		return
	}

	url := dvr.StreamURL(settings.IP, settings.User, settings.Password, req.Channel, settings.Subtype)

	result, err := dvr.Probe(c.Request.Context(), url, s.probeTimeout, s.logger)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
