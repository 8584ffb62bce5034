package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GaabGarcez/Arenna-cameras/internal/capture"
	"github.com/GaabGarcez/Arenna-cameras/internal/dvr"
	"github.com/GaabGarcez/Arenna-cameras/internal/frame"
)

// SourceFactory는 채널 캡처 소스를 생성합니다 (테스트에서 교체 가능)
type SourceFactory func(url string, targetHeight int) capture.Source

// ChannelManagerConfig는 채널 관리자 설정
type ChannelManagerConfig struct {
	ReadTimeout time.Duration
	Cooldown    time.Duration
	RetrySleep  time.Duration
	Logger      *zap.Logger

	// SourceFactory가 nil이면 RTSP 소스를 사용합니다
	SourceFactory SourceFactory
}

// ChannelManager는 활성 채널의 캡처 액터와 프레임 캐시를 관리합니다.
// Reconfigure가 유일한 변경 진입점이며, 캐시의 키 집합은 항상
// 마지막으로 성공한 Reconfigure가 요청한 채널 집합과 일치합니다.
type ChannelManager struct {
	logger        *zap.Logger
	readTimeout   time.Duration
	cooldown      time.Duration
	retrySleep    time.Duration
	sourceFactory SourceFactory

	mutex    sync.RWMutex
	actors   map[int]*capture.Actor
	settings *dvr.Settings
}

// ChannelStatus는 채널 하나의 현재 상태
type ChannelStatus struct {
	Channel   int    `json:"channel"`
	Label     string `json:"label"`
	Connected bool   `json:"connected"`
}

// NewChannelManager는 새로운 채널 관리자를 생성합니다
func NewChannelManager(config ChannelManagerConfig) *ChannelManager {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return &ChannelManager{
		logger:        config.Logger,
		readTimeout:   config.ReadTimeout,
		cooldown:      config.Cooldown,
		retrySleep:    config.RetrySleep,
		sourceFactory: config.SourceFactory,
		actors:        make(map[int]*capture.Actor),
	}
}

// Reconfigure는 전체 채널 집합을 원자적으로 교체합니다.
// 기존 액터를 모두 중지한 뒤 새 설정으로 전부 다시 시작합니다.
// 동시에 호출되면 하나의 잠금 아래 직렬화됩니다.
func (m *ChannelManager) Reconfigure(settings dvr.Settings) error {
	settings = settings.Normalize()
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// 새 액터가 같은 상위 채널을 두고 경쟁하지 않도록
	// 기존 액터의 종료를 기다린 후 시작합니다
	m.stopAllLocked()

	actors := make(map[int]*capture.Actor, len(settings.Channels))
	for _, ch := range settings.Channels {
		url := dvr.StreamURL(settings.IP, settings.User, settings.Password, ch, settings.Subtype)
		label := fmt.Sprintf("CH%d", ch)

		cfg := capture.Config{
			URL:          url,
			Label:        label,
			TargetHeight: settings.TargetHeight,
			ReadTimeout:  m.readTimeout,
			Cooldown:     m.cooldown,
			RetrySleep:   m.retrySleep,
			Logger:       m.logger.With(zap.Int("channel", ch)),
		}
		if m.sourceFactory != nil {
			cfg.Source = m.sourceFactory(url, settings.TargetHeight)
		}

		actor := capture.NewActor(cfg)
		actor.Start()
		actors[ch] = actor

		m.logger.Info("Channel started",
			zap.Int("channel", ch),
			zap.String("url", dvr.MaskURL(url)),
		)
	}

	m.actors = actors
	snapshot := settings.Clone()
	m.settings = &snapshot

	m.logger.Info("Channels reconfigured",
		zap.Ints("channels", settings.Channels),
		zap.Int("subtype", settings.Subtype),
		zap.Int("target_height", settings.TargetHeight),
	)

	return nil
}

// Accessor는 채널의 프레임 접근자를 반환합니다.
// 활성 채널이 아니면 (nil, false)
func (m *ChannelManager) Accessor(channel int) (frame.Accessor, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	actor, exists := m.actors[channel]
	if !exists {
		return nil, false
	}

	return actor.Accessor(), true
}

// Channels는 활성 채널 번호를 오름차순으로 반환합니다
func (m *ChannelManager) Channels() []int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	channels := make([]int, 0, len(m.actors))
	for ch := range m.actors {
		channels = append(channels, ch)
	}
	sort.Ints(channels)

	return channels
}

// Settings는 현재 적용된 설정의 복사본을 반환합니다
func (m *ChannelManager) Settings() (dvr.Settings, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.settings == nil {
		return dvr.Settings{}, false
	}

	return m.settings.Clone(), true
}

// Status는 모든 활성 채널의 상태를 반환합니다
func (m *ChannelManager) Status() []ChannelStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	channels := make([]int, 0, len(m.actors))
	for ch := range m.actors {
		channels = append(channels, ch)
	}
	sort.Ints(channels)

	status := make([]ChannelStatus, 0, len(channels))
	for _, ch := range channels {
		status = append(status, ChannelStatus{
			Channel:   ch,
			Label:     fmt.Sprintf("CH%d", ch),
			Connected: m.actors[ch].Connected(),
		})
	}

	return status
}

// StopAll은 모든 캡처 액터를 중지합니다
func (m *ChannelManager) StopAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.stopAllLocked()
}

// stopAllLocked는 잠금을 쥔 채 모든 액터를 병렬로 중지하고 종료를 기다립니다
func (m *ChannelManager) stopAllLocked() {
	if len(m.actors) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, actor := range m.actors {
		wg.Add(1)
		go func(a *capture.Actor) {
			defer wg.Done()
			a.Stop()
		}(actor)
	}
	wg.Wait()

	m.logger.Info("All channels stopped",
		zap.Int("count", len(m.actors)),
	)

	m.actors = make(map[int]*capture.Actor)
	m.settings = nil
}
