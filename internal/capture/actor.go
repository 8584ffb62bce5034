package capture

import (
	"image"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GaabGarcez/Arenna-cameras/internal/frame"
)

const (
	// defaultCooldown은 재연결 시도 사이의 최소 간격
	defaultCooldown = 2 * time.Second
	// defaultRetrySleep은 읽기 실패 후 재시도 전 대기 시간 (CPU 사용량 제한)
	defaultRetrySleep = 50 * time.Millisecond
)

// Config는 캡처 액터 설정
type Config struct {
	URL          string
	Label        string
	TargetHeight int
	ReadTimeout  time.Duration
	Cooldown     time.Duration
	RetrySleep   time.Duration
	Logger       *zap.Logger

	// Source가 nil이면 URL 기반 RTSP 소스를 사용합니다 (테스트에서 주입 가능)
	Source Source
}

// Actor는 채널 하나의 캡처 액터입니다.
// 연결을 단독 소유하고, 최신 디코딩 프레임을 유지하며, 스스로 재연결을 관리합니다.
type Actor struct {
	label        string
	targetHeight int
	cooldown     time.Duration
	retrySleep   time.Duration
	logger       *zap.Logger
	source       Source

	// 최신 프레임 (복사본으로만 노출)
	mutex     sync.RWMutex
	latest    *image.RGBA
	connected bool
	started   bool

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewActor는 새로운 캡처 액터를 생성합니다
func NewActor(config Config) *Actor {
	if config.Cooldown <= 0 {
		config.Cooldown = defaultCooldown
	}
	if config.RetrySleep <= 0 {
		config.RetrySleep = defaultRetrySleep
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Source == nil {
		config.Source = newRTSPSource(config.URL, config.TargetHeight, config.ReadTimeout)
	}

	return &Actor{
		label:        config.Label,
		targetHeight: config.TargetHeight,
		cooldown:     config.Cooldown,
		retrySleep:   config.RetrySleep,
		logger:       config.Logger,
		source:       config.Source,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start는 캡처 루프를 시작합니다
func (a *Actor) Start() {
	a.logger.Info("Starting capture actor",
		zap.String("label", a.label),
		zap.Int("target_height", a.targetHeight),
	)

	a.mutex.Lock()
	a.started = true
	a.mutex.Unlock()

	go a.run()
}

// Stop은 캡처 루프를 중지하고 종료될 때까지 대기합니다.
// 여러 번 호출해도 안전하며, 연결은 정확히 한 번 해제됩니다.
// 시작된 적 없는 액터에 호출하면 즉시 반환합니다.
func (a *Actor) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
	})

	a.mutex.RLock()
	started := a.started
	a.mutex.RUnlock()
	if !started {
		return
	}
	<-a.done

	a.logger.Info("Capture actor stopped",
		zap.String("label", a.label),
	)
}

// Frame은 최신 프레임의 독립적인 복사본을 반환합니다.
// 아직 프레임이 없으면 nil을 반환합니다.
func (a *Actor) Frame() *image.RGBA {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return frame.Clone(a.latest)
}

// Accessor는 이 액터의 프레임 접근자를 반환합니다
func (a *Actor) Accessor() frame.Accessor {
	return a.Frame
}

// Connected는 마지막 읽기가 성공했는지를 반환합니다
func (a *Actor) Connected() bool {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.connected
}

// run은 캡처 루프입니다.
// 읽기 성공: 라벨을 입혀 최신 프레임으로 교체.
// 읽기 실패: 쿨다운이 지났으면 재연결을 시도하고, 항상 placeholder를 게시.
func (a *Actor) run() {
	defer close(a.done)
	defer a.source.Close()

	if err := a.source.Open(); err != nil {
		// 연결 실패는 치명적이지 않음 - 루프에서 재시도
		a.logger.Warn("Initial connection failed",
			zap.String("label", a.label),
			zap.Error(err),
		)
	}

	var lastAttempt time.Time

	for {
		select {
		case <-a.stop:
			return
		default:
		}

		img, ok := a.source.Read()
		if !ok || img == nil {
			if time.Since(lastAttempt) >= a.cooldown {
				if err := a.source.Open(); err != nil {
					a.logger.Debug("Reconnect attempt failed",
						zap.String("label", a.label),
						zap.Error(err),
					)
				} else {
					a.logger.Info("Channel reconnected",
						zap.String("label", a.label),
					)
				}
				// 결과와 무관하게 시도 시각 기록
				lastAttempt = time.Now()
			}

			a.publish(frame.Placeholder(a.targetHeight, a.label), false)

			select {
			case <-a.stop:
				return
			case <-time.After(a.retrySleep):
			}
			continue
		}

		if img.Bounds().Dy() != a.targetHeight {
			img = frame.ResizeToHeight(img, a.targetHeight)
		}
		frame.DrawLabel(img, a.label)

		a.publish(img, true)
	}
}

// publish는 최신 프레임을 통째로 교체합니다.
// 잠금은 포인터 교체 순간에만 유지됩니다.
func (a *Actor) publish(img *image.RGBA, connected bool) {
	a.mutex.Lock()
	a.latest = img
	a.connected = connected
	a.mutex.Unlock()
}
