package core_test

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GaabGarcez/Arenna-cameras/internal/capture"
	"github.com/GaabGarcez/Arenna-cameras/internal/core"
	"github.com/GaabGarcez/Arenna-cameras/internal/dvr"
)

// trackingSource는 생성/해제를 추적하는 테스트 소스입니다
type trackingSource struct {
	mu     sync.Mutex
	img    *image.RGBA
	closes int
}

func (s *trackingSource) Open() error { return nil }

func (s *trackingSource) Read() (*image.RGBA, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out, true
}

func (s *trackingSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
}

func (s *trackingSource) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// sourceTracker는 팩토리가 만든 모든 소스를 기록합니다
type sourceTracker struct {
	mu      sync.Mutex
	sources []*trackingSource
}

func (tr *sourceTracker) factory(url string, targetHeight int) capture.Source {
	img := image.NewRGBA(image.Rect(0, 0, targetHeight*16/9, targetHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{B: 200, A: 255}), image.Point{}, draw.Src)

	src := &trackingSource{img: img}

	tr.mu.Lock()
	tr.sources = append(tr.sources, src)
	tr.mu.Unlock()
	return src
}

func (tr *sourceTracker) created() []*trackingSource {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]*trackingSource, len(tr.sources))
	copy(out, tr.sources)
	return out
}

func newTestManager(tr *sourceTracker) *core.ChannelManager {
	return core.NewChannelManager(core.ChannelManagerConfig{
		Cooldown:      10 * time.Millisecond,
		RetrySleep:    time.Millisecond,
		SourceFactory: tr.factory,
	})
}

func testSettings(channels ...int) dvr.Settings {
	return dvr.Settings{
		IP:           "192.168.0.18",
		User:         "admin",
		Password:     "secret",
		Channels:     channels,
		Subtype:      dvr.SubtypeMain,
		TargetHeight: 90,
	}
}

func TestReconfigureExposesAllRequestedChannels(t *testing.T) {
	for count := 1; count <= 16; count++ {
		channels := make([]int, count)
		for i := range channels {
			channels[i] = i + 1
		}

		tr := &sourceTracker{}
		manager := newTestManager(tr)

		require.NoError(t, manager.Reconfigure(testSettings(channels...)))

		for _, ch := range channels {
			_, ok := manager.Accessor(ch)
			assert.True(t, ok, "channel %d missing (count=%d)", ch, count)
		}
		// 요청하지 않은 채널은 absent
		if count < 16 {
			_, ok := manager.Accessor(count + 1)
			assert.False(t, ok)
		}

		manager.StopAll()
	}
}

func TestReconfigureDisjointSetTearsDownOldActors(t *testing.T) {
	tr := &sourceTracker{}
	manager := newTestManager(tr)
	defer manager.StopAll()

	require.NoError(t, manager.Reconfigure(testSettings(1, 2, 3)))
	firstGen := tr.created()
	require.Len(t, firstGen, 3)

	require.NoError(t, manager.Reconfigure(testSettings(10, 11)))

	// 이전 집합의 접근자는 모두 사라짐
	for _, ch := range []int{1, 2, 3} {
		_, ok := manager.Accessor(ch)
		assert.False(t, ok, "stale accessor for channel %d", ch)
	}
	for _, ch := range []int{10, 11} {
		_, ok := manager.Accessor(ch)
		assert.True(t, ok)
	}

	// 이전 액터들의 연결은 정확히 한 번씩 해제됨
	for i, src := range firstGen {
		assert.Equal(t, 1, src.closeCount(), "source %d", i)
	}
}

func TestReconfigureIdempotentRestartsActors(t *testing.T) {
	tr := &sourceTracker{}
	manager := newTestManager(tr)
	defer manager.StopAll()

	settings := testSettings(4, 5)
	require.NoError(t, manager.Reconfigure(settings))
	require.NoError(t, manager.Reconfigure(settings))

	// 동일 인자라도 액터는 새로 시작됨 (소스 4개 생성, 앞의 2개는 해제)
	created := tr.created()
	require.Len(t, created, 4)
	assert.Equal(t, 1, created[0].closeCount())
	assert.Equal(t, 1, created[1].closeCount())
	assert.Equal(t, 0, created[2].closeCount())
	assert.Equal(t, 0, created[3].closeCount())

	assert.Equal(t, []int{4, 5}, manager.Channels())
}

func TestReconfigureRejectsInvalidInput(t *testing.T) {
	tr := &sourceTracker{}
	manager := newTestManager(tr)
	defer manager.StopAll()

	require.NoError(t, manager.Reconfigure(testSettings(1)))

	cases := []dvr.Settings{
		testSettings(0),  // 채널 범위 밖
		testSettings(17), // 채널 범위 밖
		{IP: "", User: "a", Password: "b", Channels: []int{1}, Subtype: 0, TargetHeight: 90},
		{IP: "h", User: "a", Password: "b", Channels: []int{1}, Subtype: 9, TargetHeight: 90},
		{IP: "h", User: "a", Password: "b", Channels: []int{1}, Subtype: 0, TargetHeight: 0},
		{IP: "h", User: "a", Password: "b", Channels: nil, Subtype: 0, TargetHeight: 90},
	}

	for i, s := range cases {
		assert.Error(t, manager.Reconfigure(s), "case %d", i)
	}

	// 잘못된 입력은 기존 상태를 건드리지 않음 (검증은 teardown 전에 수행)
	_, ok := manager.Accessor(1)
	assert.True(t, ok)
}

func TestAccessorReturnsLiveFrames(t *testing.T) {
	tr := &sourceTracker{}
	manager := newTestManager(tr)
	defer manager.StopAll()

	require.NoError(t, manager.Reconfigure(testSettings(7)))

	acc, ok := manager.Accessor(7)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		return acc() != nil
	}, time.Second, 5*time.Millisecond)

	img := acc()
	assert.Equal(t, 90, img.Bounds().Dy())
}

func TestStatusReportsChannels(t *testing.T) {
	tr := &sourceTracker{}
	manager := newTestManager(tr)
	defer manager.StopAll()

	require.NoError(t, manager.Reconfigure(testSettings(2, 1)))

	status := manager.Status()
	require.Len(t, status, 2)
	// 채널 오름차순
	assert.Equal(t, 1, status[0].Channel)
	assert.Equal(t, "CH1", status[0].Label)
	assert.Equal(t, 2, status[1].Channel)
}

func TestSettingsSnapshotIsCopy(t *testing.T) {
	tr := &sourceTracker{}
	manager := newTestManager(tr)
	defer manager.StopAll()

	require.NoError(t, manager.Reconfigure(testSettings(3, 1)))

	snapshot, ok := manager.Settings()
	require.True(t, ok)
	assert.Equal(t, []int{1, 3}, snapshot.Channels)

	// 스냅샷 수정이 내부 상태에 영향을 주지 않음
	snapshot.Channels[0] = 99
	again, _ := manager.Settings()
	assert.Equal(t, []int{1, 3}, again.Channels)
}
