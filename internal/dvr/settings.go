package dvr

import (
	"fmt"
	"sort"
)

const (
	// MinChannel과 MaxChannel은 DVR이 지원하는 채널 번호 범위
	MinChannel = 1
	MaxChannel = 16

	// SubtypeMain은 고화질 스트림, SubtypeSub는 저지연 경량 스트림
	SubtypeMain = 0
	SubtypeSub  = 1
)

// Settings는 DVR 연결 설정의 불변 스냅샷입니다.
// 재설정 시 전체가 교체되며 부분 수정은 하지 않습니다.
type Settings struct {
	IP           string `json:"ip" yaml:"ip"`
	User         string `json:"user" yaml:"user"`
	Password     string `json:"-" yaml:"password"`
	Channels     []int  `json:"channels" yaml:"channels"`
	Subtype      int    `json:"subtype" yaml:"subtype"`
	TargetHeight int    `json:"target_height" yaml:"target_height"`
}

// Validate는 설정값의 유효성을 검증합니다
func (s Settings) Validate() error {
	if s.IP == "" {
		return fmt.Errorf("ip must not be empty")
	}

	if len(s.Channels) == 0 {
		return fmt.Errorf("at least one channel is required")
	}

	for _, ch := range s.Channels {
		if ch < MinChannel || ch > MaxChannel {
			return fmt.Errorf("channel %d out of range %d..%d", ch, MinChannel, MaxChannel)
		}
	}

	if s.Subtype != SubtypeMain && s.Subtype != SubtypeSub {
		return fmt.Errorf("invalid subtype: %d", s.Subtype)
	}

	if s.TargetHeight <= 0 {
		return fmt.Errorf("target_height must be positive: %d", s.TargetHeight)
	}

	return nil
}

// Normalize는 채널 목록을 중복 제거 후 오름차순 정렬한 복사본을 반환합니다
func (s Settings) Normalize() Settings {
	seen := make(map[int]bool, len(s.Channels))
	channels := make([]int, 0, len(s.Channels))

	for _, ch := range s.Channels {
		if !seen[ch] {
			seen[ch] = true
			channels = append(channels, ch)
		}
	}
	sort.Ints(channels)

	s.Channels = channels
	return s
}

// Clone은 설정의 독립적인 복사본을 반환합니다
func (s Settings) Clone() Settings {
	channels := make([]int, len(s.Channels))
	copy(channels, s.Channels)
	s.Channels = channels
	return s
}
