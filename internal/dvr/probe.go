package dvr

import (
	"context"
	"fmt"
	"time"

	"github.com/bluenviron/gortsplib/v4"
	"github.com/bluenviron/gortsplib/v4/pkg/base"
	"github.com/bluenviron/gortsplib/v4/pkg/description"
	"github.com/bluenviron/gortsplib/v4/pkg/format"
	"github.com/pion/rtp"
	"go.uber.org/zap"
)

// ProbeResult는 채널 사전 점검 결과입니다
type ProbeResult struct {
	MediaCount  int           `json:"media_count"`
	Codecs      []string      `json:"codecs"`
	FirstPacket time.Duration `json:"first_packet_ms"`
}

// Probe는 캡처를 시작하기 전에 채널이 실제로 살아있는지 점검합니다.
// DESCRIBE/SETUP/PLAY 후 첫 RTP 패킷이 제한 시간 안에 도착해야 성공으로 봅니다.
// DESCRIBE만으로는 죽은 채널도 성공할 수 있습니다.
func Probe(ctx context.Context, rawURL string, timeout time.Duration, logger *zap.Logger) (*ProbeResult, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	u, err := base.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid RTSP URL: %w", err)
	}

	transport := gortsplib.TransportTCP
	client := &gortsplib.Client{
		Transport:    &transport,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	logger.Info("Probing channel",
		zap.String("url", MaskURL(rawURL)),
	)

	start := time.Now()

	if err := client.Start(u.Scheme, u.Host); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()

	desc, _, err := client.Describe(u)
	if err != nil {
		return nil, fmt.Errorf("failed to describe: %w", err)
	}

	result := &ProbeResult{
		MediaCount: len(desc.Medias),
	}
	for _, media := range desc.Medias {
		for _, forma := range media.Formats {
			result.Codecs = append(result.Codecs, forma.Codec())
		}
	}

	if err := client.SetupAll(u, desc.Medias); err != nil {
		return nil, fmt.Errorf("failed to setup: %w", err)
	}

	// 첫 패킷 도착 신호 (PLAY 호출 전에 등록해야 함)
	firstPacket := make(chan struct{}, 1)
	client.OnPacketRTPAny(func(medi *description.Media, forma format.Format, pkt *rtp.Packet) {
		select {
		case firstPacket <- struct{}{}:
		default:
		}
	})

	if _, err := client.Play(nil); err != nil {
		return nil, fmt.Errorf("failed to play: %w", err)
	}

	select {
	case <-firstPacket:
		result.FirstPacket = time.Since(start)
	case <-time.After(timeout):
		return nil, fmt.Errorf("no RTP packet within %s", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	logger.Info("Probe succeeded",
		zap.Int("media_count", result.MediaCount),
		zap.Strings("codecs", result.Codecs),
		zap.Duration("first_packet", result.FirstPacket),
	)

	return result, nil
}
