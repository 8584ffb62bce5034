// Package mjpeg는 프레임 접근자를 multipart MJPEG 바이트 스트림으로 변환합니다.
package mjpeg

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GaabGarcez/Arenna-cameras/internal/frame"
)

const (
	defaultFPS     = 12
	defaultQuality = 80
	boundary       = "frame"

	// emptyFrameBackoff는 프레임이 없을 때 재시도 전 대기 시간.
	// 일시적 공백에 스트림 종료 신호를 보내지 않습니다.
	emptyFrameBackoff = 30 * time.Millisecond

	// fpsAlpha는 순간 FPS의 지수 이동 평균 계수
	fpsAlpha = 0.12

	stampLayout = "2006-01-02 15:04:05"
)

// Config는 MJPEG 인코더 설정
type Config struct {
	FPS       float64 // 목표 프레임 레이트 상한 (기본 12)
	Quality   int     // JPEG 품질 1..100 (기본 80)
	HideStamp bool    // 타임스탬프 오버레이 끄기
	HideFPS   bool    // FPS 오버레이 끄기
	Logger    *zap.Logger
}

// Encoder는 프레임 접근자를 목표 레이트로 인코딩해 내보냅니다.
// 상태는 Serve 호출마다 새로 만들어지므로 하나의 Encoder를
// 여러 뷰어 세션에서 공유할 수 있습니다.
type Encoder struct {
	fps       float64
	quality   int
	showStamp bool
	showFPS   bool
	logger    *zap.Logger
}

// NewEncoder는 새로운 MJPEG 인코더를 생성합니다
func NewEncoder(config Config) *Encoder {
	if config.FPS <= 0 {
		config.FPS = defaultFPS
	}
	if config.Quality <= 0 {
		config.Quality = defaultQuality
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return &Encoder{
		fps:       config.FPS,
		quality:   config.Quality,
		showStamp: !config.HideStamp,
		showFPS:   !config.HideFPS,
		logger:    config.Logger,
	}
}

// ContentType은 HTTP 응답에 사용할 Content-Type을 반환합니다
func (e *Encoder) ContentType() string {
	return "multipart/x-mixed-replace; boundary=" + boundary
}

// Serve는 src에서 프레임을 끌어와 w에 multipart JPEG 청크를 씁니다.
// ctx가 취소되거나 쓰기가 실패할 때까지 (뷰어 연결 종료) 계속됩니다.
// 인코딩 실패는 해당 틱만 건너뜁니다.
func (e *Encoder) Serve(ctx context.Context, w io.Writer, src frame.Accessor) error {
	viewerID := uuid.New().String()
	log := e.logger.With(zap.String("viewer_id", viewerID))

	log.Info("Viewer stream started",
		zap.Float64("fps", e.fps),
		zap.Int("quality", e.quality),
	)

	flusher, _ := w.(http.Flusher)
	interval := time.Duration(float64(time.Second) / e.fps)

	var (
		buf    bytes.Buffer
		ema    float64
		last   = time.Now()
		frames int
	)
	defer func() {
		log.Info("Viewer stream ended",
			zap.Int("frames_sent", frames),
		)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tickStart := time.Now()

		img := src()
		if img == nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(emptyFrameBackoff):
			}
			continue
		}

		// 순간 FPS의 지수 이동 평균 (첫 측정 간격으로 시드)
		now := time.Now()
		elapsed := now.Sub(last).Seconds()
		if elapsed < 1e-6 {
			elapsed = 1e-6
		}
		inst := 1.0 / elapsed
		last = now
		if ema > 0 {
			ema = (1-fpsAlpha)*ema + fpsAlpha*inst
		} else {
			ema = inst
		}

		if e.showStamp {
			frame.DrawFooterLeft(img, now.Format(stampLayout))
		}
		if e.showFPS {
			frame.DrawFooterRight(img, fmt.Sprintf("FPS ~ %.1f", ema))
		}

		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
			// 프레임 하나의 인코딩 실패가 스트림을 끝내지 않음
			log.Warn("JPEG encode failed, skipping frame", zap.Error(err))
			continue
		}

		header := fmt.Sprintf("--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n",
			boundary, buf.Len())
		if _, err := io.WriteString(w, header); err != nil {
			return err
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		frames++

		// 목표 레이트는 상한: 남은 시간만큼만 대기
		if sleep := interval - time.Since(tickStart); sleep > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}
		}
	}
}
