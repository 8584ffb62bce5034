package capture

import (
	"fmt"
	"image"
	"os"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/GaabGarcez/Arenna-cameras/internal/frame"
)

// Source는 디코딩된 프레임 시퀀스의 공급자입니다.
// Actor가 단독으로 소유하며 다른 컴포넌트와 공유되지 않습니다.
type Source interface {
	// Open은 연결을 (재)수립합니다. 기존 연결이 있으면 먼저 닫습니다.
	Open() error
	// Read는 프레임 하나를 디코딩합니다. 실패 시 (nil, false)
	Read() (*image.RGBA, bool)
	// Close는 연결을 해제합니다. 여러 번 호출해도 안전합니다.
	Close()
}

// ffmpegOptsOnce는 FFmpeg 캡처 옵션 환경변수를 프로세스당 한 번만 설정합니다
var ffmpegOptsOnce sync.Once

// rtspSource는 gocv(OpenCV/FFmpeg) 기반 RTSP 프레임 소스입니다
type rtspSource struct {
	url          string
	targetHeight int

	cap      *gocv.VideoCapture
	raw      gocv.Mat
	scaled   gocv.Mat
	released bool
}

// newRTSPSource는 RTSP 프레임 소스를 생성합니다.
// 저지연 수신을 위해 TCP 전송과 소켓 타임아웃을 FFmpeg 옵션으로 지정합니다.
func newRTSPSource(url string, targetHeight int, readTimeout time.Duration) *rtspSource {
	ffmpegOptsOnce.Do(func() {
		opts := []string{"rtsp_transport;tcp"}
		if readTimeout > 0 {
			us := readTimeout.Microseconds()
			opts = append(opts,
				fmt.Sprintf("stimeout;%d", us),
				fmt.Sprintf("max_delay;%d", us),
			)
		}
		os.Setenv("OPENCV_FFMPEG_CAPTURE_OPTIONS", strings.Join(opts, "|"))
	})

	return &rtspSource{
		url:          url,
		targetHeight: targetHeight,
		raw:          gocv.NewMat(),
		scaled:       gocv.NewMat(),
	}
}

// Open은 RTSP 연결을 (재)수립합니다
func (s *rtspSource) Open() error {
	if s.cap != nil {
		_ = s.cap.Close() // 정리 실패는 무시 (best-effort)
		s.cap = nil
	}

	vc, err := gocv.OpenVideoCaptureWithAPI(s.url, gocv.VideoCaptureFFmpeg)
	if err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}

	// 최신 프레임만 유지 (지연 누적 방지)
	vc.Set(gocv.VideoCaptureBufferSize, 1)

	s.cap = vc
	return nil
}

// Read는 프레임 하나를 읽어 목표 높이로 축소한 RGBA 이미지로 반환합니다
func (s *rtspSource) Read() (*image.RGBA, bool) {
	if s.cap == nil {
		return nil, false
	}

	if ok := s.cap.Read(&s.raw); !ok || s.raw.Empty() {
		return nil, false
	}

	out := s.raw

	// 종횡비를 유지하며 목표 높이로 축소 (INTER_AREA)
	if h := s.raw.Rows(); h > 0 && h != s.targetHeight {
		ratio := float64(s.targetHeight) / float64(h)
		width := int(float64(s.raw.Cols()) * ratio)
		if width < 1 {
			width = 1
		}
		gocv.Resize(s.raw, &s.scaled, image.Pt(width, s.targetHeight), 0, 0, gocv.InterpolationArea)
		out = s.scaled
	}

	img, err := out.ToImage()
	if err != nil {
		return nil, false
	}

	return frame.FromImage(img), true
}

// Close는 RTSP 연결과 버퍼를 해제합니다. 해제 오류는 전파하지 않습니다.
func (s *rtspSource) Close() {
	if s.cap != nil {
		_ = s.cap.Close()
		s.cap = nil
	}
	if !s.released {
		_ = s.raw.Close()
		_ = s.scaled.Close()
		s.released = true
	}
}
