package mjpeg_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GaabGarcez/Arenna-cameras/internal/frame"
	"github.com/GaabGarcez/Arenna-cameras/internal/mjpeg"
)

func staticAccessor(w, h int) frame.Accessor {
	return func() *image.RGBA {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 40, G: 80, B: 120, A: 255}), image.Point{}, draw.Src)
		return img
	}
}

// serveFor는 인코더를 일정 시간 동안 실행하고 출력을 반환합니다
func serveFor(t *testing.T, enc *mjpeg.Encoder, src frame.Accessor, d time.Duration) []byte {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = enc.Serve(ctx, &buf, src)
	}()
	<-done

	return buf.Bytes()
}

func TestContentType(t *testing.T) {
	enc := mjpeg.NewEncoder(mjpeg.Config{})
	assert.Equal(t, "multipart/x-mixed-replace; boundary=frame", enc.ContentType())
}

func TestChunkFraming(t *testing.T) {
	enc := mjpeg.NewEncoder(mjpeg.Config{FPS: 100, HideStamp: true, HideFPS: true})

	out := serveFor(t, enc, staticAccessor(64, 48), 150*time.Millisecond)
	require.NotEmpty(t, out)

	// boundary + 헤더 + JPEG SOI 마커
	assert.True(t, bytes.HasPrefix(out, []byte("--frame\r\nContent-Type: image/jpeg\r\nContent-Length: ")))

	body := out[bytes.Index(out, []byte("\r\n\r\n"))+4:]
	require.True(t, len(body) > 2)
	assert.Equal(t, []byte{0xff, 0xd8}, body[:2], "JPEG SOI marker expected")

	// 첫 청크의 JPEG이 디코딩 가능해야 함
	img, err := jpeg.Decode(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestPacingIsACeiling(t *testing.T) {
	if testing.Short() {
		t.Skip("5s pacing window")
	}

	enc := mjpeg.NewEncoder(mjpeg.Config{FPS: 12, HideStamp: true, HideFPS: true})

	out := serveFor(t, enc, staticAccessor(32, 32), 5*time.Second)

	chunks := strings.Count(string(out), "--frame\r\n")
	// 목표 레이트는 상한: 12fps x 5초 = 60장, 스케줄링 지터 허용치 +1
	assert.LessOrEqual(t, chunks, 61)
	assert.GreaterOrEqual(t, chunks, 45)
}

func TestEmptyFrameGapEmitsNothing(t *testing.T) {
	enc := mjpeg.NewEncoder(mjpeg.Config{FPS: 30})

	empty := func() *image.RGBA { return nil }
	out := serveFor(t, enc, empty, 200*time.Millisecond)

	// 일시적 공백에서는 청크도, 종료 신호도 내보내지 않음
	assert.Empty(t, out)
}

func TestServeStopsOnContextCancel(t *testing.T) {
	enc := mjpeg.NewEncoder(mjpeg.Config{FPS: 10})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := enc.Serve(ctx, &buf, staticAccessor(16, 16))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServeStopsOnWriteError(t *testing.T) {
	enc := mjpeg.NewEncoder(mjpeg.Config{FPS: 100, HideStamp: true, HideFPS: true})

	done := make(chan error, 1)
	go func() {
		done <- enc.Serve(context.Background(), failingWriter{}, staticAccessor(16, 16))
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not stop after write failure")
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, assert.AnError
}

func TestOverlayDrawnOnFrame(t *testing.T) {
	enc := mjpeg.NewEncoder(mjpeg.Config{FPS: 100})

	out := serveFor(t, enc, staticAccessor(320, 180), 100*time.Millisecond)
	require.NotEmpty(t, out)

	body := out[bytes.Index(out, []byte("\r\n\r\n"))+4:]
	img, err := jpeg.Decode(bytes.NewReader(body))
	require.NoError(t, err)

	// 하단 footer 영역에 흰색에 가까운 픽셀이 있어야 함 (타임스탬프 오버레이)
	bounds := img.Bounds()
	found := false
	for x := bounds.Min.X; x < bounds.Max.X && !found; x++ {
		for y := bounds.Max.Y - 24; y < bounds.Max.Y && !found; y++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r>>8 > 200 && g>>8 > 200 && b>>8 > 200 {
				found = true
			}
		}
	}
	assert.True(t, found, "timestamp overlay not visible")
}
