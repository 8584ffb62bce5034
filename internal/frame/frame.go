package frame

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Accessor는 채널의 최신 프레임을 가져오는 함수입니다.
// 항상 독립적인 복사본을 반환하고, 아직 프레임이 없으면 nil을 반환합니다.
type Accessor func() *image.RGBA

// Clone은 프레임의 독립적인 복사본을 반환합니다
func Clone(src *image.RGBA) *image.RGBA {
	if src == nil {
		return nil
	}

	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// FromImage는 임의의 image.Image를 RGBA 프레임으로 변환합니다
func FromImage(src image.Image) *image.RGBA {
	if src == nil {
		return nil
	}

	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}

	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// Resize는 프레임을 정확히 (width, height) 크기로 변환합니다
func Resize(src *image.RGBA, width, height int) *image.RGBA {
	if src == nil {
		return nil
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	b := src.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// ResizeToHeight는 종횡비를 유지한 채 목표 높이로 변환합니다.
// 너비는 원본 종횡비에서 다시 계산됩니다.
func ResizeToHeight(src *image.RGBA, height int) *image.RGBA {
	if src == nil {
		return nil
	}

	b := src.Bounds()
	srcH := b.Dy()
	if srcH < 1 {
		srcH = 1
	}

	ratio := float64(height) / float64(srcH)
	width := int(float64(b.Dx()) * ratio)
	if width < 1 {
		width = 1
	}

	return Resize(src, width, height)
}

// NewCanvas는 불투명한 검정 배경 캔버스를 생성합니다
func NewCanvas(width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return canvas
}
