package frame

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	labelColor       = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	placeholderColor = color.RGBA{R: 255, G: 60, B: 60, A: 255}
	footerColor      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	backgroundColor  = color.RGBA{R: 16, G: 16, B: 16, A: 255}
)

// drawText는 img 위에 텍스트를 그립니다 (baseline 기준 좌표)
func drawText(img *image.RGBA, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// textWidth는 렌더링 시 텍스트가 차지할 픽셀 너비를 반환합니다
func textWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

// DrawLabel은 좌측 상단에 채널 라벨을 그립니다
func DrawLabel(img *image.RGBA, text string) {
	if img == nil {
		return
	}
	drawText(img, text, 10, 22, labelColor)
}

// DrawFooterLeft는 좌측 하단에 텍스트를 그립니다 (타임스탬프용)
func DrawFooterLeft(img *image.RGBA, text string) {
	if img == nil {
		return
	}
	drawText(img, text, 10, img.Bounds().Dy()-8, footerColor)
}

// DrawFooterRight는 우측 하단에 텍스트를 그립니다 (FPS 표시용)
func DrawFooterRight(img *image.RGBA, text string) {
	if img == nil {
		return
	}
	x := img.Bounds().Dx() - textWidth(text) - 10
	if x < 0 {
		x = 0
	}
	drawText(img, text, x, img.Bounds().Dy()-8, footerColor)
}

// Placeholder는 재연결 중임을 알리는 대체 프레임을 합성합니다.
// 크기는 height x height 정사각형입니다.
func Placeholder(height int, label string) *image.RGBA {
	if height < 1 {
		height = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, height, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = backgroundColor.R
		img.Pix[i+1] = backgroundColor.G
		img.Pix[i+2] = backgroundColor.B
		img.Pix[i+3] = backgroundColor.A
	}

	drawText(img, label+" (reconnecting...)", 10, 30, placeholderColor)
	return img
}
