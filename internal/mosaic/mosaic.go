// Package mosaic은 여러 채널의 프레임을 하나의 캔버스로 합성합니다.
// 합성 함수는 상태가 없으며 호출할 때마다 모든 소스 접근자를 다시 평가합니다.
package mosaic

import (
	"image"
	"image/draw"
	"math"

	"github.com/GaabGarcez/Arenna-cameras/internal/frame"
)

// cellAspect는 그리드 셀의 너비/높이 비율 (16:9)
const cellAspect = 16.0 / 9.0

// Row는 사용 가능한 프레임을 좌→우로 이어 붙이는 접근자를 반환합니다.
// 캔버스 높이는 소스 중 최대 높이, 너비는 너비의 합입니다.
// 프레임이 없는 소스는 패딩 없이 생략되며, 전부 비어 있으면 nil을 반환합니다.
func Row(accessors []frame.Accessor) frame.Accessor {
	return func() *image.RGBA {
		frames := make([]*image.RGBA, 0, len(accessors))
		for _, acc := range accessors {
			if f := acc(); f != nil {
				frames = append(frames, f)
			}
		}
		if len(frames) == 0 {
			return nil
		}

		height, width := 0, 0
		for _, f := range frames {
			if h := f.Bounds().Dy(); h > height {
				height = h
			}
			width += f.Bounds().Dx()
		}

		canvas := frame.NewCanvas(width, height)
		x := 0
		for _, f := range frames {
			b := f.Bounds()
			rect := image.Rect(x, 0, x+b.Dx(), b.Dy())
			draw.Draw(canvas, rect, f, b.Min, draw.Src)
			x += b.Dx()
		}

		return canvas
	}
}

// Grid는 고정 기하의 그리드로 합성하는 접근자를 반환합니다.
// 셀 너비는 round(cellHeight * 16/9), 행 수는 ceil(n/cols)이며
// 프레임은 행 우선(좌→우, 상→하) 순서로 배치됩니다.
// 프레임이 없는 소스는 같은 크기의 빈 셀로 남아 기하가 유지됩니다.
// 모든 프레임은 원본 크기와 무관하게 정확히 셀 크기로 변환됩니다.
func Grid(accessors []frame.Accessor, cols, cellHeight int) frame.Accessor {
	cellWidth := int(math.Round(float64(cellHeight) * cellAspect))

	return func() *image.RGBA {
		if len(accessors) == 0 || cols < 1 || cellHeight < 1 {
			return nil
		}

		rows := (len(accessors) + cols - 1) / cols
		canvas := frame.NewCanvas(cols*cellWidth, rows*cellHeight)

		for i, acc := range accessors {
			f := acc()
			if f == nil {
				// 빈 셀은 배경색 그대로 둠
				continue
			}

			f = frame.Resize(f, cellWidth, cellHeight)

			row, col := i/cols, i%cols
			x, y := col*cellWidth, row*cellHeight
			rect := image.Rect(x, y, x+cellWidth, y+cellHeight)
			draw.Draw(canvas, rect, f, f.Bounds().Min, draw.Src)
		}

		return canvas
	}
}
