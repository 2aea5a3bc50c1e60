package composer

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	placeholderBG     = color.RGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF}
	placeholderBorder = color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}
	placeholderText   = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xFF}
)

const (
	borderWidth = 2
	textMargin  = 24
)

// Placeholder は画像生成サービスが失敗した場合の代替パネルをローカルで生成します。
// シーン記述を折り返して中央に描画したPNGを返し、この関数自体は失敗しません。
func Placeholder(text string, size int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderBG), image.Point{}, draw.Src)

	drawBorder(img, size)
	drawCenteredText(img, text, size)

	var buf bytes.Buffer
	// RGBAのPNGエンコードは失敗しない
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func drawBorder(img *image.RGBA, size int) {
	border := image.NewUniform(placeholderBorder)
	draw.Draw(img, image.Rect(0, 0, size, borderWidth), border, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, size-borderWidth, size, size), border, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, borderWidth, size), border, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(size-borderWidth, 0, size, size), border, image.Point{}, draw.Src)
}

func drawCenteredText(img *image.RGBA, text string, size int) {
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil()

	lines := wrapText(text, face, size-2*textMargin)
	startY := (size-len(lines)*lineHeight)/2 + face.Metrics().Ascent.Ceil()

	for i, line := range lines {
		width := font.MeasureString(face, line).Ceil()
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(placeholderText),
			Face: face,
			Dot:  fixed.P((size-width)/2, startY+i*lineHeight),
		}
		d.DrawString(line)
	}
}

// wrapText は最大幅に収まるように単語単位でテキストを折り返します。
func wrapText(text string, face font.Face, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{"(no description)"}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(face, candidate).Ceil() > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}
