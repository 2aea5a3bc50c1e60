package composer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"comicai-web/internal/domain"
)

// パネル間の余白（ピクセル）
const panelSpacing = 10

// Composer は生成済みパネル画像を1枚のコンポジット画像へ並べます。
type Composer struct {
	panelSize int
}

// New は指定されたパネル1辺のサイズで Composer を生成します。
func New(panelSize int) *Composer {
	return &Composer{panelSize: panelSize}
}

// Compose はパネル画像列をレイアウトに従ってタイル配置し、PNGとして返します。
// 入力の並び順はコンポジット内のスロット順と常に一致します。
func (c *Composer) Compose(images []domain.GeneratedImage, layout domain.LayoutStyle) ([]byte, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no panels to compose")
	}

	cols, rows := c.gridFor(len(images), layout)

	width := cols*c.panelSize + (cols-1)*panelSpacing
	height := rows*c.panelSize + (rows-1)*panelSpacing

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	stddraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, stddraw.Src)

	for i, gen := range images {
		panel, err := c.normalize(gen.Data)
		if err != nil {
			return nil, fmt.Errorf("panel %d: %w", i+1, err)
		}

		col := i % cols
		row := i / cols
		x := col * (c.panelSize + panelSpacing)
		y := row * (c.panelSize + panelSpacing)

		rect := image.Rect(x, y, x+c.panelSize, y+c.panelSize)
		stddraw.Draw(canvas, rect, panel, panel.Bounds().Min, stddraw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode composite: %w", err)
	}
	return buf.Bytes(), nil
}

// gridFor はレイアウトごとの列数・行数を返します。
// グリッドは2列で折り返し、パネル数が奇数なら最終行は左詰めになります。
func (c *Composer) gridFor(count int, layout domain.LayoutStyle) (cols, rows int) {
	switch layout {
	case domain.LayoutVertical:
		return 1, count
	case domain.LayoutGrid:
		return 2, (count + 1) / 2
	default: // horizontal
		return count, 1
	}
}

// normalize は画像バイト列をデコードし、共通のパネルサイズへ整えます。
func (c *Composer) normalize(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode panel image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == c.panelSize && bounds.Dy() == c.panelSize {
		return img, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, c.panelSize, c.panelSize))
	// 高品質な拡縮には CatmullRom を使う
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst, nil
}
