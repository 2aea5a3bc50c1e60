package domain

import (
	"errors"
	"fmt"
	"strings"
)

// 物語本文の長さ制限（文字数はUTF-8のルーン単位で数えます）
const (
	MinStoryLength = 10
	MaxStoryLength = 1000
	MinPanelCount  = 2
	MaxPanelCount  = 6
)

// バリデーション失敗の種別。UIには具体的な理由として表示されます。
var (
	ErrStoryTooShort         = fmt.Errorf("story must be at least %d characters long", MinStoryLength)
	ErrStoryTooLong          = fmt.Errorf("story is too long, keep it under %d characters", MaxStoryLength)
	ErrUnsupportedStyle      = errors.New("unsupported art style")
	ErrUnsupportedPanelCount = fmt.Errorf("panel count must be between %d and %d", MinPanelCount, MaxPanelCount)
	ErrUnsupportedLayout     = errors.New("unsupported layout style")
)

// ArtStyle は生成画像の画風を表します。
type ArtStyle string

const (
	StyleComic      ArtStyle = "comic"
	StyleCartoon    ArtStyle = "cartoon"
	StyleAnime      ArtStyle = "anime"
	StyleRealistic  ArtStyle = "realistic"
	StyleWatercolor ArtStyle = "watercolor"
	StyleSketch     ArtStyle = "sketch"
)

// ArtStyles は UI のセレクタに表示する画風の一覧です（表示順を保持）。
var ArtStyles = []ArtStyle{
	StyleComic, StyleCartoon, StyleAnime, StyleRealistic, StyleWatercolor, StyleSketch,
}

// LayoutStyle はコンポジット画像内のパネル配置を表します。
type LayoutStyle string

const (
	LayoutHorizontal LayoutStyle = "horizontal"
	LayoutVertical   LayoutStyle = "vertical"
	LayoutGrid       LayoutStyle = "grid"
)

// LayoutStyles は UI のセレクタに表示するレイアウトの一覧です。
var LayoutStyles = []LayoutStyle{LayoutHorizontal, LayoutVertical, LayoutGrid}

// StoryInput は1回の生成リクエストの入力一式です。
// パイプライン開始後は変更されません。
type StoryInput struct {
	Text       string
	PanelCount int
	Style      ArtStyle
	Layout     LayoutStyle
	// Model はローカルLLMのモデル名です。空の場合は設定のデフォルトが使われます。
	Model string
}

// Validate は入力を検証し、外部呼び出しの前に具体的な失敗理由を返します。
// 副作用もI/Oもない純粋な関数です。
func (s StoryInput) Validate() error {
	trimmed := strings.TrimSpace(s.Text)
	if len([]rune(trimmed)) < MinStoryLength {
		return ErrStoryTooShort
	}
	if len([]rune(s.Text)) > MaxStoryLength {
		return ErrStoryTooLong
	}
	if !isKnownStyle(s.Style) {
		return fmt.Errorf("%w: %q", ErrUnsupportedStyle, s.Style)
	}
	if s.PanelCount < MinPanelCount || s.PanelCount > MaxPanelCount {
		return fmt.Errorf("%w: got %d", ErrUnsupportedPanelCount, s.PanelCount)
	}
	if !isKnownLayout(s.Layout) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLayout, s.Layout)
	}
	return nil
}

func isKnownStyle(style ArtStyle) bool {
	for _, s := range ArtStyles {
		if s == style {
			return true
		}
	}
	return false
}

func isKnownLayout(layout LayoutStyle) bool {
	for _, l := range LayoutStyles {
		if l == layout {
			return true
		}
	}
	return false
}
