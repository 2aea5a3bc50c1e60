package domain

import "time"

// GenStatus は各パネル画像の生成結果を表します。
type GenStatus string

const (
	// StatusSucceeded は画像生成サービスから本物の画像を取得できた状態です。
	StatusSucceeded GenStatus = "succeeded"
	// StatusPlaceholder はサービス失敗によりローカル生成の代替画像を使った状態です。
	StatusPlaceholder GenStatus = "placeholder"
	// StatusFailed はプレースホルダーすら生成できなかった状態です（通常発生しません）。
	StatusFailed GenStatus = "failed"
)

// ScenePanel はLLMが分割した1シーンの記述です。Index は1始まりで順序が意味を持ちます。
type ScenePanel struct {
	Index       int
	Description string
}

// GeneratedImage は1パネル分の画像データです。
// PanelIndex は対応する ScenePanel.Index と常に一致します。
type GeneratedImage struct {
	PanelIndex int
	Data       []byte
	Status     GenStatus
}

// ComicStrip は1回の実行の最終成果物です。
// Images の並びとコンポジット内のスロット順は常に一致します。
type ComicStrip struct {
	Layout    LayoutStyle
	Images    []GeneratedImage
	Composite []byte
}

// ComicRun は1回の生成実行の入力・中間生成物・最終成果物をまとめて保持します。
// セッション単位で最新の1件だけが保持され、新しい実行で丸ごと置き換えられます。
type ComicRun struct {
	Input    StoryInput
	Panels   []ScenePanel
	Strip    ComicStrip
	Duration time.Duration
	// FallbackUsed はパネル分割がLLMではなく決定的フォールバックで行われたことを示します。
	FallbackUsed bool
}

// PanelImage は1始まりのインデックスでパネル画像を返します。範囲外は nil です。
func (r *ComicRun) PanelImage(index int) *GeneratedImage {
	if index < 1 || index > len(r.Strip.Images) {
		return nil
	}
	return &r.Strip.Images[index-1]
}
