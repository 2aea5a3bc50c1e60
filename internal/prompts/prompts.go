package prompts

import (
	"fmt"
	"strings"

	"comicai-web/internal/domain"
)

// NegativePrompt は全パネル共通で適用する除外指示です。
// 吹き出しや文字、低品質な描写を排除します。
const NegativePrompt = "blurry, low quality, distorted, ugly, bad anatomy, text, watermark"

// styleModifiers は画風ごとのプロンプト修飾です。
var styleModifiers = map[domain.ArtStyle]string{
	domain.StyleComic:      "comic book style, vibrant colors, bold outlines, clear composition",
	domain.StyleCartoon:    "cartoon style, simple shapes, bright colors, clean lines",
	domain.StyleAnime:      "anime style, expressive characters, detailed backgrounds, manga influence",
	domain.StyleRealistic:  "photorealistic, detailed, natural lighting, high quality",
	domain.StyleWatercolor: "watercolor painting style, soft colors, artistic",
	domain.StyleSketch:     "pencil sketch style, black and white, artistic",
}

// ForSplit はローカルLLMに渡すパネル分割の指示を構築します。
// "Panel N:" 形式での応答を要求しますが、パース側は形式の揺れも許容します。
func ForSplit(story string, panelCount int) string {
	var sb strings.Builder
	sb.WriteString("You are a comic book artist. Break down the following story into ")
	sb.WriteString(fmt.Sprintf("%d comic panels.\n", panelCount))
	sb.WriteString("Each panel should be a clear, visual scene that can be illustrated.\n\n")
	sb.WriteString("Story: " + story + "\n\n")
	sb.WriteString(fmt.Sprintf("Provide exactly %d panel descriptions, each on a new line starting with \"Panel X:\".\n", panelCount))
	sb.WriteString("Make each description visual and specific enough for an artist to draw.\n")
	sb.WriteString("Keep each description under 50 words.\n")
	return sb.String()
}

// ForPanel はシーン記述と画風修飾を組み合わせた最終的な画像生成プロンプトを返します。
func ForPanel(panel domain.ScenePanel, style domain.ArtStyle) string {
	modifier, ok := styleModifiers[style]
	if !ok {
		modifier = styleModifiers[domain.StyleComic]
	}
	return fmt.Sprintf("Comic panel %d: %s, %s, high quality, clear composition",
		panel.Index, panel.Description, modifier)
}
