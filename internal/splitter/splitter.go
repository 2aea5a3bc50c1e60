package splitter

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"comicai-web/internal/adapters"
	"comicai-web/internal/domain"
	"comicai-web/internal/prompts"
)

// LLMの自由テキスト応答からシーン記述を拾うためのパターン群。
// "Panel 1: ..." を正とするが、番号付きリストやMarkdown装飾の揺れも許容する。
var (
	panelLine    = regexp.MustCompile(`(?i)^[-*>\s]*(?:\*\*)?(?:panel|scene)\s*\d+(?:\*\*)?\s*[:.\-]\s*(.+)$`)
	numberedLine = regexp.MustCompile(`^\s*\d+\s*[.):]\s+(.+)$`)
	sentenceEnd  = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// PanelSplitter は物語をパネル数ぶんのシーン記述に分割します。
// ローカルLLMが使えない場合は決定的なフォールバック分割に切り替わるため、
// Split が失敗することはありません。
type PanelSplitter struct {
	gen          adapters.ScriptGenerator
	defaultModel string
}

// New は PanelSplitter の新しいインスタンスを生成します。
func New(gen adapters.ScriptGenerator, defaultModel string) *PanelSplitter {
	return &PanelSplitter{
		gen:          gen,
		defaultModel: defaultModel,
	}
}

// Split は物語を正確に count 個の順序付きシーン記述へ分割します。
// 戻り値の bool は、LLMではなくフォールバック分割が使われたことを示します。
func (s *PanelSplitter) Split(ctx context.Context, story string, count int, model string) ([]domain.ScenePanel, bool) {
	if model == "" {
		model = s.defaultModel
	}

	resp, err := s.gen.Generate(ctx, prompts.ForSplit(story, count), model)
	if err != nil {
		slog.WarnContext(ctx, "LLMによるパネル分割に失敗しました。フォールバックに切り替えます", "error", err)
		return toPanels(s.fallback(story, count)), true
	}

	descriptions := parseResponse(resp)
	if len(descriptions) < domain.MinPanelCount {
		slog.WarnContext(ctx, "LLM応答から十分なシーン記述を抽出できませんでした。フォールバックに切り替えます",
			"parsed", len(descriptions))
		return toPanels(s.fallback(story, count)), true
	}

	// 不足分はフォールバック分割の対応位置で埋め、過剰分は切り捨てる。
	if len(descriptions) < count {
		slog.WarnContext(ctx, "LLMが要求数より少ないパネルを返しました。不足分を補完します",
			"got", len(descriptions), "want", count)
		filler := s.fallback(story, count)
		for len(descriptions) < count {
			descriptions = append(descriptions, filler[len(descriptions)])
		}
	}
	descriptions = descriptions[:count]

	return toPanels(descriptions), false
}

// parseResponse は自由テキスト応答を行単位で走査し、シーン記述のみを抽出します。
// 前後の解説文・番号・装飾などのノイズは捨てられます。
func parseResponse(resp string) []string {
	var descriptions []string
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var desc string
		if m := panelLine.FindStringSubmatch(line); m != nil {
			desc = m[1]
		} else if m := numberedLine.FindStringSubmatch(line); m != nil {
			desc = m[1]
		} else {
			continue
		}

		desc = strings.Trim(desc, "* ")
		if desc != "" {
			descriptions = append(descriptions, desc)
		}
	}
	return descriptions
}

// fallback は外部サービスに依存しない決定的な分割です。
// 文境界で均等に分け、文が足りなければ単語数で分けます。常に count 個を返します。
func (s *PanelSplitter) fallback(story string, count int) []string {
	story = strings.TrimSpace(story)

	sentences := splitSentences(story)
	if len(sentences) >= count {
		return distribute(sentences, count)
	}

	words := strings.Fields(story)
	if len(words) >= count {
		return distribute(words, count)
	}

	// 物語が極端に短い場合の最終手段。全文をそのまま各シーンに割り当てる。
	chunks := make([]string, count)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("Scene %d: %s", i+1, story)
	}
	return chunks
}

func splitSentences(story string) []string {
	var sentences []string
	for _, s := range sentenceEnd.FindAllString(story, -1) {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// distribute は要素列を count 個のグループへ均等に分配し、それぞれを連結します。
// 余りは先頭のグループから1つずつ吸収します。
func distribute(parts []string, count int) []string {
	base := len(parts) / count
	rem := len(parts) % count

	chunks := make([]string, 0, count)
	pos := 0
	for i := 0; i < count; i++ {
		size := base
		if i < rem {
			size++
		}
		chunks = append(chunks, strings.Join(parts[pos:pos+size], " "))
		pos += size
	}
	return chunks
}

func toPanels(descriptions []string) []domain.ScenePanel {
	panels := make([]domain.ScenePanel, len(descriptions))
	for i, desc := range descriptions {
		panels[i] = domain.ScenePanel{Index: i + 1, Description: desc}
	}
	return panels
}
