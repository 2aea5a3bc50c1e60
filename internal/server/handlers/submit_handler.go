package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"comicai-web/internal/domain"
)

// HandleSubmit は物語の投稿を受け付け、パイプラインを実行して結果ページへ誘導します。
// バリデーション失敗は 400 としてフォームに具体的な理由を再表示します。
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		slog.WarnContext(ctx, "フォームの解析に失敗しました", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	input := storyInputFromForm(r)

	if err := input.Validate(); err != nil {
		slog.InfoContext(ctx, "入力バリデーションに失敗しました", "error", err)
		h.renderFormError(w, r, input, err.Error())
		return
	}

	sid := h.sessionID(w, r)

	run, err := h.pipeline.Execute(ctx, input)
	if err != nil {
		slog.ErrorContext(ctx, "コミック生成パイプラインが失敗しました", "error", err)
		h.renderFormError(w, r, input, "コミックの生成に失敗しました。時間をおいて再度お試しください。")
		return
	}

	// 前回の成果物はセッション単位で丸ごと置き換える
	h.store.Put(sid, run)

	http.Redirect(w, r, "/result", http.StatusSeeOther)
}

// storyInputFromForm はフォーム値から StoryInput を組み立てます。
// パネル数が数値でない場合は 0 のままとし、バリデーションで弾かれます。
func storyInputFromForm(r *http.Request) domain.StoryInput {
	count, _ := strconv.Atoi(r.PostFormValue("panel_count"))

	return domain.StoryInput{
		Text:       r.PostFormValue("story_text"),
		PanelCount: count,
		Style:      domain.ArtStyle(r.PostFormValue("art_style")),
		Layout:     domain.LayoutStyle(r.PostFormValue("layout")),
		Model:      strings.TrimSpace(r.PostFormValue("model")),
	}
}

// renderFormError は入力値を保持したままフォームをエラーメッセージ付きで再表示します。
func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, input domain.StoryInput, message string) {
	data := defaultFormData()
	data.Story = input.Text
	data.Model = input.Model
	data.ErrorMessage = message
	if input.PanelCount >= domain.MinPanelCount && input.PanelCount <= domain.MaxPanelCount {
		data.PanelCount = input.PanelCount
	}
	if input.Style != "" {
		data.Style = input.Style
	}
	if input.Layout != "" {
		data.Layout = input.Layout
	}
	h.render(w, r, http.StatusBadRequest, "index.html", data)
}
