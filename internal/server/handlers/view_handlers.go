package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"comicai-web/internal/domain"
)

// モデル一覧の取得でフォーム表示を待たせないための上限
const modelListTimeout = 2 * time.Second

// formData は入力フォームページ（index.html）の描画データです。
type formData struct {
	Title        string
	Story        string
	PanelCount   int
	Style        domain.ArtStyle
	Layout       domain.LayoutStyle
	Model        string
	Styles       []domain.ArtStyle
	Layouts      []domain.LayoutStyle
	PanelCounts  []int
	// InstalledModels はローカルLLMから取得したモデル名の候補です。
	// サービスに到達できない場合は空になります。
	InstalledModels []string
	ErrorMessage    string
}

// resultData は生成結果ページ（result.html）の描画データです。
type resultData struct {
	Title           string
	Run             *domain.ComicRun
	DurationSeconds string
}

// defaultFormData はフォームの初期状態を返します。
func defaultFormData() formData {
	counts := make([]int, 0, domain.MaxPanelCount-domain.MinPanelCount+1)
	for i := domain.MinPanelCount; i <= domain.MaxPanelCount; i++ {
		counts = append(counts, i)
	}
	return formData{
		Title:       pageTitle("物語からコミックを生成"),
		PanelCount:  4,
		Style:       domain.StyleComic,
		Layout:      domain.LayoutHorizontal,
		Styles:      domain.ArtStyles,
		Layouts:     domain.LayoutStyles,
		PanelCounts: counts,
	}
}

// Index は物語入力フォームを表示します。
// ローカルLLMが応答すれば、インストール済みモデル名を入力候補として添えます。
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	data := defaultFormData()

	ctx, cancel := context.WithTimeout(r.Context(), modelListTimeout)
	defer cancel()
	if models, err := h.llm.Models(ctx); err == nil {
		data.InstalledModels = models
	}

	h.render(w, r, http.StatusOK, "index.html", data)
}

// Result はセッションの最新の生成結果を表示します。
// まだ一度も生成していないセッションはフォームにリダイレクトします。
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	sid, ok := currentSessionID(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	run, ok := h.store.Get(sid)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := resultData{
		Title:           pageTitle("生成結果"),
		Run:             run,
		DurationSeconds: fmt.Sprintf("%.1f", run.Duration.Seconds()),
	}
	h.render(w, r, http.StatusOK, "result.html", data)
}
