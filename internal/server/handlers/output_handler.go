package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"comicai-web/internal/domain"
	"comicai-web/internal/session"
)

// loadRun はリクエストのセッションに紐づく最新の ComicRun を取得します。
// セッションが無い、または成果物が期限切れの場合は 404 を返します。
func (h *Handler) loadRun(w http.ResponseWriter, r *http.Request) (*domain.ComicRun, bool) {
	sid, ok := currentSessionID(r)
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	run, ok := h.store.Get(sid)
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	return run, true
}

// ServePanel は1パネル分の画像を配信します。インデックスは1始まりです。
// ?download=1 が付いている場合は添付ファイルとしてダウンロードさせます。
func (h *Handler) ServePanel(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid panel index", http.StatusBadRequest)
		return
	}

	img := run.PanelImage(index)
	if img == nil {
		http.NotFound(w, r)
		return
	}

	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="panel_%d.png"`, index))
	}
	serveImage(w, img.Data)
}

// ServeComposite は合成済みのコミックストリップ画像を配信します。
func (h *Handler) ServeComposite(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", `attachment; filename="comic_strip.png"`)
	}
	serveImage(w, run.Strip.Composite)
}

// ServeArchive は全パネルとコンポジットをまとめたZIPアーカイブを配信します。
func (h *Handler) ServeArchive(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	data, err := session.BuildArchive(run)
	if err != nil {
		slog.ErrorContext(r.Context(), "ZIPアーカイブの生成に失敗しました", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="comic_panels.zip"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(r.Context(), "アーカイブの書き込みに失敗しました", "error", err)
	}
}

func serveImage(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}
