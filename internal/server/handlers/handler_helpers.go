package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// セッション識別用クッキー名
const sessionCookieName = "comicai_session"

// render はテンプレートをバッファに描画してからレスポンスに書き出します。
// 描画途中のエラーで不完全なHTMLがクライアントに送られることを防ぎます。
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	tmpl, ok := h.templateCache[page]
	if !ok {
		slog.ErrorContext(r.Context(), "テンプレートがキャッシュに存在しません", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "layout", data); err != nil {
		slog.ErrorContext(r.Context(), "テンプレートの描画に失敗しました", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "レスポンスの書き込みに失敗しました", "error", err)
	}
}

// sessionID は既存のセッションクッキーを返します。存在しない場合は新規発行します。
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(h.cfg.ServiceURL, "https://"),
	})
	return id
}

// currentSessionID は新規発行せずに既存のセッションIDだけを返します。
// 成果物の配信など、セッションが無ければ 404 にしたい場面で使います。
func currentSessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// pageTitle はページ名にサイト共通のサフィックスを付与します。
func pageTitle(name string) string {
	return fmt.Sprintf("%s%s", name, titleSuffix)
}
