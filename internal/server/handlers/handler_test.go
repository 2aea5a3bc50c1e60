package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comicai-web/internal/adapters"
	"comicai-web/internal/composer"
	"comicai-web/internal/config"
	"comicai-web/internal/pipeline"
	"comicai-web/internal/session"
	"comicai-web/internal/splitter"
)

const testPanelSize = 32

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, string, string) (string, error) {
	return "Panel 1: a cat in the garden\nPanel 2: the chase begins", nil
}

type stubIllustrator struct{}

func (stubIllustrator) Render(context.Context, string, string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, testPanelSize, testPanelSize))
	for y := 0; y < testPanelSize; y++ {
		for x := 0; x < testPanelSize; x++ {
			img.Set(x, y, color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func testConfig() *config.Config {
	return &config.Config{
		ServiceURL:  "http://localhost:8080",
		Port:        "8080",
		PanelSize:   testPanelSize,
		TemplateDir: "../../../templates",
	}
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	cfg := testConfig()

	sp := splitter.New(stubGenerator{}, "llama2")
	cp := composer.New(testPanelSize)
	p := pipeline.New(sp, stubIllustrator{}, cp, nil, testPanelSize, time.Millisecond, cfg.ServiceURL)

	// ベースURL未設定のLLMアダプター。モデル一覧の取得は即座に失敗し、候補なしでフォームを表示する
	llm := adapters.NewOllamaAdapter("", time.Second)

	h, err := NewHandler(cfg, p, session.NewStore(time.Minute), llm)
	require.NoError(t, err)
	return h
}

// testRouter は本番と同じパスパターンでハンドラーをマウントします。
func testRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Post("/generate", h.HandleSubmit)
	r.Get("/result", h.Result)
	r.Route("/outputs", func(r chi.Router) {
		r.Get("/panels/{index}", h.ServePanel)
		r.Get("/comic", h.ServeComposite)
		r.Get("/archive", h.ServeArchive)
	})
	return r
}

func submitForm(t *testing.T, router http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validForm() url.Values {
	return url.Values{
		"story_text":  {"A small cat chased a butterfly in the garden. They became friends."},
		"panel_count": {"2"},
		"art_style":   {"comic"},
		"layout":      {"horizontal"},
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatal("セッションクッキーが発行されていません")
	return nil
}

func TestIndex(t *testing.T) {
	t.Run("入力フォームを表示します", func(t *testing.T) {
		router := testRouter(newTestHandler(t))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `name="story_text"`)
		assert.Contains(t, body, `name="panel_count"`)
		assert.Contains(t, body, "watercolor")
		assert.Contains(t, body, "vertical")
	})

	t.Run("LLMが応答すればモデル候補が表示されます", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"models":[{"name":"llama2"},{"name":"mistral"}]}`))
		}))
		defer srv.Close()

		h, err := NewHandler(testConfig(), nil, session.NewStore(time.Minute),
			adapters.NewOllamaAdapter(srv.URL, time.Second))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		h.Index(rec, req)

		body := rec.Body.String()
		assert.Contains(t, body, `value="llama2"`)
		assert.Contains(t, body, `value="mistral"`)
	})
}

func TestHandleSubmit(t *testing.T) {
	t.Run("有効な投稿は結果ページへリダイレクトします", func(t *testing.T) {
		router := testRouter(newTestHandler(t))

		rec := submitForm(t, router, validForm())

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/result", rec.Header().Get("Location"))
		sessionCookie(t, rec)
	})

	t.Run("短すぎる物語は400でフォームを再表示します", func(t *testing.T) {
		router := testRouter(newTestHandler(t))

		form := validForm()
		form.Set("story_text", "短い")
		rec := submitForm(t, router, form)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "at least 10 characters")
	})

	t.Run("数値でないパネル数は400になります", func(t *testing.T) {
		router := testRouter(newTestHandler(t))

		form := validForm()
		form.Set("panel_count", "many")
		rec := submitForm(t, router, form)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("未知の画風は400になります", func(t *testing.T) {
		router := testRouter(newTestHandler(t))

		form := validForm()
		form.Set("art_style", "crayon")
		rec := submitForm(t, router, form)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResultAndOutputs(t *testing.T) {
	// 一度生成してからセッションクッキー付きで各エンドポイントを検証する
	setup := func(t *testing.T) (http.Handler, *http.Cookie) {
		router := testRouter(newTestHandler(t))
		rec := submitForm(t, router, validForm())
		require.Equal(t, http.StatusSeeOther, rec.Code)
		return router, sessionCookie(t, rec)
	}

	get := func(t *testing.T, router http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("結果ページに各パネルとダウンロード導線が表示されます", func(t *testing.T) {
		router, cookie := setup(t)

		rec := get(t, router, "/result", cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "/outputs/panels/1")
		assert.Contains(t, body, "/outputs/panels/2")
		assert.Contains(t, body, "/outputs/comic")
		assert.Contains(t, body, "/outputs/archive")
	})

	t.Run("セッションなしの結果ページはフォームへ戻します", func(t *testing.T) {
		router := testRouter(newTestHandler(t))

		rec := get(t, router, "/result", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("パネル画像を1始まりのインデックスで配信します", func(t *testing.T) {
		router, cookie := setup(t)

		rec := get(t, router, "/outputs/panels/1", cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

		_, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
	})

	t.Run("範囲外のパネルインデックスは404になります", func(t *testing.T) {
		router, cookie := setup(t)

		assert.Equal(t, http.StatusNotFound, get(t, router, "/outputs/panels/0", cookie).Code)
		assert.Equal(t, http.StatusNotFound, get(t, router, "/outputs/panels/3", cookie).Code)
	})

	t.Run("数値でないパネルインデックスは400になります", func(t *testing.T) {
		router, cookie := setup(t)
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/outputs/panels/abc", cookie).Code)
	})

	t.Run("download指定でContent-Dispositionが付与されます", func(t *testing.T) {
		router, cookie := setup(t)

		rec := get(t, router, "/outputs/panels/1?download=1", cookie)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "panel_1.png")

		rec = get(t, router, "/outputs/comic?download=1", cookie)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "comic_strip.png")
	})

	t.Run("コンポジット画像を配信します", func(t *testing.T) {
		router, cookie := setup(t)

		rec := get(t, router, "/outputs/comic", cookie)
		assert.Equal(t, http.StatusOK, rec.Code)

		img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		// 2コマ横並び + 余白
		assert.Equal(t, 2*testPanelSize+10, img.Bounds().Dx())
	})

	t.Run("ZIPアーカイブにパネルとコンポジットが含まれます", func(t *testing.T) {
		router, cookie := setup(t)

		rec := get(t, router, "/outputs/archive", cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

		data := rec.Body.Bytes()
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		require.Len(t, zr.File, 3)
	})

	t.Run("セッションなしの成果物アクセスは404になります", func(t *testing.T) {
		router := testRouter(newTestHandler(t))

		assert.Equal(t, http.StatusNotFound, get(t, router, "/outputs/panels/1", nil).Code)
		assert.Equal(t, http.StatusNotFound, get(t, router, "/outputs/comic", nil).Code)
		assert.Equal(t, http.StatusNotFound, get(t, router, "/outputs/archive", nil).Code)
	})
}

func TestNewHandler(t *testing.T) {
	t.Run("テンプレートディレクトリが無い場合はエラーになります", func(t *testing.T) {
		cfg := testConfig()
		cfg.TemplateDir = t.TempDir()

		_, err := NewHandler(cfg, nil, session.NewStore(time.Minute), adapters.NewOllamaAdapter("", time.Second))
		assert.Error(t, err)
	})
}
