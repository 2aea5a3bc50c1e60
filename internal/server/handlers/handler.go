package handlers

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"comicai-web/internal/adapters"
	"comicai-web/internal/config"
	"comicai-web/internal/pipeline"
	"comicai-web/internal/session"
)

const titleSuffix = " - ComicAI Web"

type Handler struct {
	cfg           *config.Config
	templateCache map[string]*template.Template
	pipeline      *pipeline.ComicPipeline
	store         *session.Store
	llm           *adapters.OllamaAdapter
}

// NewHandler は指定された構成に基づいて新しいハンドラーを初期化します。
// テンプレートをコンパイルし、レイアウトファイルが存在することを確認します。
func NewHandler(
	cfg *config.Config,
	comicPipeline *pipeline.ComicPipeline,
	store *session.Store,
	llm *adapters.OllamaAdapter,
) (*Handler, error) {
	cache := make(map[string]*template.Template)
	layoutPath := filepath.Join(cfg.TemplateDir, "layout.html")
	if _, err := os.Stat(layoutPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("レイアウトテンプレートが見つかりません: %s", layoutPath)
	}

	pagePaths, err := filepath.Glob(filepath.Join(cfg.TemplateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("ページテンプレートの検索に失敗しました: %w", err)
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}

	for _, pagePath := range pagePaths {
		pageName := filepath.Base(pagePath)
		if pageName == "layout.html" {
			continue
		}

		tmpl := template.New(pageName).Funcs(funcMap)
		tmpl, err = tmpl.ParseFiles(layoutPath, pagePath)
		if err != nil {
			return nil, fmt.Errorf("テンプレート %s の解析に失敗しました: %w", pageName, err)
		}
		cache[pageName] = tmpl
	}

	return &Handler{
		cfg:           cfg,
		templateCache: cache,
		pipeline:      comicPipeline,
		store:         store,
		llm:           llm,
	}, nil
}
