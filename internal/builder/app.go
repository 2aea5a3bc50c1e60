package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-http-kit/pkg/httpkit"

	"comicai-web/internal/adapters"
	"comicai-web/internal/composer"
	"comicai-web/internal/config"
	"comicai-web/internal/pipeline"
	"comicai-web/internal/session"
	"comicai-web/internal/splitter"
)

// AppContext はアプリケーションの依存関係を保持します。
// 各フィールドをインターフェースで定義することで、将来的なモック利用を容易にします。
type AppContext struct {
	Config      *config.Config
	LLM         *adapters.OllamaAdapter
	Illustrator adapters.PanelIllustrator
	Splitter    *splitter.PanelSplitter
	Composer    *composer.Composer
	Notifier    adapters.ComicNotifier
	Store       *session.Store
	Pipeline    *pipeline.ComicPipeline
	HTTPClient  httpkit.ClientInterface
}

// BuildAppContext は外部サービスとの接続設定を確立し、依存関係を組み立てます。
func BuildAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	// 1. 基盤クライアントの初期化
	httpClient := httpkit.New(cfg.HTTPTimeout)

	// 2. 外部AIサービスのアダプター初期化
	llm := adapters.NewOllamaAdapter(cfg.OllamaBaseURL, cfg.LLMTimeout)
	illustrator := adapters.NewDiffusionAdapter(cfg.ImageAPIURL, cfg.ImageAPIKey, cfg.ImageTimeout, cfg.PanelSize)

	// 起動時の死活確認は情報提供のみ。到達不能でもフォールバックで動作を継続する。
	if cfg.OllamaBaseURL != "" && !llm.Available(ctx) {
		slog.WarnContext(ctx, "ローカルLLMに到達できません。パネル分割はフォールバックで動作します",
			"base_url", cfg.OllamaBaseURL)
	}

	// 3. パイプラインコンポーネントの組み立て
	sp := splitter.New(llm, cfg.LLMModel)
	cp := composer.New(cfg.PanelSize)

	// 4. アダプターの初期化
	notifier, err := adapters.NewSlackAdapter(httpClient, cfg.SlackWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Slack adapter: %w", err)
	}

	comicPipeline := pipeline.New(sp, illustrator, cp, notifier, cfg.PanelSize, cfg.RateInterval, cfg.ServiceURL)

	return &AppContext{
		Config:      cfg,
		LLM:         llm,
		Illustrator: illustrator,
		Splitter:    sp,
		Composer:    cp,
		Notifier:    notifier,
		Store:       session.NewStore(cfg.SessionTTL),
		Pipeline:    comicPipeline,
		HTTPClient:  httpClient,
	}, nil
}
