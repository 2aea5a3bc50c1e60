package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"comicai-web/internal/adapters"
	"comicai-web/internal/composer"
	"comicai-web/internal/domain"
	"comicai-web/internal/prompts"
	"comicai-web/internal/splitter"
)

// ComicPipeline は 検証 → パネル分割 → 画像生成 → 合成 の直列フローを実行します。
// 外部サービスの失敗はステージごとのフォールバックで吸収されるため、
// バリデーション通過後の実行結果は常に「コミックが生成された」状態になります。
type ComicPipeline struct {
	splitter     *splitter.PanelSplitter
	illustrator  adapters.PanelIllustrator
	composer     *composer.Composer
	notifier     adapters.ComicNotifier
	panelSize    int
	rateInterval time.Duration
	serviceURL   string
}

// New は ComicPipeline の新しいインスタンスを生成します。
func New(
	sp *splitter.PanelSplitter,
	il adapters.PanelIllustrator,
	cp *composer.Composer,
	notifier adapters.ComicNotifier,
	panelSize int,
	rateInterval time.Duration,
	serviceURL string,
) *ComicPipeline {
	return &ComicPipeline{
		splitter:     sp,
		illustrator:  il,
		composer:     cp,
		notifier:     notifier,
		panelSize:    panelSize,
		rateInterval: rateInterval,
		serviceURL:   serviceURL,
	}
}

// Execute は1回の生成リクエストを最後まで処理し、完成した ComicRun を返します。
// バリデーション失敗はそのまま返し、合成失敗のみが実行全体のエラーになります。
func (p *ComicPipeline) Execute(ctx context.Context, input domain.StoryInput) (*domain.ComicRun, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	slog.InfoContext(ctx, "Pipeline execution started",
		"panels", input.PanelCount,
		"style", input.Style,
		"layout", input.Layout,
	)

	// 1. パネル分割（LLMまたは決定的フォールバック）
	panels, fallbackUsed := p.splitter.Split(ctx, input.Text, input.PanelCount, input.Model)

	// 2. パネルごとの画像生成（失敗パネルはプレースホルダーで補完）
	images := p.renderPanels(ctx, panels, input.Style)

	// 3. コンポジット合成
	compositeData, err := p.composer.Compose(images, input.Layout)
	if err != nil {
		p.notifyError(ctx, err, input)
		return nil, fmt.Errorf("comic composition failed: %w", err)
	}

	run := &domain.ComicRun{
		Input:  input,
		Panels: panels,
		Strip: domain.ComicStrip{
			Layout:    input.Layout,
			Images:    images,
			Composite: compositeData,
		},
		Duration:     time.Since(start),
		FallbackUsed: fallbackUsed,
	}

	slog.InfoContext(ctx, "Pipeline execution finished",
		"panels", len(run.Panels),
		"duration", run.Duration,
		"fallback_split", fallbackUsed,
	)

	p.notifyCompletion(ctx, run)
	return run, nil
}

// renderPanels は各パネルの画像を並列に生成します。
// レートリミッターでリクエスト間隔を制御し、個別の失敗が他のパネルを中断させることはありません。
func (p *ComicPipeline) renderPanels(ctx context.Context, panels []domain.ScenePanel, style domain.ArtStyle) []domain.GeneratedImage {
	images := make([]domain.GeneratedImage, len(panels))
	eg, egCtx := errgroup.WithContext(ctx)

	// Burst 2 により、開始直後に2枚までは同時にリクエストを開始できる
	limiter := rate.NewLimiter(rate.Every(p.rateInterval), 2)

	for i, panel := range panels {
		i, panel := i, panel

		eg.Go(func() error {
			if err := limiter.Wait(egCtx); err != nil {
				images[i] = p.placeholderFor(panel)
				return nil
			}

			prompt := prompts.ForPanel(panel, style)
			data, err := p.illustrator.Render(egCtx, prompt, prompts.NegativePrompt)
			if err != nil {
				slog.WarnContext(egCtx, "パネル画像の生成に失敗しました。プレースホルダーを使用します",
					"panel", panel.Index, "error", err)
				images[i] = p.placeholderFor(panel)
				return nil
			}

			images[i] = domain.GeneratedImage{
				PanelIndex: panel.Index,
				Data:       data,
				Status:     domain.StatusSucceeded,
			}
			slog.InfoContext(egCtx, "パネル画像を生成しました", "panel", panel.Index)
			return nil
		})
	}

	// 各ゴルーチンは常に nil を返すため、ここでエラーになることはない
	_ = eg.Wait()
	return images
}

func (p *ComicPipeline) placeholderFor(panel domain.ScenePanel) domain.GeneratedImage {
	return domain.GeneratedImage{
		PanelIndex: panel.Index,
		Data:       composer.Placeholder(panel.Description, p.panelSize),
		Status:     domain.StatusPlaceholder,
	}
}

// --- 通知 ---

func (p *ComicPipeline) notifyCompletion(ctx context.Context, run *domain.ComicRun) {
	if p.notifier == nil {
		return
	}
	req := buildNotification(run.Input)
	if err := p.notifier.Notify(ctx, p.serviceURL+"/result", req); err != nil {
		slog.ErrorContext(ctx, "Notification failed", "error", err)
	}
}

func (p *ComicPipeline) notifyError(ctx context.Context, cause error, input domain.StoryInput) {
	if p.notifier == nil {
		return
	}
	req := buildNotification(input)
	if err := p.notifier.NotifyError(ctx, cause, req); err != nil {
		slog.ErrorContext(ctx, "Error notification failed", "error", err)
	}
}

func buildNotification(input domain.StoryInput) domain.NotificationRequest {
	summary := input.Text
	if runes := []rune(summary); len(runes) > 50 {
		summary = string(runes[:50]) + "..."
	}
	return domain.NotificationRequest{
		StorySummary:   summary,
		OutputCategory: "comic-output",
		PanelCount:     input.PanelCount,
		ExecutionMode:  fmt.Sprintf("%s / %s", input.Style, input.Layout),
	}
}
