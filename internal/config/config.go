package config

import (
	"os"
	"path"
	"time"

	"github.com/shouni/go-utils/envutil"
)

const (
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultLLMModel      = "llama2"
	// DefaultLLMTimeout ローカルLLMの応答を考慮したタイムアウト
	DefaultLLMTimeout = 30 * time.Second
	// DefaultImageTimeout 画像生成APIの応答を考慮したタイムアウト
	DefaultImageTimeout = 60 * time.Second
	DefaultHTTPTimeout  = 60 * time.Second
	// DefaultRateInterval 画像生成APIのレート制限を避けるためのリクエスト間隔
	DefaultRateInterval = 1 * time.Second
	// DefaultSessionTTL セッション成果物をメモリ上に保持する時間
	DefaultSessionTTL      = 30 * time.Minute
	DefaultPanelSize       = 512
	DefaultShutdownTimeout = 15 * time.Second
)

// Config は環境変数から読み込まれたアプリケーションの全設定を保持します。
type Config struct {
	ServiceURL string
	Port       string

	// ローカルLLM (Ollama互換) の設定
	OllamaBaseURL string
	LLMModel      string
	LLMTimeout    time.Duration

	// 画像生成サービスの設定
	ImageAPIURL  string
	ImageAPIKey  string
	ImageTimeout time.Duration
	PanelSize    int
	RateInterval time.Duration

	SlackWebhookURL string
	HTTPTimeout     time.Duration

	TemplateDir     string // HTMLテンプレートの格納ディレクトリ
	SessionTTL      time.Duration
	ShutdownTimeout time.Duration
}

// LoadConfig は環境変数から設定を読み込み、Config 構造体を生成します。
func LoadConfig() *Config {
	// 実行環境（Cloud Run, ko）に応じたパスの解決
	baseDir := "."
	if os.Getenv("KO_DATA_PATH") != "" || os.Getenv("K_SERVICE") != "" {
		baseDir = "/app"
	}

	return &Config{
		ServiceURL: envutil.GetEnv("SERVICE_URL", "http://localhost:8080"),
		Port:       envutil.GetEnv("PORT", "8080"),

		OllamaBaseURL: envutil.GetEnv("OLLAMA_BASE_URL", DefaultOllamaBaseURL),
		LLMModel:      envutil.GetEnv("LLM_MODEL", DefaultLLMModel),
		LLMTimeout:    DefaultLLMTimeout,

		ImageAPIURL:  envutil.GetEnv("IMAGE_API_URL", ""),
		ImageAPIKey:  envutil.GetEnv("IMAGE_API_KEY", ""),
		ImageTimeout: DefaultImageTimeout,
		PanelSize:    DefaultPanelSize,
		RateInterval: DefaultRateInterval,

		SlackWebhookURL: envutil.GetEnv("SLACK_WEBHOOK_URL", ""),
		HTTPTimeout:     DefaultHTTPTimeout,

		TemplateDir:     path.Join(baseDir, "templates"),
		SessionTTL:      DefaultSessionTTL,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}
