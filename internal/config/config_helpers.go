package config

import (
	"fmt"
	"log/slog"

	"github.com/shouni/netarmor/securenet"
)

// ValidateEssentialConfig はアプリケーション実行に不可欠な設定を検証します。
// AIサービスのURLが未設定でも起動は継続し、フォールバック動作に切り替わります。
func ValidateEssentialConfig(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("configuration error: PORT is not set")
	}

	if !IsSecureURL(cfg.ServiceURL) {
		return fmt.Errorf("security error: SERVICE_URL ('%s') must be HTTPS in production", cfg.ServiceURL)
	}

	// 外部AIサービスの欠如は起動エラーにしない。各ステージのフォールバックで縮退運転する。
	if cfg.OllamaBaseURL == "" {
		slog.Warn("OLLAMA_BASE_URL が未設定です。パネル分割は決定的フォールバックのみで動作します")
	}
	if cfg.ImageAPIURL == "" {
		slog.Warn("IMAGE_API_URL が未設定です。全パネルがプレースホルダー画像になります")
	}

	return nil
}

// IsSecureURL は指定された URL が HTTPS または localhost であるか判定します。
func IsSecureURL(rawURL string) bool {
	return securenet.IsSecureServiceURL(rawURL)
}
