package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrLLMNotConfigured はローカルLLMのベースURLが未設定であることを示します。
var ErrLLMNotConfigured = errors.New("local LLM base URL is not configured")

// ScriptGenerator はローカルLLMによるテキスト生成を抽象化します。
// 実装は「実際の呼び出し」と、テスト用のスタブの2系統を想定しています。
type ScriptGenerator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// OllamaAdapter は Ollama 互換の /api/generate エンドポイントへの薄いラッパーです。
// レスポンス形式以外の契約は仮定せず、結果は自由テキストとして返します。
type OllamaAdapter struct {
	baseURL string
	client  *http.Client
}

// NewOllamaAdapter は指定されたベースURLとタイムアウトでアダプターを生成します。
func NewOllamaAdapter(baseURL string, timeout time.Duration) *OllamaAdapter {
	return &OllamaAdapter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate はプロンプトを送信し、生成テキストを返します。
// タイムアウト超過・非200応答は呼び出し側のフォールバック対象のエラーになります。
func (a *OllamaAdapter) Generate(ctx context.Context, prompt, model string) (string, error) {
	if a.baseURL == "" {
		return "", ErrLLMNotConfigured
	}

	reqBody := generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: 0.7,
			TopP:        0.9,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama connection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status: %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return genResp.Response, nil
}

// Available はサービスの死活を /api/tags で確認します。
func (a *OllamaAdapter) Available(ctx context.Context) bool {
	if a.baseURL == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Models はサービスにインストール済みのモデル名一覧を返します。
func (a *OllamaAdapter) Models(ctx context.Context) ([]string, error) {
	if a.baseURL == "" {
		return nil, ErrLLMNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama connection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status: %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
