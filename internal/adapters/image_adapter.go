package adapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrImageNotConfigured は画像生成サービスのURLが未設定であることを示します。
var ErrImageNotConfigured = errors.New("image API URL is not configured")

// レスポンスボディの読み込み上限。画像1枚分として十分な余裕を持たせています。
const maxImageResponseBytes = 32 << 20

// PanelIllustrator は text-to-image サービスによるパネル画像生成を抽象化します。
type PanelIllustrator interface {
	Render(ctx context.Context, prompt, negativePrompt string) ([]byte, error)
}

// DiffusionAdapter は Stable Diffusion 系のHTTPエンドポイントへの薄いラッパーです。
// 成功時は生の画像バイト列を返し、失敗の扱い（プレースホルダー代替）は呼び出し側に委ねます。
type DiffusionAdapter struct {
	apiURL    string
	apiKey    string
	panelSize int
	client    *http.Client
}

// NewDiffusionAdapter は指定されたエンドポイントと認証情報でアダプターを生成します。
func NewDiffusionAdapter(apiURL, apiKey string, timeout time.Duration, panelSize int) *DiffusionAdapter {
	return &DiffusionAdapter{
		apiURL:    apiURL,
		apiKey:    apiKey,
		panelSize: panelSize,
		client:    &http.Client{Timeout: timeout},
	}
}

type renderRequest struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	NumImagesPerPrompt int    `json:"num_images_per_prompt"`
}

// renderResponse はAPIの応答形式の揺れを吸収します。
// Hugging Face Spaces 形式 ("images") と代替形式 ("data") の両方を受け付けます。
type renderResponse struct {
	Images []string `json:"images"`
	Data   []string `json:"data"`
}

// Render はプロンプトを送信し、画像バイト列を返します。
// ネットワークエラー・非成功ステータス・タイムアウト・空ペイロードはすべてエラーです。
func (a *DiffusionAdapter) Render(ctx context.Context, prompt, negativePrompt string) ([]byte, error) {
	if a.apiURL == "" {
		return nil, ErrImageNotConfigured
	}

	payload := renderRequest{
		Prompt:             prompt,
		NegativePrompt:     negativePrompt,
		Width:              a.panelSize,
		Height:             a.panelSize,
		NumInferenceSteps:  20,
		GuidanceScale:      7.5,
		NumImagesPerPrompt: 1,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image API connection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image response: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("image API returned an empty payload")
	}

	// 一部のエンドポイントはJSONではなく画像バイトを直接返します。
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
		return body, nil
	}

	return decodeImagePayload(body)
}

// decodeImagePayload はJSON応答からBase64エンコードされた先頭の画像を取り出します。
func decodeImagePayload(body []byte) ([]byte, error) {
	var parsed renderResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unexpected image API response format: %w", err)
	}

	encoded := ""
	switch {
	case len(parsed.Images) > 0:
		encoded = parsed.Images[0]
	case len(parsed.Data) > 0:
		encoded = parsed.Data[0]
	default:
		return nil, errors.New("image API response contains no images")
	}

	// data URL プレフィックス付きで返すエンドポイントへの防御
	if idx := strings.Index(encoded, ","); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("image API returned an empty image")
	}
	return data, nil
}
