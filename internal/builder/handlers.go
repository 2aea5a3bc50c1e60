package builder

import (
	"fmt"

	"comicai-web/internal/server/handlers"
)

// AppHandlers は生成されたすべての HTTP ハンドラーを保持する構造体です。
// server パッケージはこの構造体を受け取ってルーティングを行います。
type AppHandlers struct {
	Web *handlers.Handler
}

// BuildHandlers は各ハンドラーの依存関係をすべて組み立て、AppHandlers 構造体を返します。
func BuildHandlers(appCtx *AppContext) (*AppHandlers, error) {
	webHandler, err := handlers.NewHandler(appCtx.Config, appCtx.Pipeline, appCtx.Store, appCtx.LLM)
	if err != nil {
		return nil, fmt.Errorf("WebHandlerの初期化に失敗しました: %w", err)
	}

	return &AppHandlers{
		Web: webHandler,
	}, nil
}
