package domain

const CategoryNotAvailable = "N/A"

// NotificationRequest は Slack 等の通知コンポーネントで共有されるデータ構造です。
// 生成されたコミックのメタデータを通知先に伝えるために使用します。
type NotificationRequest struct {
	// StorySummary は、コミックの元になった物語の冒頭部分です。
	StorySummary string `json:"story_summary"`

	// OutputCategory は、出力先の種別です。(例: "comic-output")
	OutputCategory string `json:"output_category"`

	// PanelCount は、生成されたパネル数です。
	PanelCount int `json:"panel_count"`

	// ExecutionMode は、実行された画風とレイアウトです。(例: "comic / horizontal")
	ExecutionMode string `json:"execution_mode"`
}
