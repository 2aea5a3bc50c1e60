package session

import (
	"archive/zip"
	"bytes"
	"fmt"

	"comicai-web/internal/domain"
)

// ZIPエントリの命名。ダウンロードしたファイル単体でも順序が分かるようにします。
const (
	panelEntryFormat   = "panel_%d.png"
	compositeEntryName = "comic.png"
)

// BuildArchive は全パネル画像とコンポジット画像を1つのZIPにまとめます。
// エントリ内容はストアに保持されているバイト列と同一です。
func BuildArchive(run *domain.ComicRun) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, img := range run.Strip.Images {
		w, err := zw.Create(fmt.Sprintf(panelEntryFormat, img.PanelIndex))
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry for panel %d: %w", img.PanelIndex, err)
		}
		if _, err := w.Write(img.Data); err != nil {
			return nil, fmt.Errorf("failed to write panel %d: %w", img.PanelIndex, err)
		}
	}

	w, err := zw.Create(compositeEntryName)
	if err != nil {
		return nil, fmt.Errorf("failed to create composite entry: %w", err)
	}
	if _, err := w.Write(run.Strip.Composite); err != nil {
		return nil, fmt.Errorf("failed to write composite: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
