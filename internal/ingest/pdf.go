package ingest

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// ParsePDF extracts per-page text from a PDF and splits it into chunks of at
// most maxChunkChars. Pages that cannot be read are skipped; a document with
// no readable text at all returns ErrNoContent.
func ParsePDF(r io.ReaderAt, size int64, maxChunkChars int) ([]ChunkDraft, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var drafts []ChunkDraft
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		for _, piece := range SplitText(text, maxChunkChars) {
			p := pageNum
			drafts = append(drafts, ChunkDraft{Content: piece, Page: &p})
		}
	}

	if len(drafts) == 0 {
		return nil, ErrNoContent
	}
	return drafts, nil
}
