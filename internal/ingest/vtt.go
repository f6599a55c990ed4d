package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/asticode/go-astisub"
)

// ParseVTT reads a WebVTT transcript and groups consecutive cues into windows
// of roughly windowSeconds, each draft carrying the start of its first cue
// and the end of its last. Cue order is preserved, so start and end times are
// monotonically non-decreasing across drafts.
func ParseVTT(r io.Reader, windowSeconds float64) ([]ChunkDraft, error) {
	if windowSeconds <= 0 {
		windowSeconds = DefaultTranscriptWindowSeconds
	}

	subs, err := astisub.ReadFromWebVTT(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vtt: %w", err)
	}

	var drafts []ChunkDraft
	var texts []string
	var windowStart, windowEnd float64
	open := false

	flush := func() {
		if open && len(texts) > 0 {
			start, end := windowStart, windowEnd
			drafts = append(drafts, ChunkDraft{
				Content:   strings.Join(texts, " "),
				StartTime: &start,
				EndTime:   &end,
			})
		}
		open = false
		texts = nil
	}

	for _, item := range subs.Items {
		text := cueText(item)
		if text == "" {
			continue
		}

		start := item.StartAt.Seconds()
		end := item.EndAt.Seconds()

		if open && start >= windowStart+windowSeconds {
			flush()
		}
		if !open {
			windowStart = start
			windowEnd = end
			open = true
		}
		if end > windowEnd {
			windowEnd = end
		}
		texts = append(texts, text)
	}
	flush()

	if len(drafts) == 0 {
		return nil, ErrNoContent
	}
	return drafts, nil
}

func cueText(item *astisub.Item) string {
	parts := make([]string, 0, len(item.Lines))
	for _, line := range item.Lines {
		if s := strings.TrimSpace(line.String()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
