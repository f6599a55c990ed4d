package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/studyhall-ai/studyhall/internal/domain"
)

// ContextSource identifies the origin of one assembled context segment.
// Sources are recorded in the order their segments were emitted, so the list
// doubles as the citation order for the final answer.
type ContextSource struct {
	Chunk    *domain.Chunk
	Verified *domain.VerifiedAnswer
}

// BuildContext assembles the grounding context handed to the generation
// model. Verified answers come first so the model sees instructor-approved
// material before raw course chunks, then each chunk under a source header
// carrying its file name, page, and timestamp. Empty inputs produce an empty
// context and no sources.
func BuildContext(chunks []domain.ScoredChunk, verified []domain.ScoredVerifiedAnswer) (string, []ContextSource) {
	if len(chunks) == 0 && len(verified) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(verified)*4+len(chunks)*3)
	sources := make([]ContextSource, 0, len(verified)+len(chunks))

	for i := range verified {
		v := &verified[i].VerifiedAnswer
		parts = append(parts,
			fmt.Sprintf("[VERIFIED ANSWER %d]", i+1),
			"Q: "+v.Question,
			"A: "+v.Answer,
			"",
		)
		sources = append(sources, ContextSource{Verified: v})
	}

	for i := range chunks {
		c := &chunks[i].Chunk
		parts = append(parts, sourceHeader(c.Metadata), c.Content, "")
		sources = append(sources, ContextSource{Chunk: c})
	}

	return strings.Join(parts, "\n"), sources
}

func sourceHeader(m domain.ChunkMetadata) string {
	name := m.FileName
	if name == "" {
		name = "unknown"
	}

	var b strings.Builder
	b.WriteString("[Source: ")
	b.WriteString(name)
	if m.Page != nil {
		fmt.Fprintf(&b, ", page %d", *m.Page)
	}
	if m.StartTime != nil {
		fmt.Fprintf(&b, ", timestamp %ss", formatSeconds(*m.StartTime))
	}
	b.WriteString("]")
	return b.String()
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
