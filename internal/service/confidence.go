package service

import (
	"math"
	"regexp"
	"strings"

	"github.com/studyhall-ai/studyhall/internal/domain"
)

// uncertaintyPhrases are hedging markers that lower heuristic confidence when
// they appear in a generated answer.
var uncertaintyPhrases = []string{
	"i don't have enough information",
	"i cannot answer",
	"not sure",
	"unclear",
	"might be",
	"possibly",
	"perhaps",
}

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// HeuristicConfidence scores an answer from observable signals alone: hedging
// phrases, how much supporting material was retrieved, and whether the answer
// contains parenthesized citations.
func HeuristicConfidence(answer string, chunkCount, verifiedCount int) float64 {
	confidence := 0.5

	lowered := strings.ToLower(answer)
	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(lowered, phrase) {
			confidence -= 0.3
			break
		}
	}

	if chunkCount > 0 {
		confidence += 0.2
	}
	if verifiedCount > 0 {
		confidence += 0.2
	}
	if strings.Contains(answer, "(") && strings.Contains(answer, ")") {
		confidence += 0.1
	}

	return round2(clamp01(confidence))
}

// RetrievalConfidence estimates, before any generation happens, how well the
// retrieved chunks cover the question. It blends a vector-score component
// with lexical term coverage, weighted 0.6/0.4.
func RetrievalConfidence(query string, chunks []domain.ScoredChunk) float64 {
	if len(chunks) == 0 {
		return 0.0
	}

	contents := make([]string, 0, len(chunks))
	var scores []float64
	for _, c := range chunks {
		contents = append(contents, strings.ToLower(c.Content))
		if c.Score != nil {
			scores = append(scores, *c.Score)
		}
	}
	haystack := strings.Join(contents, " ")

	coverage := termCoverage(query, haystack)

	scoreComponent := 0.0
	if len(scores) > 0 {
		maxScore := scores[0]
		for _, s := range scores[1:] {
			if s > maxScore {
				maxScore = s
			}
		}
		sum := 0.0
		if maxScore <= 1.5 {
			// Scores already look like similarities, average them directly.
			for _, s := range scores {
				sum += clamp01(s)
			}
		} else {
			// Scores look like distances, convert each to a similarity first.
			for _, s := range scores {
				sum += 1.0 / (1.0 + math.Max(s, 0))
			}
		}
		scoreComponent = sum / float64(len(scores))
	}

	return round4(clamp01(0.6*scoreComponent + 0.4*coverage))
}

// termCoverage reports the fraction of distinct query terms longer than three
// characters that appear in the haystack.
func termCoverage(query, haystack string) float64 {
	seen := make(map[string]struct{})
	matched := 0
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(query), -1) {
		if len(tok) <= 3 {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		if strings.Contains(haystack, tok) {
			matched++
		}
	}
	if len(seen) == 0 {
		return 0.0
	}
	return float64(matched) / float64(len(seen))
}

// ModelConfidence extracts a usable confidence from a parsed self evaluation.
// When final_confidence is missing but all three component scores are present
// it synthesizes one; otherwise it returns nil.
func ModelConfidence(eval *SelfEval) *float64 {
	if eval == nil {
		return nil
	}
	if eval.FinalConfidence != nil {
		v := round4(clamp01(*eval.FinalConfidence))
		return &v
	}
	if eval.AnswerQuality != nil && eval.HallucinationRisk != nil && eval.Coverage != nil {
		v := SynthesizeFinalConfidence(
			clamp01(*eval.AnswerQuality),
			clamp01(*eval.HallucinationRisk),
			clamp01(*eval.Coverage),
		)
		return &v
	}
	return nil
}

// SynthesizeFinalConfidence derives an overall confidence from evaluator
// component scores: quality discounted by hallucination risk, scaled by how
// much of the question the chunks covered.
func SynthesizeFinalConfidence(quality, hallucinationRisk, coverage float64) float64 {
	synthesized := quality * (1 - hallucinationRisk) * (0.5 + 0.5*coverage)
	return round4(clamp01(synthesized))
}

// CombineConfidence blends heuristic and model confidence 0.4/0.6. When no
// model confidence is available the heuristic stands alone.
func CombineConfidence(heuristic float64, model *float64) float64 {
	if model == nil {
		return heuristic
	}
	return round4(0.4*heuristic + 0.6*(*model))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
