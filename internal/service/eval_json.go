package service

import (
	"encoding/json"
	"strings"
)

const evalParseErrorMessage = "Could not parse JSON"

// SelfEval is the structured assessment the evaluation model returns for a
// generated answer. Score fields are pointers so a missing key can be told
// apart from an explicit zero.
type SelfEval struct {
	UsedChunkIndices  []int    `json:"used_chunk_indices"`
	HallucinationRisk *float64 `json:"hallucination_risk"`
	Coverage          *float64 `json:"coverage"`
	AnswerQuality     *float64 `json:"answer_quality"`
	FinalConfidence   *float64 `json:"final_confidence"`
	Rationale         string   `json:"rationale"`
}

// SelfEvalParseFailure is persisted in place of a SelfEval when the model
// response could not be decoded.
type SelfEvalParseFailure struct {
	Raw        string `json:"raw"`
	ParseError string `json:"parse_error"`
}

// DecodeSelfEval parses evaluation model output into a SelfEval. Models often
// wrap JSON in markdown fences or add prose around it, so the decoder strips
// fences, extracts the first balanced object, and only then runs a strict
// decode. On failure it returns a SelfEvalParseFailure carrying the raw text.
func DecodeSelfEval(raw string) (*SelfEval, *SelfEvalParseFailure) {
	cleaned := stripCodeFences(raw)

	candidates := make([]string, 0, 2)
	if span, ok := firstJSONObject(cleaned); ok {
		candidates = append(candidates, span)
	}
	candidates = append(candidates, cleaned)

	for _, candidate := range candidates {
		var eval SelfEval
		if err := json.Unmarshal([]byte(candidate), &eval); err != nil {
			continue
		}
		eval.Rationale = truncateRunes(eval.Rationale, 400)
		return &eval, nil
	}

	return nil, &SelfEvalParseFailure{Raw: raw, ParseError: evalParseErrorMessage}
}

// stripCodeFences removes a surrounding markdown code fence, including an
// optional "json" language tag, and trims whitespace.
func stripCodeFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")
	t = strings.TrimSpace(t)
	if strings.HasPrefix(strings.ToLower(t), "json") {
		t = strings.TrimSpace(t[len("json"):])
	}
	return t
}

// firstJSONObject returns the first balanced top-level JSON object in s. The
// scanner tracks string and escape state, so braces inside string values do
// not affect the balance count.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
