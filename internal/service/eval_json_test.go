package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSelfEval(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		raw := `{"used_chunk_indices":[1,3],"hallucination_risk":0.1,"coverage":0.8,"answer_quality":0.9,"final_confidence":0.85,"rationale":"well grounded"}`

		eval, failure := DecodeSelfEval(raw)

		require.Nil(t, failure)
		require.NotNil(t, eval)
		assert.Equal(t, []int{1, 3}, eval.UsedChunkIndices)
		require.NotNil(t, eval.FinalConfidence)
		assert.Equal(t, 0.85, *eval.FinalConfidence)
		assert.Equal(t, "well grounded", eval.Rationale)
	})

	t.Run("markdown fenced json", func(t *testing.T) {
		raw := "```json\n{\"final_confidence\":0.7,\"rationale\":\"ok\"}\n```"

		eval, failure := DecodeSelfEval(raw)

		require.Nil(t, failure)
		require.NotNil(t, eval.FinalConfidence)
		assert.Equal(t, 0.7, *eval.FinalConfidence)
	})

	t.Run("fence without language tag", func(t *testing.T) {
		raw := "```\n{\"final_confidence\":0.6}\n```"

		eval, failure := DecodeSelfEval(raw)

		require.Nil(t, failure)
		require.NotNil(t, eval.FinalConfidence)
		assert.Equal(t, 0.6, *eval.FinalConfidence)
	})

	t.Run("json surrounded by prose", func(t *testing.T) {
		raw := `Here is my assessment: {"final_confidence":0.55,"rationale":"partial"} hope that helps`

		eval, failure := DecodeSelfEval(raw)

		require.Nil(t, failure)
		require.NotNil(t, eval.FinalConfidence)
		assert.Equal(t, 0.55, *eval.FinalConfidence)
	})

	t.Run("braces inside string values do not break extraction", func(t *testing.T) {
		raw := `{"rationale":"mentions {curly} braces and a \" quote","final_confidence":0.5}`

		eval, failure := DecodeSelfEval(raw)

		require.Nil(t, failure)
		assert.Equal(t, `mentions {curly} braces and a " quote`, eval.Rationale)
	})

	t.Run("missing keys decode as nil scores", func(t *testing.T) {
		eval, failure := DecodeSelfEval(`{"rationale":"no scores"}`)

		require.Nil(t, failure)
		assert.Nil(t, eval.FinalConfidence)
		assert.Nil(t, eval.HallucinationRisk)
		assert.Nil(t, eval.Coverage)
		assert.Nil(t, eval.AnswerQuality)
	})

	t.Run("rationale is truncated", func(t *testing.T) {
		long := strings.Repeat("x", 500)
		eval, failure := DecodeSelfEval(`{"rationale":"` + long + `"}`)

		require.Nil(t, failure)
		assert.Len(t, eval.Rationale, 400)
	})

	t.Run("unparseable output returns the raw text", func(t *testing.T) {
		raw := "I am quite confident in this answer."

		eval, failure := DecodeSelfEval(raw)

		assert.Nil(t, eval)
		require.NotNil(t, failure)
		assert.Equal(t, raw, failure.Raw)
		assert.Equal(t, "Could not parse JSON", failure.ParseError)
	})

	t.Run("truncated json fails", func(t *testing.T) {
		eval, failure := DecodeSelfEval(`{"final_confidence":0.`)

		assert.Nil(t, eval)
		require.NotNil(t, failure)
	})
}
