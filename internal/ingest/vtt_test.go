package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVTT(t *testing.T) {
	t.Run("groups consecutive cues into one window", func(t *testing.T) {
		transcript := `WEBVTT

00:00:01.000 --> 00:00:04.000
Welcome to lecture four on deadlock.

00:00:05.000 --> 00:00:09.000
A deadlock requires four conditions to hold at once.
`

		drafts, err := ParseVTT(strings.NewReader(transcript), 30.0)

		require.NoError(t, err)
		require.Len(t, drafts, 1)
		assert.Equal(t, "Welcome to lecture four on deadlock. A deadlock requires four conditions to hold at once.", drafts[0].Content)
		require.NotNil(t, drafts[0].StartTime)
		require.NotNil(t, drafts[0].EndTime)
		assert.Equal(t, 1.0, *drafts[0].StartTime)
		assert.Equal(t, 9.0, *drafts[0].EndTime)
		assert.Nil(t, drafts[0].Page)
	})

	t.Run("starts a new window once the width is exceeded", func(t *testing.T) {
		transcript := `WEBVTT

00:00:00.000 --> 00:00:05.000
First part of the lecture.

00:00:10.000 --> 00:00:15.000
Still inside the first window.

00:00:35.000 --> 00:00:40.000
This cue opens a second window.
`

		drafts, err := ParseVTT(strings.NewReader(transcript), 30.0)

		require.NoError(t, err)
		require.Len(t, drafts, 2)
		assert.Equal(t, "First part of the lecture. Still inside the first window.", drafts[0].Content)
		assert.Equal(t, 0.0, *drafts[0].StartTime)
		assert.Equal(t, 15.0, *drafts[0].EndTime)
		assert.Equal(t, "This cue opens a second window.", drafts[1].Content)
		assert.Equal(t, 35.0, *drafts[1].StartTime)
		assert.Equal(t, 40.0, *drafts[1].EndTime)
		assert.LessOrEqual(t, *drafts[0].StartTime, *drafts[1].StartTime)
		assert.LessOrEqual(t, *drafts[0].EndTime, *drafts[1].EndTime)
	})

	t.Run("zero width falls back to the default window", func(t *testing.T) {
		transcript := `WEBVTT

00:00:00.000 --> 00:00:05.000
Inside the default window.

00:00:31.000 --> 00:00:35.000
Past the default window.
`

		drafts, err := ParseVTT(strings.NewReader(transcript), 0)

		require.NoError(t, err)
		require.Len(t, drafts, 2)
	})

	t.Run("multi-line cues are joined with spaces", func(t *testing.T) {
		transcript := `WEBVTT

00:00:01.000 --> 00:00:04.000
Processes share an address space
when threads are used.
`

		drafts, err := ParseVTT(strings.NewReader(transcript), 30.0)

		require.NoError(t, err)
		require.Len(t, drafts, 1)
		assert.Equal(t, "Processes share an address space when threads are used.", drafts[0].Content)
	})

	t.Run("whitespace-only cues yield no content", func(t *testing.T) {
		transcript := `WEBVTT

00:00:01.000 --> 00:00:02.000

`

		_, err := ParseVTT(strings.NewReader(transcript), 30.0)

		assert.ErrorIs(t, err, ErrNoContent)
	})
}
