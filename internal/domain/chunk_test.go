package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChunkMetadata(t *testing.T) {
	page := 1
	start := 30.0
	end := 25.0

	tests := []struct {
		name     string
		metadata ChunkMetadata
		wantErr  bool
		errMsg   string
	}{
		{
			name: "valid pdf metadata",
			metadata: ChunkMetadata{
				FileName:   "notes.pdf",
				Type:       SourceTypePDF,
				Page:       &page,
				CourseID:   "c1",
				DocumentID: "d1",
				ChunkIndex: 0,
			},
			wantErr: false,
		},
		{
			name: "missing file name",
			metadata: ChunkMetadata{
				Type:     SourceTypePDF,
				CourseID: "c1",
			},
			wantErr: true,
			errMsg:  "FileName is required",
		},
		{
			name: "missing course id",
			metadata: ChunkMetadata{
				FileName: "notes.pdf",
				Type:     SourceTypePDF,
			},
			wantErr: true,
			errMsg:  "CourseID is required",
		},
		{
			name: "invalid source type",
			metadata: ChunkMetadata{
				FileName: "notes.docx",
				Type:     "docx",
				CourseID: "c1",
			},
			wantErr: true,
			errMsg:  "Type is invalid",
		},
		{
			name: "negative chunk index",
			metadata: ChunkMetadata{
				FileName:   "notes.pdf",
				Type:       SourceTypePDF,
				CourseID:   "c1",
				ChunkIndex: -1,
			},
			wantErr: true,
			errMsg:  "ChunkIndex cannot be negative",
		},
		{
			name: "end before start",
			metadata: ChunkMetadata{
				FileName:  "lec.vtt",
				Type:      SourceTypeVTT,
				CourseID:  "c1",
				StartTime: &start,
				EndTime:   &end,
			},
			wantErr: true,
			errMsg:  "EndTime cannot precede StartTime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunkMetadata(&tt.metadata)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateChunk(t *testing.T) {
	chunk := NewChunk("some content", ChunkMetadata{
		FileName: "notes.pdf",
		Type:     SourceTypePDF,
		CourseID: "c1",
	}, nil)

	require.NoError(t, ValidateChunk(chunk))

	chunk.Content = ""
	err := ValidateChunk(chunk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Content is required")
}
