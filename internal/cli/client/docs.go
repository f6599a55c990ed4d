package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Document represents a course document in API responses.
type Document struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	LastError  string `json:"last_error,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// DocumentListResponse represents the document listing response.
type DocumentListResponse struct {
	Documents []Document `json:"documents"`
}

// UploadResponse represents the document upload response.
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
}

// DocsCmd creates the docs parent command.
func DocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage course documents (TA/instructor)",
		Long:  "Upload course materials and inspect their ingestion status.",
	}

	cmd.AddCommand(DocsUploadCmd())
	cmd.AddCommand(DocsListCmd())

	return cmd
}

// DocsUploadCmd creates the docs upload command.
func DocsUploadCmd() *cobra.Command {
	var courseID string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a course document",
		Long:  "Uploads a PDF, VTT, or text file to be chunked and embedded for retrieval.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocsUpload(args[0], courseID, outputJSON)
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course ID (defaults to the bound course)")

	return cmd
}

func runDocsUpload(filePath, courseID string, outputJSON bool) error {
	courseID, err := resolveCourseID(courseID)
	if err != nil {
		return err
	}

	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fields := map[string]string{"course_id": courseID}
	resp, err := api.PostMultipart("/api/documents", fields, "file", filepath.Base(filePath), file)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var uploadResp UploadResponse
	if err := json.Unmarshal(resp.Data, &uploadResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(uploadResp, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Uploaded %s\n", filepath.Base(filePath))
		fmt.Printf("Document ID: %s\n", uploadResp.DocumentID)
		fmt.Printf("Status: %s (%d chunks)\n", uploadResp.Status, uploadResp.ChunkCount)
	}

	return nil
}

// DocsListCmd creates the docs list command.
func DocsListCmd() *cobra.Command {
	var courseID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List course documents",
		Long:  "Lists uploaded documents with their ingestion status.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocsList(courseID, outputJSON)
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course ID (defaults to the bound course)")

	return cmd
}

func runDocsList(courseID string, outputJSON bool) error {
	courseID, err := resolveCourseID(courseID)
	if err != nil {
		return err
	}

	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("course_id", courseID)

	resp, err := api.Get("/api/documents?" + query.Encode())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var listResp DocumentListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse documents: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
	} else {
		if len(listResp.Documents) == 0 {
			fmt.Println("No documents found.")
			return nil
		}
		fmt.Println("Documents:")
		for _, doc := range listResp.Documents {
			fmt.Printf("  %s  %s [%s] %d chunks (%s)\n", doc.ID, doc.FileName, doc.Status, doc.ChunkCount, doc.CreatedAt)
			if doc.LastError != "" {
				fmt.Printf("    error: %s\n", doc.LastError)
			}
		}
	}

	return nil
}
