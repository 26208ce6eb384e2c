package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// DocumentFile is one file in a batched knowledge-base upload.
type DocumentFile struct {
	Name    string
	Content io.Reader
}

// OpenDocumentFile wraps a file on disk for upload.
func OpenDocumentFile(path string) (DocumentFile, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return DocumentFile{}, nil, err
	}
	return DocumentFile{Name: filepath.Base(path), Content: f}, f.Close, nil
}

// UploadDocuments sends all files in one multipart request: an "agentId"
// field plus one "file" part per document.
func (c *Client) UploadDocuments(ctx context.Context, agentID string, files []DocumentFile) error {
	if len(files) == 0 {
		return nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("agentId", agentID); err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	for _, file := range files {
		part, err := writer.CreateFormFile("file", file.Name)
		if err != nil {
			return fmt.Errorf("build upload request: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("read %s: %w", file.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents/upload", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	_, err = c.send(req)
	return err
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/documents/"+id, nil, nil)
}
