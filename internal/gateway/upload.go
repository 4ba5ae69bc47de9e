package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
)

// Upload is an optional image attached to a car create/update
type Upload struct {
	Filename string
	Content  io.Reader
}

// OpenUpload reads an image from disk into memory
func OpenUpload(path string) (*Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return &Upload{
		Filename: filepath.Base(path),
		Content:  bytes.NewReader(data),
	}, nil
}

// encodeCarForm builds the multipart body: a "car" JSON part and, when
// upload is non-nil, a "file" binary part. Returns body and content type.
func encodeCarForm(payload any, upload *Upload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode car: %w", err)
	}

	carHeader := make(textproto.MIMEHeader)
	carHeader.Set("Content-Disposition", `form-data; name="car"; filename="blob"`)
	carHeader.Set("Content-Type", "application/json")
	part, err := w.CreatePart(carHeader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create car part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("failed to write car part: %w", err)
	}

	if upload != nil && upload.Content != nil {
		contentType := mime.TypeByExtension(filepath.Ext(upload.Filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		fileHeader := make(textproto.MIMEHeader)
		fileHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.Filename))
		fileHeader.Set("Content-Type", contentType)
		filePart, err := w.CreatePart(fileHeader)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := io.Copy(filePart, upload.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return body, w.FormDataContentType(), nil
}
