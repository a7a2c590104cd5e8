package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ImageClient talks to the external image storage service over HTTP.
// Product photos are pushed there and only the public URL is persisted.
type ImageClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewImageClient(baseURL, token string) *ImageClient {
	return &ImageClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type imageUploadResponse struct {
	URL string `json:"url"`
}

// Upload sends the file content as multipart form data and returns the
// public URL assigned by the storage service.
func (c *ImageClient) Upload(ctx context.Context, fileName string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("images: create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("images: copy content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("images: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("images: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("images: service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("images: service returned %d", resp.StatusCode)
	}

	var result imageUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("images: decode response: %w", err)
	}
	return result.URL, nil
}

// Delete removes a previously uploaded image by its public URL. Best effort —
// callers usually ignore the error and just drop the reference.
func (c *ImageClient) Delete(ctx context.Context, imageURL string) error {
	body, err := json.Marshal(map[string]string{"url": imageURL})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/images", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("images: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("images: service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("images: service returned %d", resp.StatusCode)
	}
	return nil
}
