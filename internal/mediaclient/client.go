package mediaclient

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

// Client talks to the external media store. It is constructed once at startup
// and handed to the call sites that need uploads.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type Upload struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type File struct {
	Name string
	Data io.Reader
}

type FailedUpload struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// BatchResult reports partial failure instead of failing the whole batch.
// Callers proceed when at least one upload succeeded.
type BatchResult struct {
	Successful []Upload       `json:"successful"`
	Failed     []FailedUpload `json:"failed"`
}

func (c *Client) Upload(ctx context.Context, file File) (*Upload, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file.Data); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("upload failed with status: %d", resp.StatusCode)
	}

	var result Upload
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// UploadMany uploads sequentially and collects per-file outcomes.
func (c *Client) UploadMany(ctx context.Context, files []File) (*BatchResult, error) {
	res := &BatchResult{}
	for _, f := range files {
		up, err := c.Upload(ctx, f)
		if err != nil {
			res.Failed = append(res.Failed, FailedUpload{Name: f.Name, Error: err.Error()})
			continue
		}
		res.Successful = append(res.Successful, *up)
	}
	if len(res.Successful) == 0 && len(files) > 0 {
		return res, fmt.Errorf("all %d uploads failed", len(files))
	}
	return res, nil
}

func (c *Client) Delete(ctx context.Context, publicID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/media/"+publicID, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete failed with status: %d", resp.StatusCode)
	}
	return nil
}
