// AngelaMos | 2026
// store.go

package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/angelamos/learnify/internal/config"
	"github.com/angelamos/learnify/internal/core"
)

// Asset is what the media host returns for an uploaded file. Duration
// is populated for video uploads only.
type Asset struct {
	URL      string
	PublicID string
	Duration int
}

// Store is the media-hosting collaborator: upload a local file, delete
// by public ID. Implementations live behind this interface; the rest of
// the codebase never talks to the hosting provider directly.
type Store interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}

type HTTPStore struct {
	client    *http.Client
	uploadURL string
	apiKey    string
	apiSecret string
}

func NewHTTPStore(cfg config.MediaConfig) *HTTPStore {
	return &HTTPStore{
		client:    &http.Client{Timeout: cfg.UploadTimeout},
		uploadURL: cfg.UploadURL,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
	}
}

type uploadResponse struct {
	SecureURL string  `json:"secure_url"`
	PublicID  string  `json:"public_id"`
	Duration  float64 `json:"duration"`
}

func (s *HTTPStore) Upload(
	ctx context.Context,
	filename string,
	r io.Reader,
) (*Asset, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}

	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}

	if err := writer.WriteField("api_key", s.apiKey); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.uploadURL,
		&body,
	)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(s.apiKey, s.apiSecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, core.ExternalServiceError("media upload", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode != http.StatusOK {
		return nil, core.ExternalServiceError(
			"media upload",
			fmt.Errorf("unexpected status %d", resp.StatusCode),
		)
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	return &Asset{
		URL:      uploaded.SecureURL,
		PublicID: uploaded.PublicID,
		Duration: int(uploaded.Duration),
	}, nil
}

func (s *HTTPStore) Delete(ctx context.Context, publicID string) error {
	deleteURL := fmt.Sprintf(
		"%s/%s",
		s.uploadURL,
		url.PathEscape(publicID),
	)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodDelete,
		deleteURL,
		nil,
	)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	req.SetBasicAuth(s.apiKey, s.apiSecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return core.ExternalServiceError("media delete", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusNoContent {
		return core.ExternalServiceError(
			"media delete",
			fmt.Errorf("unexpected status %d", resp.StatusCode),
		)
	}

	return nil
}

var _ Store = (*HTTPStore)(nil)
