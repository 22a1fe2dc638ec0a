package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPProvider implements Provider against the contract every embedding
// provider in this system speaks: POST {model, input} to BaseURL,
// Authorization: Bearer <APIKey>, and read back {data: [{embedding}, ...]}
// in input order.
type HTTPProvider struct {
	BaseURL    string
	APIKey     string
	ModelName  string
	Dims       int
	HTTPClient *http.Client
	Retry      RetryConfig
}

// NewHTTPProvider builds an HTTPProvider with a 30s client timeout and
// DefaultRetryConfig.
func NewHTTPProvider(baseURL, apiKey, model string, dimensions int) *HTTPProvider {
	return &HTTPProvider{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		ModelName:  model,
		Dims:       dimensions,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Retry:      DefaultRetryConfig(),
	}
}

func (p *HTTPProvider) Model() string   { return p.ModelName }
func (p *HTTPProvider) Dimensions() int { return p.Dims }

// Embed sends one batch request, retrying on transient failure with
// exponential backoff.
func (p *HTTPProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return retryWithBackoff(ctx, p.Retry, func() ([][]float32, error) {
		return p.callOnce(ctx, texts)
	})
}

func (p *HTTPProvider) callOnce(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(map[string]any{
		"model": p.ModelName,
		"input": texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &statusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var decoded struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}

	vectors := make([][]float32, len(decoded.Data))
	for i, d := range decoded.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
