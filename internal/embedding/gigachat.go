package embedding

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"clinical-intel/internal/metrics"

	"go.uber.org/zap"
)

const defaultGigaChatBaseURL = "https://gigachat.devices.sberbank.ru/api/v1"

// TokenSource hands out a valid OAuth access token for the GigaChat REST API.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type GigaChatOptions struct {
	BaseURL            string
	Model              string
	Dimensions         int
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// GigaChatEmbedder calls the GigaChat /embeddings endpoint.
type GigaChatEmbedder struct {
	opts       GigaChatOptions
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

func NewGigaChatEmbedder(opts GigaChatOptions, tokens TokenSource, logger *zap.Logger) *GigaChatEmbedder {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultGigaChatBaseURL
	}
	if opts.Model == "" {
		opts.Model = "Embeddings"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	if opts.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
		logger.Warn("Embedding client TLS certificate verification is disabled")
	}

	return &GigaChatEmbedder{opts: opts, tokens: tokens, httpClient: httpClient, logger: logger}
}

func (g *GigaChatEmbedder) Name() string    { return "gigachat-" + g.opts.Model }
func (g *GigaChatEmbedder) Dimensions() int { return g.opts.Dimensions }

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (g *GigaChatEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	token, err := g.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	body, err := json.Marshal(embeddingRequest{Model: g.opts.Model, Input: inputs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.opts.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		metrics.Default().IncExternalCall("gigachat_embeddings", false)
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.Default().IncExternalCall("gigachat_embeddings", false)
		bodyBytes, _ := io.ReadAll(resp.Body)
		g.logger.Error("Embedding request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(bodyBytes)),
		)
		return nil, fmt.Errorf("embedding request failed with status %d", resp.StatusCode)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.Default().IncExternalCall("gigachat_embeddings", false)
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(parsed.Data) != len(inputs) {
		metrics.Default().IncExternalCall("gigachat_embeddings", false)
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(parsed.Data), len(inputs))
	}
	metrics.Default().IncExternalCall("gigachat_embeddings", true)

	sort.Slice(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })
	out := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = d.Embedding
	}
	return out, nil
}
