package service

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"clinical-intel/internal/metrics"
	"clinical-intel/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const gigaChatOAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"

type LLMService struct {
	client     *gigago.Client
	model      *gigago.GenerativeModel
	config     *config.GigaChatConfig
	logger     *zap.Logger
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func buildSystemInstruction() string {
	return `You are a clinical documentation assistant for a pediatric hospital.
Answer only from the clinical notes you are given. Be concise and factual.
Do not speculate about diagnoses that are not documented.
Never include patient identifiers in your answer.`
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = buildSystemInstruction()
	model.Temperature = 0.2

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gigachat-completions",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("LLM circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	logger.Info("GigaChat client initialized", zap.String("model", cfg.Model))

	return &LLMService{
		client:     client,
		model:      model,
		config:     cfg,
		logger:     logger,
		httpClient: httpClient,
		breaker:    breaker,
	}, nil
}

// Complete sends a single-turn prompt and returns the model's text.
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		resp, err := s.model.Generate(ctx, []gigago.Message{
			{Role: gigago.RoleUser, Content: prompt},
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no response from LLM")
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	})
	metrics.Default().IncExternalCall("gigachat_completions", err == nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	return res.(string), nil
}

// AccessToken returns a cached OAuth token for direct REST calls, refreshing
// it shortly before it expires.
func (s *LLMService) AccessToken(ctx context.Context) (string, error) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()

	if s.accessToken != "" && time.Until(s.tokenExpiry) > time.Minute {
		return s.accessToken, nil
	}

	token, expiry, err := getAccessToken(ctx, s.config, s.httpClient, s.logger)
	if err != nil {
		return "", err
	}
	s.accessToken, s.tokenExpiry = token, expiry
	return token, nil
}

// getAccessToken exchanges the Base64 authorization key for a bearer token.
func getAccessToken(ctx context.Context, cfg *config.GigaChatConfig, httpClient *http.Client, logger *zap.Logger) (string, time.Time, error) {
	rqUID := uuid.New().String()

	formData := url.Values{}
	formData.Set("scope", cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gigaChatOAuthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create OAuth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", rqUID)
	req.Header.Set("Authorization", "Basic "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Error("OAuth request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(bodyBytes)),
			zap.String("rq_uid", rqUID),
		)
		return "", time.Time{}, fmt.Errorf("OAuth failed with status %d", resp.StatusCode)
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   int64  `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("empty access token in OAuth response")
	}

	expiry := time.Now().Add(30 * time.Minute)
	if oauthResp.ExpiresAt > 0 {
		expiry = time.UnixMilli(oauthResp.ExpiresAt)
	}

	logger.Info("Access token obtained", zap.Time("expires_at", expiry))
	return oauthResp.AccessToken, expiry, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
