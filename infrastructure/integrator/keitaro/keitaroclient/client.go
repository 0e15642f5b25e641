package keitaroclient

//go:generate mockgen -source=client.go -destination=../mocks/mock_client.go -package=mocks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	keitarodomain "github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro/domain"
	"github.com/vfg2006/keitaro-sync/internal/config"
	"github.com/vfg2006/keitaro-sync/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxErrorBody limita o trecho do corpo de erro anexado ao APIError
const maxErrorBody = 512

type Client interface {
	BuildReport(ctx context.Context, request keitarodomain.ReportRequest) (*keitarodomain.ReportResponse, error)
	GetCampaign(ctx context.Context, campaignID int64) (*keitarodomain.Campaign, error)
}

type KeitaroClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(cfg *config.Config) Client {
	timeout := max(cfg.Keitaro.ReportTimeoutSeconds, cfg.Keitaro.LookupTimeoutSeconds)
	if timeout <= 0 {
		timeout = 60
	}

	return &KeitaroClient{
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		baseURL: cfg.Keitaro.URL,
		apiKey:  cfg.Keitaro.APIKey,
	}
}

// do executa a requisição autenticada e decodifica a resposta em out
func (c *KeitaroClient) do(ctx context.Context, method, endpoint string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("erro ao serializar a requisição: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("erro ao criar a requisição: %w", err)
	}

	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.APIRequests.WithLabelValues(endpointLabel(endpoint), "error").Inc()
		return fmt.Errorf("erro ao executar a requisição: %w", err)
	}
	defer resp.Body.Close()

	observability.APIRequests.WithLabelValues(endpointLabel(endpoint), strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &keitarodomain.APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Body:       string(bytes.TrimSpace(excerpt)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("erro ao decodificar a resposta: %w", err)
	}

	return nil
}

// endpointLabel evita uma série por campanha na métrica de requisições
func endpointLabel(endpoint string) string {
	if endpoint == reportBuildPath {
		return "report_build"
	}
	return "campaign"
}
