package keitaroclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	keitarodomain "github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro/domain"
	"github.com/vfg2006/keitaro-sync/internal/config"
)

func newTestClient(serverURL string) Client {
	cfg := &config.Config{}
	cfg.Keitaro.URL = serverURL
	cfg.Keitaro.APIKey = "test-key"
	cfg.Keitaro.ReportTimeoutSeconds = 5
	cfg.Keitaro.LookupTimeoutSeconds = 5
	return NewClient(cfg)
}

func TestBuildReport_SendsAuthenticatedRequest(t *testing.T) {
	var received keitarodomain.ReportRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin_api/v1/report/build", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rows":[{"day":"2026-01-01","clicks":10,"conversions":"2"}],"total":1}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.BuildReport(context.Background(), keitarodomain.ReportRequest{
		Range:    keitarodomain.Range{From: "2026-01-01", To: "2026-01-02", Timezone: "UTC"},
		Metrics:  []string{"clicks", "conversions"},
		Grouping: []string{"day"},
		Filters: []keitarodomain.Filter{
			{Name: keitarodomain.FilterCampaign, Operator: keitarodomain.OperatorEquals, Expression: "7"},
		},
		Limit: 1000,
	})
	require.NoError(t, err)

	require.Len(t, resp.Rows, 1)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "2026-01-01", resp.Rows[0]["day"])
	assert.Equal(t, float64(10), resp.Rows[0]["clicks"])

	assert.Equal(t, "2026-01-01", received.Range.From)
	assert.Equal(t, "UTC", received.Range.Timezone)
	assert.Equal(t, "7", received.Filters[0].Expression)
	assert.Equal(t, 1000, received.Limit)
}

func TestBuildReport_EmptyRowsNeverNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":0}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).BuildReport(context.Background(), keitarodomain.ReportRequest{})
	require.NoError(t, err)
	assert.NotNil(t, resp.Rows)
	assert.Empty(t, resp.Rows)
}

func TestBuildReport_Non2xxReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).BuildReport(context.Background(), keitarodomain.ReportRequest{})
	require.Error(t, err)

	var apiErr *keitarodomain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Contains(t, apiErr.Error(), "Unauthorized")
}

func TestBuildReport_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).BuildReport(context.Background(), keitarodomain.ReportRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decodificar")
}

func TestGetCampaign(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/admin_api/v1/campaigns/12", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Api-Key"))
		_, _ = w.Write([]byte(`{"id":12,"name":"Topacio","state":"active"}`))
	}))
	defer server.Close()

	campaign, err := newTestClient(server.URL).GetCampaign(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), campaign.ID)
	assert.Equal(t, "Topacio", campaign.Name)
}

func TestBuildReport_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL).BuildReport(ctx, keitarodomain.ReportRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
