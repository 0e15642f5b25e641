package keitaro_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro"
	keitarodomain "github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro/domain"
	"github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro/mocks"
	"github.com/vfg2006/keitaro-sync/internal/config"
	"github.com/vfg2006/keitaro-sync/internal/domain"
	"go.uber.org/mock/gomock"
)

func testConfig(mode domain.SyncMode, pageLimit int) *config.Config {
	cfg := &config.Config{}
	cfg.Keitaro.PageLimit = pageLimit
	cfg.Keitaro.MaxPages = 3
	cfg.Keitaro.ReportTimeoutSeconds = 5
	cfg.Keitaro.LookupTimeoutSeconds = 5
	cfg.KeitaroSync.Mode = mode
	return cfg
}

func testWindow() domain.ReportWindow {
	return domain.NewLookbackWindow(time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC), 7, time.UTC)
}

func rows(n int) []keitarodomain.Row {
	out := make([]keitarodomain.Row, n)
	for i := range out {
		out[i] = keitarodomain.Row{"day": "2026-01-01"}
	}
	return out
}

func TestFetchWindow_BuildsDailyRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	service := keitaro.New(testConfig(domain.SyncModeDaily, 1000), client)

	client.EXPECT().
		BuildReport(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req keitarodomain.ReportRequest) (*keitarodomain.ReportResponse, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline, "toda chamada deve ter timeout")

			assert.Equal(t, "2026-01-13", req.Range.From)
			assert.Equal(t, "2026-01-20", req.Range.To)
			assert.Equal(t, "UTC", req.Range.Timezone)
			assert.Equal(t, []string{"clicks", "conversions", "leads", "sales", "revenue", "cost"}, req.Metrics)
			assert.Equal(t, []string{"day"}, req.Grouping)
			assert.Equal(t, []keitarodomain.Filter{{Name: "campaign_id", Operator: "EQUALS", Expression: "12"}}, req.Filters)
			assert.Equal(t, 1000, req.Limit)
			assert.Equal(t, 0, req.Offset)

			return &keitarodomain.ReportResponse{Rows: rows(2), Total: 2}, nil
		})

	result := service.FetchWindow(context.Background(), 12, testWindow())

	assert.Equal(t, keitaro.FetchOK, result.Status)
	assert.Len(t, result.Rows, 2)
	assert.NoError(t, result.Err)
	assert.Equal(t, 1, result.Pages)
}

func TestFetchWindow_EventsGrouping(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	service := keitaro.New(testConfig(domain.SyncModeEvents, 1000), client)

	client.EXPECT().
		BuildReport(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req keitarodomain.ReportRequest) (*keitarodomain.ReportResponse, error) {
			assert.Equal(t, []string{"datetime", "sub_id", "country"}, req.Grouping)
			return &keitarodomain.ReportResponse{Rows: []keitarodomain.Row{}}, nil
		})

	result := service.FetchWindow(context.Background(), 12, testWindow())
	assert.Equal(t, keitaro.FetchEmpty, result.Status)
}

func TestFetchWindow_EmptyReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	service := keitaro.New(testConfig(domain.SyncModeDaily, 1000), client)

	client.EXPECT().
		BuildReport(gomock.Any(), gomock.Any()).
		Return(&keitarodomain.ReportResponse{Rows: []keitarodomain.Row{}, Total: 0}, nil)

	result := service.FetchWindow(context.Background(), 12, testWindow())

	assert.Equal(t, keitaro.FetchEmpty, result.Status)
	assert.Empty(t, result.Rows)
	assert.NoError(t, result.Err)
}

func TestFetchWindow_FailureIsReportedNotPropagated(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	service := keitaro.New(testConfig(domain.SyncModeDaily, 1000), client)

	apiErr := &keitarodomain.APIError{StatusCode: 502, Endpoint: "/admin_api/v1/report/build"}
	client.EXPECT().BuildReport(gomock.Any(), gomock.Any()).Return(nil, apiErr)

	result := service.FetchWindow(context.Background(), 12, testWindow())

	assert.Equal(t, keitaro.FetchFailed, result.Status)
	assert.Empty(t, result.Rows)
	assert.True(t, errors.Is(result.Err, apiErr))
}

func TestFetchWindow_Paginates(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	service := keitaro.New(testConfig(domain.SyncModeDaily, 2), client)

	pages := map[int]int{0: 2, 2: 2, 4: 1}
	client.EXPECT().
		BuildReport(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req keitarodomain.ReportRequest) (*keitarodomain.ReportResponse, error) {
			n, ok := pages[req.Offset]
			require.True(t, ok, "offset inesperado %d", req.Offset)
			return &keitarodomain.ReportResponse{Rows: rows(n), Total: 5}, nil
		}).
		Times(3)

	result := service.FetchWindow(context.Background(), 12, testWindow())

	assert.Equal(t, keitaro.FetchOK, result.Status)
	assert.Len(t, result.Rows, 5)
	assert.Equal(t, 3, result.Pages)
}

func TestFetchWindow_FailureOnLaterPageFailsWholeFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	service := keitaro.New(testConfig(domain.SyncModeDaily, 2), client)

	gomock.InOrder(
		client.EXPECT().BuildReport(gomock.Any(), gomock.Any()).
			Return(&keitarodomain.ReportResponse{Rows: rows(2), Total: 4}, nil),
		client.EXPECT().BuildReport(gomock.Any(), gomock.Any()).
			Return(nil, context.DeadlineExceeded),
	)

	result := service.FetchWindow(context.Background(), 12, testWindow())

	assert.Equal(t, keitaro.FetchFailed, result.Status)
	assert.Empty(t, result.Rows)
	assert.True(t, errors.Is(result.Err, context.DeadlineExceeded))
}

func TestFetchWindow_StopsAtPageCap(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	service := keitaro.New(testConfig(domain.SyncModeDaily, 2), client)

	client.EXPECT().BuildReport(gomock.Any(), gomock.Any()).
		Return(&keitarodomain.ReportResponse{Rows: rows(2), Total: 100}, nil).
		Times(3)

	result := service.FetchWindow(context.Background(), 12, testWindow())

	assert.Equal(t, keitaro.FetchOK, result.Status)
	assert.Len(t, result.Rows, 6)
}

func TestResolveName(t *testing.T) {
	tests := []struct {
		name     string
		campaign *keitarodomain.Campaign
		err      error
		expected string
	}{
		{name: "nome encontrado", campaign: &keitarodomain.Campaign{ID: 12, Name: " Topacio "}, expected: "Topacio"},
		{name: "erro na API", err: errors.New("connection refused"), expected: "Campaign 12"},
		{name: "nome vazio", campaign: &keitarodomain.Campaign{ID: 12}, expected: "Campaign 12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mocks.NewMockClient(ctrl)
			service := keitaro.New(testConfig(domain.SyncModeDaily, 1000), client)

			client.EXPECT().GetCampaign(gomock.Any(), int64(12)).Return(tt.campaign, tt.err)

			assert.Equal(t, tt.expected, service.ResolveName(context.Background(), 12))
		})
	}
}

func TestPlaceholderName(t *testing.T) {
	require.Equal(t, "Campaign 7", keitaro.PlaceholderName(7))
}
