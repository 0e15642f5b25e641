package keitaroclient

import (
	"context"
	"net/http"

	keitarodomain "github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro/domain"
)

const reportBuildPath = "/admin_api/v1/report/build"

func (c *KeitaroClient) BuildReport(ctx context.Context, request keitarodomain.ReportRequest) (*keitarodomain.ReportResponse, error) {
	var response keitarodomain.ReportResponse
	if err := c.do(ctx, http.MethodPost, reportBuildPath, request, &response); err != nil {
		return nil, err
	}

	if response.Rows == nil {
		response.Rows = []keitarodomain.Row{}
	}

	return &response, nil
}
