package keitaroclient

import (
	"context"
	"fmt"
	"net/http"

	keitarodomain "github.com/vfg2006/keitaro-sync/infrastructure/integrator/keitaro/domain"
)

func (c *KeitaroClient) GetCampaign(ctx context.Context, campaignID int64) (*keitarodomain.Campaign, error) {
	var campaign keitarodomain.Campaign
	endpoint := fmt.Sprintf("/admin_api/v1/campaigns/%d", campaignID)

	if err := c.do(ctx, http.MethodGet, endpoint, nil, &campaign); err != nil {
		return nil, err
	}

	return &campaign, nil
}
