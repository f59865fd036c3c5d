package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/bitewise/foodflow/pkg/httpclient"
)

// InventoryClient calls the stock ledger's confirm and cancel endpoints.
// The caller bounds each call with a context deadline.
type InventoryClient struct {
	log     *slog.Logger
	http    *httpclient.Client
	baseURL string
}

func NewInventoryClient(log *slog.Logger, baseURL string) *InventoryClient {
	return &InventoryClient{
		log:     log,
		http:    httpclient.New("payment-inventory-client"),
		baseURL: baseURL,
	}
}

func (c *InventoryClient) Confirm(ctx context.Context, orderID string) error {
	u := fmt.Sprintf("%s/reserve/confirm?orderId=%s", c.baseURL, url.QueryEscape(orderID))
	if err := c.http.PostJSON(ctx, "InventoryConfirm", u, nil, nil); err != nil {
		return fmt.Errorf("inventory confirm: %w", err)
	}
	return nil
}

func (c *InventoryClient) Cancel(ctx context.Context, orderID string) error {
	u := fmt.Sprintf("%s/reserve/cancel?orderId=%s", c.baseURL, url.QueryEscape(orderID))
	if err := c.http.PostJSON(ctx, "InventoryCancel", u, nil, nil); err != nil {
		return fmt.Errorf("inventory cancel: %w", err)
	}
	return nil
}
