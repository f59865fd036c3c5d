package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bitewise/foodflow/internal/order/application"
	"github.com/bitewise/foodflow/internal/order/domain"
	"github.com/bitewise/foodflow/pkg/httpclient"
)

type InventoryClient struct {
	log     *slog.Logger
	http    *httpclient.Client
	baseURL string
}

func NewInventoryClient(log *slog.Logger, baseURL string) *InventoryClient {
	return &InventoryClient{
		log:     log,
		http:    httpclient.New("order-inventory-client"),
		baseURL: baseURL,
	}
}

type menuItemDto struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Stock       int    `json:"stock"`
}

func (c *InventoryClient) Menu(ctx context.Context) ([]application.MenuItem, error) {
	var dtos []menuItemDto
	if err := c.http.GetJSON(ctx, "InventoryMenu", c.baseURL+"/menu", &dtos); err != nil {
		return nil, fmt.Errorf("inventory menu: %w", err)
	}
	items := make([]application.MenuItem, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, application.MenuItem{
			ID: d.ID, Name: d.Name, Price: d.Price, Description: d.Description, Stock: d.Stock,
		})
	}
	return items, nil
}

type reserveItemDto struct {
	FoodID   int64 `json:"foodId"`
	Quantity int   `json:"quantity"`
}

type reserveReq struct {
	OrderID string           `json:"orderId"`
	Items   []reserveItemDto `json:"items"`
}

// Reserve maps the inventory's 409 rejection to ErrStockUnavailable so the
// saga can tell a business refusal apart from a transport failure.
func (c *InventoryClient) Reserve(ctx context.Context, o domain.Order) error {
	req := reserveReq{OrderID: o.ID, Items: make([]reserveItemDto, 0, len(o.Items))}
	for _, item := range o.Items {
		req.Items = append(req.Items, reserveItemDto{FoodID: item.FoodID, Quantity: item.Quantity})
	}

	err := c.http.PostJSON(ctx, "InventoryReserve", c.baseURL+"/reserve", req, nil)
	if err == nil {
		return nil
	}
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusConflict {
		return fmt.Errorf("%w: %s", application.ErrStockUnavailable, statusErr.Body)
	}
	return fmt.Errorf("inventory reserve: %w", err)
}
