package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bitewise/foodflow/internal/order/application"
	"github.com/bitewise/foodflow/internal/order/domain"
	"github.com/bitewise/foodflow/pkg/httpclient"
)

type PaymentClient struct {
	log     *slog.Logger
	http    *httpclient.Client
	baseURL string
}

func NewPaymentClient(log *slog.Logger, baseURL string) *PaymentClient {
	return &PaymentClient{
		log:     log,
		http:    httpclient.New("order-payment-client"),
		baseURL: baseURL,
	}
}

type payReq struct {
	OrderID     string `json:"orderId"`
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	OrderStatus string `json:"orderStatus"`
	OrderValue  int64  `json:"orderValue"`
}

type payResp struct {
	OrderID     string `json:"orderId"`
	Amount      int64  `json:"amount"`
	PaymentType string `json:"paymentType"`
	Status      string `json:"status"`
}

func (c *PaymentClient) Pay(ctx context.Context, o domain.Order) (application.PaymentResult, error) {
	req := payReq{
		OrderID:     o.ID,
		UserID:      o.UserID,
		Email:       o.Email,
		OrderStatus: string(o.Status),
		OrderValue:  o.Value,
	}
	var resp payResp
	if err := c.http.PostJSON(ctx, "PaymentPay", c.baseURL+"/pay", req, &resp); err != nil {
		return application.PaymentResult{}, fmt.Errorf("payment pay: %w", err)
	}
	return application.PaymentResult{
		OrderID: resp.OrderID,
		Amount:  resp.Amount,
		Type:    resp.PaymentType,
		Status:  resp.Status,
	}, nil
}
