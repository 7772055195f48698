package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/Sahiqur/eshop/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// InitiationResult is what the orchestrator sees; transport failures are folded
// into StatusFailed, never surfaced as errors.
type InitiationResult struct {
	Status         Status
	GatewayPageURL string
	SessionKey     string
	Reason         string
}

type Initiator interface {
	Initiate(ctx context.Context, order *models.Order, session *models.PaymentSession) InitiationResult
}

type Config struct {
	StoreID       string
	StorePassword string
	APIURL        string
	Currency      string
	// Base URL the gateway redirects the customer back to
	CallbackBaseURL string
}

// SSLCommerzClient creates hosted-payment-page sessions against the SSLCommerz
// session API.
type SSLCommerzClient struct {
	cfg    Config
	http   *resty.Client
	logger *zap.Logger
}

type sessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

func NewSSLCommerzClient(cfg Config, logger *zap.Logger) *SSLCommerzClient {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")
	return &SSLCommerzClient{cfg: cfg, http: client, logger: logger}
}

func (c *SSLCommerzClient) Initiate(ctx context.Context, order *models.Order, session *models.PaymentSession) InitiationResult {
	form := map[string]string{
		"store_id":     c.cfg.StoreID,
		"store_passwd": c.cfg.StorePassword,
		"total_amount": fmt.Sprintf("%.2f", order.TotalCost()),
		"currency":     c.cfg.Currency,
		"tran_id":      session.Token,
		"success_url":  c.cfg.CallbackBaseURL + "/payment/success/" + session.Token,
		"fail_url":     c.cfg.CallbackBaseURL + "/payment/fail/" + session.Token,
		"cancel_url":   c.cfg.CallbackBaseURL + "/payment/cancel/" + session.Token,

		"cus_name":     order.FirstName + " " + order.LastName,
		"cus_email":    order.Email,
		"cus_phone":    order.Phone,
		"cus_add1":     order.Address,
		"cus_city":     order.City,
		"cus_postcode": order.PostalCode,
		"cus_country":  "Bangladesh",

		"shipping_method": "Courier",
		"ship_name":       order.FirstName + " " + order.LastName,
		"ship_add1":       order.Address,
		"ship_city":       order.City,
		"ship_postcode":   order.PostalCode,
		"ship_country":    "Bangladesh",

		"product_name":     fmt.Sprintf("Order #%d", order.ID),
		"product_category": "general",
		"product_profile":  "general",
	}

	var parsed sessionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&parsed).
		Post(c.cfg.APIURL)
	if err != nil {
		c.logger.Error("gateway unreachable",
			zap.Uint("order_id", order.ID),
			zap.Error(err))
		return InitiationResult{Status: StatusFailed, Reason: "gateway unreachable"}
	}
	if resp.StatusCode() != 200 {
		c.logger.Error("gateway returned non-200",
			zap.Uint("order_id", order.ID),
			zap.Int("status_code", resp.StatusCode()))
		return InitiationResult{Status: StatusFailed, Reason: fmt.Sprintf("gateway HTTP %d", resp.StatusCode())}
	}

	if parsed.Status != string(StatusSuccess) || parsed.GatewayPageURL == "" {
		reason := parsed.FailedReason
		if reason == "" {
			reason = "gateway declined session creation"
		}
		c.logger.Warn("gateway session rejected",
			zap.Uint("order_id", order.ID),
			zap.String("reason", reason))
		return InitiationResult{Status: StatusFailed, Reason: reason}
	}

	return InitiationResult{
		Status:         StatusSuccess,
		GatewayPageURL: parsed.GatewayPageURL,
		SessionKey:     parsed.SessionKey,
	}
}
