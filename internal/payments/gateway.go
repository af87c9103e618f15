package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"ticketly/internal/shared/apperrors"
	"ticketly/internal/shared/config"
	"ticketly/pkg/logger"
)

// Gateway talks to the external payment provider. It also satisfies
// bookings.PaymentGateway through CreatePayment.
type Gateway interface {
	CreatePayment(ctx context.Context, orderID string, amount decimal.Decimal) (string, error)
	CheckPaymentStatus(ctx context.Context, paymentID, orderID string) (*PaymentCheckResponse, error)
	ConfirmPayment(ctx context.Context, paymentID string, amount int64) (*PaymentConfirmResponse, error)
	CancelPayment(ctx context.Context, paymentID, reason string) (*PaymentCancelResponse, error)
}

type gateway struct {
	httpClient *http.Client
	cfg        config.PaymentConfig
	serviceURL string
	logger     *logger.Logger
}

func NewGateway(cfg config.PaymentConfig, serviceURL string, log *logger.Logger) Gateway {
	return &gateway{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		serviceURL: serviceURL,
		logger:     log,
	}
}

// CreatePayment registers the order with the gateway and returns the URL the
// user is redirected to. The amount is converted to the currency's minor
// units before it goes on the wire.
func (g *gateway) CreatePayment(ctx context.Context, orderID string, amount decimal.Decimal) (string, error) {
	amountMinor := amount.Mul(decimal.NewFromInt(100)).IntPart()

	request := &PaymentInitRequest{
		TeamSlug:        g.cfg.TeamSlug,
		Amount:          amountMinor,
		OrderID:         orderID,
		Currency:        g.cfg.Currency,
		Description:     fmt.Sprintf("Booking payment #%s", orderID),
		Language:        "ru",
		PaymentExpiry:   g.cfg.RequestExpiry,
		SuccessURL:      fmt.Sprintf("%s/payments/success?orderId=%s", g.serviceURL, orderID),
		FailURL:         fmt.Sprintf("%s/payments/fail?orderId=%s", g.serviceURL, orderID),
		NotificationURL: fmt.Sprintf("%s/payments/notifications", g.serviceURL),
	}
	request.Token = SignFields(map[string]string{
		"amount":   strconv.FormatInt(request.Amount, 10),
		"currency": request.Currency,
		"orderId":  request.OrderID,
		"teamSlug": request.TeamSlug,
	}, g.cfg.Password)

	var response PaymentInitResponse
	if err := g.post(ctx, "/PaymentInit/init", request, &response); err != nil {
		return "", err
	}
	if response.PaymentURL == "" {
		return "", fmt.Errorf("gateway returned no payment URL for order %s: %w", orderID, apperrors.ErrGateway)
	}
	return response.PaymentURL, nil
}

// CheckPaymentStatus queries the payment by paymentID when known, falling
// back to the orderID.
func (g *gateway) CheckPaymentStatus(ctx context.Context, paymentID, orderID string) (*PaymentCheckResponse, error) {
	request := &PaymentCheckRequest{TeamSlug: g.cfg.TeamSlug}

	params := map[string]string{"teamSlug": request.TeamSlug}
	if paymentID != "" {
		request.PaymentID = paymentID
		params["paymentId"] = paymentID
	} else if orderID != "" {
		request.OrderID = orderID
		params["orderId"] = orderID
	}
	request.Token = SignFields(params, g.cfg.Password)

	var response PaymentCheckResponse
	if err := g.post(ctx, "/PaymentCheck/check", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (g *gateway) ConfirmPayment(ctx context.Context, paymentID string, amount int64) (*PaymentConfirmResponse, error) {
	request := &PaymentConfirmRequest{
		TeamSlug:  g.cfg.TeamSlug,
		PaymentID: paymentID,
		Amount:    amount,
	}
	request.Token = SignFields(map[string]string{
		"amount":    strconv.FormatInt(amount, 10),
		"paymentId": paymentID,
		"teamSlug":  request.TeamSlug,
	}, g.cfg.Password)

	var response PaymentConfirmResponse
	if err := g.post(ctx, "/PaymentConfirm/confirm", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (g *gateway) CancelPayment(ctx context.Context, paymentID, reason string) (*PaymentCancelResponse, error) {
	request := &PaymentCancelRequest{
		TeamSlug:  g.cfg.TeamSlug,
		PaymentID: paymentID,
		Reason:    reason,
	}
	request.Token = SignFields(map[string]string{
		"paymentId": paymentID,
		"teamSlug":  request.TeamSlug,
	}, g.cfg.Password)

	var response PaymentCancelResponse
	if err := g.post(ctx, "/PaymentCancel/cancel", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (g *gateway) post(ctx context.Context, path string, request, response interface{}) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := g.cfg.GatewayURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request to %s failed: %v: %w", path, err, apperrors.ErrGateway)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d for %s: %w", resp.StatusCode, path, apperrors.ErrGateway)
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
