package payments

import "time"

// Requests and responses for the external payment gateway. Field names and
// casing follow the gateway's wire format.

type PaymentInitRequest struct {
	TeamSlug        string `json:"teamSlug"`
	Token           string `json:"token"`
	Amount          int64  `json:"amount"`
	OrderID         string `json:"orderId"`
	Currency        string `json:"currency"`
	Description     string `json:"description"`
	SuccessURL      string `json:"successURL"`
	FailURL         string `json:"failURL"`
	NotificationURL string `json:"notificationURL"`
	PaymentExpiry   int    `json:"paymentExpiry"`
	Email           string `json:"email"`
	Language        string `json:"language"`
}

type PaymentInitResponse struct {
	Success    *bool  `json:"success"`
	PaymentID  string `json:"paymentId"`
	OrderID    string `json:"orderId"`
	Status     string `json:"status"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	PaymentURL string `json:"paymentURL"`
	ExpiresAt  string `json:"expiresAt"`
	CreatedAt  string `json:"createdAt"`
}

type PaymentCheckRequest struct {
	TeamSlug  string `json:"teamSlug"`
	Token     string `json:"token"`
	PaymentID string `json:"paymentId,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
}

type PaymentCheckResponse struct {
	Success   *bool  `json:"success"`
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type PaymentConfirmRequest struct {
	TeamSlug  string `json:"teamSlug"`
	Token     string `json:"token"`
	PaymentID string `json:"paymentId"`
	Amount    int64  `json:"amount"`
}

type PaymentConfirmResponse struct {
	Success   *bool  `json:"success"`
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

type PaymentCancelRequest struct {
	TeamSlug  string `json:"teamSlug"`
	Token     string `json:"token"`
	PaymentID string `json:"paymentId"`
	Reason    string `json:"reason"`
}

type PaymentCancelResponse struct {
	Success   *bool  `json:"success"`
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// NotificationPayload is what the gateway POSTs to the notification URL when
// a payment changes state.
type NotificationPayload struct {
	PaymentID string                 `json:"paymentId"`
	Status    string                 `json:"status"`
	TeamSlug  string                 `json:"teamSlug"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}
