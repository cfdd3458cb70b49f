package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"anneta.link/configs"
	"anneta.link/configs/configslog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentGatewayError are the gateway-facing failures. None of them are
// retried here; the caller surfaces them.
type PaymentGatewayError string

func (e PaymentGatewayError) Error() string { return string(e) }

const (
	ErrGatewayRequestFailed PaymentGatewayError = "payment gateway request failed"
	ErrGatewayBadResponse   PaymentGatewayError = "payment gateway returned an unusable response"
	ErrTokenInvalid         PaymentGatewayError = "payment token signature is invalid"
	ErrTokenExpired         PaymentGatewayError = "payment token has expired"
	ErrWrongAccountKey      PaymentGatewayError = "payment token carries a foreign account key"
)

// PaymentStatusPaid is the only callback status that finalizes a donation.
const PaymentStatusPaid = "PAID"

// PaymentRedirectRequest describes one payment to initiate.
type PaymentRedirectRequest struct {
	AmountCents     int64
	Reference       string // merchant reference, "donation {id}"
	Email           string
	Name            string
	ReturnURL       string // where the donor's browser lands after payment
	NotificationURL string // server-to-server webhook target
}

// PaymentCallback is the decoded, signature-verified provider callback.
type PaymentCallback struct {
	AccountKey        string
	Status            string
	Reference         string
	CustomerIBAN      string
	PaymentMethodName string
	Raw               map[string]interface{}
}

// IPaymentGateway is the outbound signed-token contract with the provider.
type IPaymentGateway interface {
	RequestRedirect(ctx context.Context, req PaymentRedirectRequest) (string, error)
	DecodeCallback(token string) (*PaymentCallback, error)
}

// PaymentGateway signs each request as an HS256 JWT, POSTs it to the
// provider and expects a redirect URL back. Callbacks are JWTs signed with
// the same shared secret.
type PaymentGateway struct {
	cfg    configs.PaymentConfig
	client *http.Client
	now    func() time.Time
}

func NewPaymentGateway(cfg configs.PaymentConfig) IPaymentGateway {
	return &PaymentGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		now:    time.Now,
	}
}

// RequestRedirect initiates a payment and returns the provider's redirect
// URL. The token is time-boxed by the configured TTL, so an abandoned
// checkout cannot be replayed later.
func (g *PaymentGateway) RequestRedirect(ctx context.Context, req PaymentRedirectRequest) (string, error) {
	now := g.now()
	claims := jwt.MapClaims{
		"account":            g.cfg.AccountKey,
		"amount":             decimal.NewFromInt(req.AmountCents).Div(decimal.NewFromInt(100)).StringFixed(2),
		"currency":           g.cfg.Currency,
		"merchant_reference": req.Reference,
		"customer_url":       req.ReturnURL,
		"notification_url":   req.NotificationURL,
		"email":              req.Email,
		"name":               req.Name,
		"nonce":              uuid.NewString(),
		"iat":                now.Unix(),
		"exp":                now.Add(g.cfg.TokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(g.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayRequestFailed, err)
	}

	body, _ := json.Marshal(map[string]string{"payment_token": token})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayRequestFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		configslog.Log.Error("payment gateway round trip failed",
			zap.String("reference", req.Reference), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGatewayRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		configslog.Log.Error("payment gateway rejected the request",
			zap.String("reference", req.Reference), zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: status %d", ErrGatewayRequestFailed, resp.StatusCode)
	}

	var parsed struct {
		PaymentLink string `json:"payment_link"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || parsed.PaymentLink == "" {
		return "", ErrGatewayBadResponse
	}
	return parsed.PaymentLink, nil
}

// DecodeCallback verifies the callback token's signature and expiry and
// checks the embedded account key against configuration. It does not judge
// the payment status; that is the confirmation handler's call.
func (g *PaymentGateway) DecodeCallback(token string) (*PaymentCallback, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(g.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	cb := &PaymentCallback{
		AccountKey:        stringClaim(claims, "account"),
		Status:            stringClaim(claims, "payment_status"),
		Reference:         stringClaim(claims, "merchant_reference"),
		CustomerIBAN:      stringClaim(claims, "customer_iban"),
		PaymentMethodName: stringClaim(claims, "payment_method_name"),
		Raw:               claims,
	}
	if cb.AccountKey != g.cfg.AccountKey {
		return nil, ErrWrongAccountKey
	}
	return cb, nil
}

// stringClaim reads a claim as string, empty when absent or another type.
// Callback fields like customer_iban are optional in the provider payload.
func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

var _ IPaymentGateway = (*PaymentGateway)(nil)
