package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/famhubid/famhub/internal/models"
)

const (
	midtransSandboxURL    = "https://app.sandbox.midtrans.com/snap/v1/transactions"
	midtransProductionURL = "https://app.midtrans.com/snap/v1/transactions"
)

// MidtransGateway creates Snap checkout sessions and parses Midtrans's
// HTTP notification payloads.
type MidtransGateway struct {
	ServerKey    string
	ClientKey    string
	IsProduction bool
	BaseURL      string
	Client       *http.Client
}

func NewMidtransGateway(serverKey, clientKey string, isProduction bool) *MidtransGateway {
	baseURL := midtransSandboxURL
	if isProduction {
		baseURL = midtransProductionURL
	}
	return &MidtransGateway{
		ServerKey:    serverKey,
		ClientKey:    clientKey,
		IsProduction: isProduction,
		BaseURL:      baseURL,
		Client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *MidtransGateway) Name() string {
	return "midtrans"
}

func (g *MidtransGateway) CreateCheckout(ctx context.Context, txn *models.PaymentTransaction, customer Customer) (*CheckoutSession, error) {
	checkoutBody := map[string]interface{}{
		"transaction_details": map[string]interface{}{
			"order_id":     txn.ID.String(),
			"gross_amount": txn.FinalAmount,
		},
		"item_details": []map[string]interface{}{
			{
				"id":       txn.Tier,
				"name":     fmt.Sprintf("%s plan (%s)", txn.Tier, txn.BillingPeriod),
				"quantity": 1,
				"price":    txn.FinalAmount,
			},
		},
		"customer_details": map[string]interface{}{
			"first_name": customer.Name,
			"email":      customer.Email,
			"phone":      customer.Phone,
		},
	}

	jsonBody, err := json.Marshal(checkoutBody)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.BaseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(g.ServerKey, "")

	resp, err := g.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: %s", ErrGatewayUnavailable, string(body))
	}

	var snapResp struct {
		Token       string `json:"token"`
		RedirectURL string `json:"redirect_url"`
	}
	if err := json.Unmarshal(body, &snapResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	return &CheckoutSession{
		Reference:    snapResp.Token,
		RedirectURL:  snapResp.RedirectURL,
		ClientKey:    g.ClientKey,
		IsProduction: g.IsProduction,
		RawResponse:  body,
	}, nil
}

type midtransNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

// VerifyWebhook checks the notification's signature_key: a sha512 hex digest
// of order_id + status_code + gross_amount + server key. Compared
// constant-time; any mismatch rejects the whole webhook.
func (g *MidtransGateway) VerifyWebhook(body []byte, header http.Header) bool {
	var notif midtransNotification
	if err := json.Unmarshal(body, &notif); err != nil {
		return false
	}
	if notif.SignatureKey == "" {
		return false
	}

	payload := notif.OrderID + notif.StatusCode + notif.GrossAmount + g.ServerKey
	sum := sha512.Sum512([]byte(payload))
	expected := hex.EncodeToString(sum[:])

	return hmac.Equal([]byte(expected), []byte(notif.SignatureKey))
}

func (g *MidtransGateway) ParseWebhookEvent(body []byte) (*NormalizedEvent, error) {
	var notif midtransNotification
	if err := json.Unmarshal(body, &notif); err != nil {
		return nil, err
	}

	outcome := OutcomeUnknown
	switch notif.TransactionStatus {
	case "capture":
		if notif.FraudStatus == "accept" || notif.FraudStatus == "" {
			outcome = OutcomeCompleted
		} else {
			outcome = OutcomePending
		}
	case "settlement":
		outcome = OutcomeCompleted
	case "cancel", "deny", "expire":
		outcome = OutcomeFailed
	case "pending":
		outcome = OutcomePending
	}

	return &NormalizedEvent{
		ExternalReference: notif.OrderID,
		Outcome:           outcome,
		Raw:               json.RawMessage(body),
	}, nil
}
