package payments

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/xendit/xendit-go/v6"
	"github.com/xendit/xendit-go/v6/invoice"

	"github.com/famhubid/famhub/internal/models"
)

// XenditGateway creates payment invoices through the Xendit SDK and
// authenticates callbacks with the account's shared webhook token.
type XenditGateway struct {
	client        *xendit.APIClient
	callbackToken string
}

func NewXenditGateway(client *xendit.APIClient, callbackToken string) *XenditGateway {
	return &XenditGateway{
		client:        client,
		callbackToken: callbackToken,
	}
}

func (g *XenditGateway) Name() string {
	return "xendit"
}

func (g *XenditGateway) CreateCheckout(ctx context.Context, txn *models.PaymentTransaction, customer Customer) (*CheckoutSession, error) {
	req := *invoice.NewCreateInvoiceRequest(txn.ID.String(), float64(txn.FinalAmount))
	req.SetCurrency(txn.Currency)
	req.SetDescription(fmt.Sprintf("%s plan (%s)", txn.Tier, txn.BillingPeriod))
	req.SetPayerEmail(customer.Email)

	inv, _, xerr := g.client.InvoiceApi.CreateInvoice(ctx).
		CreateInvoiceRequest(req).
		Execute()
	if xerr != nil {
		return nil, fmt.Errorf("%w: %s", ErrGatewayUnavailable, xerr.Error())
	}

	raw, err := json.Marshal(inv)
	if err != nil {
		raw = nil
	}

	return &CheckoutSession{
		Reference:   inv.GetId(),
		RedirectURL: inv.GetInvoiceUrl(),
		RawResponse: raw,
	}, nil
}

// VerifyWebhook compares the x-callback-token header against the account's
// webhook verification token. Xendit sends a shared token instead of a
// payload digest; the comparison is still constant-time.
func (g *XenditGateway) VerifyWebhook(body []byte, header http.Header) bool {
	token := header.Get("x-callback-token")
	if token == "" || g.callbackToken == "" {
		return false
	}
	return hmac.Equal([]byte(token), []byte(g.callbackToken))
}

type xenditCallback struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

func (g *XenditGateway) ParseWebhookEvent(body []byte) (*NormalizedEvent, error) {
	var cb xenditCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, err
	}

	outcome := OutcomeUnknown
	switch cb.Status {
	case "PAID", "SETTLED":
		outcome = OutcomeCompleted
	case "EXPIRED":
		outcome = OutcomeFailed
	case "PENDING":
		outcome = OutcomePending
	}

	return &NormalizedEvent{
		ExternalReference: cb.ExternalID,
		Outcome:           outcome,
		Raw:               json.RawMessage(body),
	}, nil
}
