package payments

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/famhubid/famhub/internal/models"
)

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomePending   Outcome = "pending"
	OutcomeUnknown   Outcome = "unknown"
)

// CheckoutSession is the provider-side session created for one transaction.
type CheckoutSession struct {
	Reference    string
	RedirectURL  string
	ClientKey    string
	IsProduction bool
	RawResponse  []byte
}

type Customer struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
}

// NormalizedEvent is a provider webhook reduced to what the ledger needs:
// which transaction, and which way it went.
type NormalizedEvent struct {
	ExternalReference string
	Outcome           Outcome
	Raw               json.RawMessage
}

// Gateway is the contract both payment providers implement. Webhook
// verification is separate from parsing so rejection happens before any
// payload interpretation.
type Gateway interface {
	Name() string
	CreateCheckout(ctx context.Context, txn *models.PaymentTransaction, customer Customer) (*CheckoutSession, error)
	VerifyWebhook(body []byte, header http.Header) bool
	ParseWebhookEvent(body []byte) (*NormalizedEvent, error)
}

// Registry selects a gateway by the payment method stored on a transaction.
type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway)}
	for _, gw := range gateways {
		r.gateways[gw.Name()] = gw
	}
	return r
}

func (r *Registry) Get(name string) (Gateway, error) {
	gw, ok := r.gateways[name]
	if !ok {
		return nil, ErrUnknownGateway
	}
	return gw, nil
}
