package payments

import "errors"

var (
	// ErrTierNotFound means the requested tier does not exist in the catalog.
	ErrTierNotFound = errors.New("tier not found")

	// ErrTransactionNotFound means the order reference matches no transaction.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTransactionConflict means a terminal transaction was asked to move to
	// the opposite terminal state. This is a data-integrity problem, not a
	// retryable condition.
	ErrTransactionConflict = errors.New("transaction already in a conflicting terminal state")

	// ErrGatewayUnavailable wraps a failed call to the payment provider. The
	// provider's raw error text is attached for diagnostics.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrInvalidSignature means a webhook failed authentication. Nothing is
	// processed past this point.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrUnknownGateway means the requested payment method has no registered
	// gateway.
	ErrUnknownGateway = errors.New("unknown payment gateway")
)
