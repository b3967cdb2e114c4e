package types

// WebhookEventKind tags the variant carried by a WebhookEvent, replacing the
// source's single ad-hoc event dictionary with a fixed field set per kind.
type WebhookEventKind string

const (
	WebhookPaymentSucceeded WebhookEventKind = "payment_succeeded"
	WebhookPaymentFailed    WebhookEventKind = "payment_failed"
	WebhookRefund           WebhookEventKind = "refund"
	WebhookIgnored          WebhookEventKind = "ignored"
)

// WebhookEvent is the normalized, provider-agnostic shape the Payment
// Gateway Adapter hands to the Webhook Reconciler after signature
// verification. Exactly one of the *Kind payload fields is populated,
// selected by Kind.
type WebhookEvent struct {
	Kind            WebhookEventKind
	ProviderEventID string
	Provider        string

	Succeeded *PaymentSucceededEvent
	Failed    *PaymentFailedEvent
	Refund    *RefundEvent
	Ignored   *IgnoredEvent
}

// PaymentSucceededEvent carries everything the Ledger Engine needs to
// credit an account from a confirmed payment.
type PaymentSucceededEvent struct {
	ExternalID      string
	AmountMinor     int64
	Currency        string
	AccountIdentity Identity
}

// PaymentFailedEvent marks a PaymentRecord failed; it has no ledger effect.
type PaymentFailedEvent struct {
	ExternalID string
	Reason     string
}

// RefundEvent is logged only; see the design notes on refund clawback.
type RefundEvent struct {
	ExternalID  string
	AmountMinor int64
}

// IgnoredEvent is any verified event type the Reconciler does not act on.
type IgnoredEvent struct {
	EventType string
}
