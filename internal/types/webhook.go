package types

// WebhookEventType is a provider webhook event name we act on
type WebhookEventType string

const (
	// Stripe events
	WebhookEventTypeInvoicePaymentSucceeded WebhookEventType = "invoice.payment_succeeded"
	WebhookEventTypeSubscriptionDeleted     WebhookEventType = "customer.subscription.deleted"
	WebhookEventTypeCheckoutSessionComplete WebhookEventType = "checkout.session.completed"

	// Chapa events
	WebhookEventTypeChapaChargeSuccess WebhookEventType = "charge.success"
)
