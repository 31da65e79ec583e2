package repositories

import "context"

// BillingProvider abstracts the external payment processor. The deletion
// workflow only ever removes customers; purchases arrive as events.
type BillingProvider interface {
	// DeleteCustomer removes the customer record at the provider.
	// A customer that is already gone is not an error.
	DeleteCustomer(ctx context.Context, customerID string) error
}
