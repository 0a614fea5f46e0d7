package depapi

import (
	"context"

	"github.com/Simply-Mac/go-dep/internal/config"
	"github.com/Simply-Mac/go-dep/internal/enrollment"
)

type BulkEnrollRequest struct {
	RequestContext config.RequestContext `json:"requestContext"`
	TransactionID  string                `json:"transactionId"`
	ResellerID     string                `json:"depResellerID"`
	Orders         []enrollment.Order    `json:"orders"`
}

type CheckTransactionRequest struct {
	RequestContext config.RequestContext `json:"requestContext"`
	ResellerID     string                `json:"depResellerId"`
	TransactionID  string                `json:"deviceEnrollmentTransactionId"`
}

type ShowOrderRequest struct {
	RequestContext config.RequestContext `json:"requestContext"`
	ResellerID     string                `json:"depResellerId"`
	OrderNumbers   []string              `json:"orderNumbers"`
}

// BulkEnrollDevices posts orders for enrollment. The service validates the request and returns a
// deviceEnrollmentTransactionId to be used with CheckTransactionStatus, as processing is asynchronous.
// The service accepts up to 1000 orders per transaction.
func (c *client) BulkEnrollDevices(ctx context.Context, transactionID string, orders []enrollment.Order, opts ...CallOption) (*Result, error) {
	return c.invoke(ctx, OperationBulkEnrollDevices, func(env config.Environment) any {
		return &BulkEnrollRequest{
			RequestContext: env.RequestContext,
			TransactionID:  transactionID,
			ResellerID:     env.ResellerID,
			Orders:         orders,
		}
	}, opts)
}

// CheckTransactionStatus looks up the state of a transaction posted with BulkEnrollDevices.
func (c *client) CheckTransactionStatus(ctx context.Context, transactionID string, opts ...CallOption) (*Result, error) {
	return c.invoke(ctx, OperationCheckTransactionStatus, func(env config.Environment) any {
		return &CheckTransactionRequest{
			RequestContext: env.RequestContext,
			ResellerID:     env.ResellerID,
			TransactionID:  transactionID,
		}
	}, opts)
}

// ShowOrderDetails returns the latest enrollment state of previously submitted orders.
func (c *client) ShowOrderDetails(ctx context.Context, orderNumbers []string, opts ...CallOption) (*Result, error) {
	return c.invoke(ctx, OperationShowOrderDetails, func(env config.Environment) any {
		return &ShowOrderRequest{
			RequestContext: env.RequestContext,
			ResellerID:     env.ResellerID,
			OrderNumbers:   orderNumbers,
		}
	}, opts)
}
