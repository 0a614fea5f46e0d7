package enrollment

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	ErrNoDeliveries = errors.New("order has no deliveries")
	ErrNoDevices    = errors.New("delivery has no devices")
)

// Validate checks the field contracts of the enrollment service on the client side.
// Deliveries and devices are only required for orders that are not voids.
// Nothing in this package or in the API client calls Validate implicitly.
func (o Order) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("order %q: %w", o.OrderNumber, err)
	}

	if o.IsVoid() {
		return nil
	}

	if len(o.Deliveries) == 0 {
		return fmt.Errorf("order %q: %w", o.OrderNumber, ErrNoDeliveries)
	}

	for _, delivery := range o.Deliveries {
		if len(delivery.Devices) == 0 {
			return fmt.Errorf("order %q, delivery %q: %w", o.OrderNumber, delivery.DeliveryNumber, ErrNoDevices)
		}
	}

	return nil
}

// ValidateOrders validates every order and joins the errors.
func ValidateOrders(orders []Order) error {
	var err error
	for _, order := range orders {
		err = errors.Join(err, order.Validate())
	}
	return err
}
