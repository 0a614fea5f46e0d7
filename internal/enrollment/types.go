package enrollment

import (
	"fmt"
	"strings"
	"time"
)

// TimeFormat is the timestamp layout the enrollment service expects for order and ship dates.
const TimeFormat = "2006-01-02T15:04:05Z"

type OrderType string

const (
	OrderTypeNormal   OrderType = "OR"
	OrderTypeReturn   OrderType = "RE"
	OrderTypeVoid     OrderType = "VD"
	OrderTypeOverride OrderType = "OV"
)

var orderTypeNames = map[string]OrderType{
	"NORMAL":   OrderTypeNormal,
	"RETURN":   OrderTypeReturn,
	"VOID":     OrderTypeVoid,
	"OVERRIDE": OrderTypeOverride,
}

// ParseOrderType accepts either the two letter code or the long name of an order type.
func ParseOrderType(s string) (OrderType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	switch OrderType(upper) {
	case OrderTypeNormal, OrderTypeReturn, OrderTypeVoid, OrderTypeOverride:
		return OrderType(upper), nil
	}

	if t, ok := orderTypeNames[upper]; ok {
		return t, nil
	}

	return "", fmt.Errorf("unknown order type %q", s)
}

func (t OrderType) String() string {
	for name, code := range orderTypeNames {
		if code == t {
			return name
		}
	}
	return string(t)
}

// Device is a single device to be enrolled in the customer's account.
// DeviceID is the upper case serial number, IMEI or MEID (max 20 chars).
// AssetTag is optional (max 128 chars).
type Device struct {
	DeviceID string `validate:"required,max=20"`
	AssetTag string `validate:"max=128"`
}

// Delivery holds shipment information and the devices that were on the physical delivery.
// Devices may be left empty when the owning order is a void.
type Delivery struct {
	DeliveryNumber string    `validate:"required,max=32"`
	ShipDate       time.Time `validate:"required"`
	Devices        []Device  `validate:"dive"`
}

// Order is the unit customers see in their account when assigning devices to MDM servers.
// Deliveries may be left empty for OrderTypeVoid.
type Order struct {
	OrderNumber   string     `validate:"required,max=32"`
	OrderDate     time.Time  `validate:"required"`
	OrderType     OrderType  `validate:"required,oneof=OR RE VD OV"`
	CustomerDepID string     `validate:"required,max=32"`
	PONumber      string     `validate:"max=100"`
	Deliveries    []Delivery `validate:"dive"`
}

func (o Order) IsVoid() bool {
	return o.OrderType == OrderTypeVoid
}
