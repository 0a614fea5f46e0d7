package enrollment

import (
	"encoding/json"
	"fmt"
	"time"
)

type DeviceWire struct {
	DeviceID string  `json:"deviceId"`
	AssetTag *string `json:"assetTag"`
}

type DeliveryWire struct {
	DeliveryNumber string       `json:"deliveryNumber"`
	ShipDate       string       `json:"shipDate"`
	Devices        []DeviceWire `json:"devices"`
}

type OrderWire struct {
	OrderNumber string         `json:"orderNumber"`
	OrderDate   string         `json:"orderDate"`
	OrderType   OrderType      `json:"orderType"`
	CustomerID  string         `json:"customerId"`
	PONumber    *string        `json:"poNumber"`
	Deliveries  []DeliveryWire `json:"deliveries"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeFormat, s)
	if err == nil {
		return t, nil
	}

	t, rfcErr := time.Parse(time.RFC3339, s)
	if rfcErr != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (d Device) ToWire() DeviceWire {
	return DeviceWire{
		DeviceID: d.DeviceID,
		AssetTag: optional(d.AssetTag),
	}
}

func (d Delivery) ToWire() DeliveryWire {
	var devices []DeviceWire
	if d.Devices != nil {
		devices = make([]DeviceWire, len(d.Devices))
		for i, device := range d.Devices {
			devices[i] = device.ToWire()
		}
	}

	return DeliveryWire{
		DeliveryNumber: d.DeliveryNumber,
		ShipDate:       formatTime(d.ShipDate),
		Devices:        devices,
	}
}

func (o Order) ToWire() OrderWire {
	var deliveries []DeliveryWire
	if o.Deliveries != nil {
		deliveries = make([]DeliveryWire, len(o.Deliveries))
		for i, delivery := range o.Deliveries {
			deliveries[i] = delivery.ToWire()
		}
	}

	return OrderWire{
		OrderNumber: o.OrderNumber,
		OrderDate:   formatTime(o.OrderDate),
		OrderType:   o.OrderType,
		CustomerID:  o.CustomerDepID,
		PONumber:    optional(o.PONumber),
		Deliveries:  deliveries,
	}
}

func (d Device) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToWire())
}

func (d *Device) UnmarshalJSON(b []byte) error {
	var w DeviceWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	d.DeviceID = w.DeviceID
	d.AssetTag = ""
	if w.AssetTag != nil {
		d.AssetTag = *w.AssetTag
	}
	return nil
}

func (d Delivery) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToWire())
}

func (d *Delivery) UnmarshalJSON(b []byte) error {
	var w struct {
		DeliveryNumber string   `json:"deliveryNumber"`
		ShipDate       string   `json:"shipDate"`
		Devices        []Device `json:"devices"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	shipDate, err := parseTime(w.ShipDate)
	if err != nil {
		return fmt.Errorf("delivery %q: parse shipDate: %w", w.DeliveryNumber, err)
	}

	d.DeliveryNumber = w.DeliveryNumber
	d.ShipDate = shipDate
	d.Devices = w.Devices
	return nil
}

func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.ToWire())
}

func (o *Order) UnmarshalJSON(b []byte) error {
	var w struct {
		OrderNumber string     `json:"orderNumber"`
		OrderDate   string     `json:"orderDate"`
		OrderType   string     `json:"orderType"`
		CustomerID  string     `json:"customerId"`
		PONumber    *string    `json:"poNumber"`
		Deliveries  []Delivery `json:"deliveries"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	orderDate, err := parseTime(w.OrderDate)
	if err != nil {
		return fmt.Errorf("order %q: parse orderDate: %w", w.OrderNumber, err)
	}

	orderType, err := ParseOrderType(w.OrderType)
	if err != nil {
		return fmt.Errorf("order %q: %w", w.OrderNumber, err)
	}

	o.OrderNumber = w.OrderNumber
	o.OrderDate = orderDate
	o.OrderType = orderType
	o.CustomerDepID = w.CustomerID
	o.PONumber = ""
	if w.PONumber != nil {
		o.PONumber = *w.PONumber
	}
	o.Deliveries = w.Deliveries
	return nil
}
