package depapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	InvalidJSONCode    = "DEP_ERR_0001"
	InvalidJSONMessage = "JSON is invalid - Inspect full response for errors"
)

var errShapeMismatch = errors.New("payload does not match envelope")

// Shape identifies which response envelope a response body was recognised as.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeInvalidJSON
	ShapeEnrollDeviceError
	ShapeCheckTransactionError
	ShapeDevicePostStatus
	ShapeShowOrderError
	ShapeShowOrderStatus
	ShapeError
)

func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeInvalidJSON:
		return "invalidJSON"
	case ShapeEnrollDeviceError:
		return "enrollDeviceErrorResponse"
	case ShapeCheckTransactionError:
		return "checkTransactionErrorResponse"
	case ShapeDevicePostStatus:
		return "devicePostStatusMessage"
	case ShapeShowOrderError:
		return "showOrderErrorResponse"
	case ShapeShowOrderStatus:
		return "showOrderStatusCode"
	case ShapeError:
		return "errorCode"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is an interpreted response body. Codes and Messages are always index aligned,
// and both are empty when no error envelope was recognised.
type Response struct {
	Shape    Shape           `json:"shape"`
	Codes    []string        `json:"codes"`
	Messages []string        `json:"messages"`
	Parsed   json.RawMessage `json:"response,omitempty"`
}

func (r Response) OK() bool {
	return len(r.Codes) == 0
}

func (r Response) Errors() []APIError {
	errs := make([]APIError, len(r.Codes))
	for i := range r.Codes {
		errs[i] = APIError{Code: r.Codes[i], Message: r.Messages[i]}
	}
	return errs
}

// Decode unmarshals the parsed response body into v.
func (r Response) Decode(v any) error {
	if r.Parsed == nil {
		return fmt.Errorf("no parsed response: %s", r.Shape)
	}
	return json.Unmarshal(r.Parsed, v)
}

// text accepts any JSON scalar, the service is not consistent about quoting codes.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch v := v.(type) {
	case nil:
		*t = ""
	case string:
		*t = text(v)
	case float64, bool:
		*t = text(bytes.TrimSpace(b))
	default:
		return fmt.Errorf("%w: expected scalar, got %T", errShapeMismatch, v)
	}
	return nil
}

type errorPair struct {
	Code    text `json:"errorCode"`
	Message text `json:"errorMessage"`
}

func (e errorPair) apiError() APIError {
	return APIError{Code: string(e.Code), Message: string(e.Message)}
}

type devicePostStatus struct {
	Code    text `json:"devicePostStatus"`
	Message text `json:"devicePostStatusMessage"`
}

type showOrderStatus struct {
	Code        text `json:"showOrderStatusCode"`
	OrderNumber text `json:"orderNumber"`
	Message     text `json:"showOrderStatusMessage"`
}

type envelope map[string]json.RawMessage

type matcher struct {
	shape  Shape
	key    string
	decode func(envelope) ([]APIError, error)
}

// matchers are tried in order and the first one that decodes wins.
var matchers = []matcher{
	{ShapeEnrollDeviceError, "enrollDeviceErrorResponse", decodeEnrollDeviceErrors},
	{ShapeCheckTransactionError, "checkTransactionErrorResponse", decodeCheckTransactionError},
	{ShapeDevicePostStatus, "devicePostStatusMessage", decodeDevicePostStatus},
	{ShapeShowOrderError, "showOrderErrorResponse", decodeShowOrderErrors},
	{ShapeShowOrderStatus, "showOrderStatusCode", decodeShowOrderStatus},
	{ShapeError, "errorCode", decodeError},
}

// Interpret recognises the error envelope of a response body and extracts its errors.
// Unless quiet is set, each extracted error is logged. Logging never changes the result.
func Interpret(body []byte, log logrus.FieldLogger, quiet bool) Response {
	resp := interpret(body)

	if !quiet && log != nil {
		logResponse(log, resp)
	}

	return resp
}

func interpret(body []byte) Response {
	if !json.Valid(body) {
		return Response{
			Shape:    ShapeInvalidJSON,
			Codes:    []string{InvalidJSONCode},
			Messages: []string{InvalidJSONMessage},
		}
	}

	parsed := make(json.RawMessage, len(body))
	copy(parsed, body)

	resp := Response{
		Shape:    ShapeNone,
		Codes:    []string{},
		Messages: []string{},
		Parsed:   parsed,
	}

	// Valid JSON that is not an object carries no envelope keys.
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return resp
	}

	for _, m := range matchers {
		if _, ok := env[m.key]; !ok {
			continue
		}

		errs, err := m.decode(env)
		if err != nil {
			continue
		}

		resp.Shape = m.shape
		for _, e := range errs {
			resp.Codes = append(resp.Codes, e.Code)
			resp.Messages = append(resp.Messages, e.Message)
		}
		return resp
	}

	return resp
}

func logResponse(log logrus.FieldLogger, resp Response) {
	switch resp.Shape {
	case ShapeInvalidJSON:
		log.Error("JSON is invalid - inspect full response for errors")
	case ShapeNone:
		log.Info("REST operation successful - see full response for details")
	default:
		for _, e := range resp.Errors() {
			log.WithFields(logrus.Fields{
				"code":     e.Code,
				"message":  e.Message,
				"envelope": resp.Shape.String(),
			}).Warn("enrollment service returned an error")
		}
	}
}

// first returns the first item of a group. Grouped sequences in the service's envelopes hold
// one-element arrays around each error object; a bare object is treated as a group of one.
func first(raw json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false
	}
	if trimmed[0] != '[' {
		return trimmed, true
	}

	var group []json.RawMessage
	if err := json.Unmarshal(trimmed, &group); err != nil || len(group) == 0 {
		return nil, false
	}
	return group[0], true
}

// decodeGroups decodes the first item of every group in a sequence. Empty groups are skipped.
func decodeGroups[T any](raw json.RawMessage) ([]T, error) {
	var groups []json.RawMessage
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("%w: %w", errShapeMismatch, err)
	}

	items := make([]T, 0, len(groups))
	for _, group := range groups {
		item, ok := first(group)
		if !ok {
			continue
		}

		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("%w: %w", errShapeMismatch, err)
		}
		items = append(items, v)
	}
	return items, nil
}

func decodeEnrollDeviceErrors(env envelope) ([]APIError, error) {
	var pairs []errorPair
	if err := json.Unmarshal(env["enrollDeviceErrorResponse"], &pairs); err != nil {
		return nil, fmt.Errorf("%w: %w", errShapeMismatch, err)
	}

	errs := make([]APIError, len(pairs))
	for i, p := range pairs {
		errs[i] = p.apiError()
	}
	return errs, nil
}

func decodeCheckTransactionError(env envelope) ([]APIError, error) {
	var pair errorPair
	if err := json.Unmarshal(env["checkTransactionErrorResponse"], &pair); err != nil {
		return nil, fmt.Errorf("%w: %w", errShapeMismatch, err)
	}
	return []APIError{pair.apiError()}, nil
}

func decodeDevicePostStatus(env envelope) ([]APIError, error) {
	var orders []struct {
		Deliveries []struct {
			Devices json.RawMessage `json:"devices"`
		} `json:"deliveries"`
	}
	if err := json.Unmarshal(env["orders"], &orders); err != nil {
		return nil, fmt.Errorf("%w: %w", errShapeMismatch, err)
	}
	if len(orders) == 0 || len(orders[0].Deliveries) == 0 || orders[0].Deliveries[0].Devices == nil {
		return nil, fmt.Errorf("%w: no devices in orders[0].deliveries[0]", errShapeMismatch)
	}

	statuses, err := decodeGroups[devicePostStatus](orders[0].Deliveries[0].Devices)
	if err != nil {
		return nil, err
	}

	errs := make([]APIError, len(statuses))
	for i, s := range statuses {
		errs[i] = APIError{Code: string(s.Code), Message: string(s.Message)}
	}
	return errs, nil
}

func decodeShowOrderErrors(env envelope) ([]APIError, error) {
	pairs, err := decodeGroups[errorPair](env["showOrderErrorResponse"])
	if err != nil {
		return nil, err
	}

	errs := make([]APIError, len(pairs))
	for i, p := range pairs {
		errs[i] = p.apiError()
	}
	return errs, nil
}

func decodeShowOrderStatus(env envelope) ([]APIError, error) {
	raw, ok := env["orders"]
	if !ok {
		return nil, fmt.Errorf("%w: no orders", errShapeMismatch)
	}

	statuses, err := decodeGroups[showOrderStatus](raw)
	if err != nil {
		return nil, err
	}

	errs := make([]APIError, len(statuses))
	for i, s := range statuses {
		errs[i] = APIError{
			Code:    string(s.Code),
			Message: fmt.Sprintf("%s, %s", s.OrderNumber, s.Message),
		}
	}
	return errs, nil
}

func decodeError(env envelope) ([]APIError, error) {
	var pair errorPair
	if err := json.Unmarshal(env["errorCode"], &pair.Code); err != nil {
		return nil, fmt.Errorf("%w: %w", errShapeMismatch, err)
	}
	if raw, ok := env["errorMessage"]; ok {
		if err := json.Unmarshal(raw, &pair.Message); err != nil {
			return nil, fmt.Errorf("%w: %w", errShapeMismatch, err)
		}
	}
	return []APIError{pair.apiError()}, nil
}
