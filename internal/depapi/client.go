package depapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Simply-Mac/go-dep/internal/config"
	"github.com/Simply-Mac/go-dep/internal/enrollment"
	"github.com/Simply-Mac/go-dep/internal/metrics"
	"github.com/Simply-Mac/go-dep/internal/otel"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
)

const (
	OperationBulkEnrollDevices      = "bulk-enroll-devices"
	OperationCheckTransactionStatus = "check-transaction-status"
	OperationShowOrderDetails       = "show-order-details"
)

type Client interface {
	BulkEnrollDevices(ctx context.Context, transactionID string, orders []enrollment.Order, opts ...CallOption) (*Result, error)
	CheckTransactionStatus(ctx context.Context, transactionID string, opts ...CallOption) (*Result, error)
	ShowOrderDetails(ctx context.Context, orderNumbers []string, opts ...CallOption) (*Result, error)
	Environment() (config.Environment, error)
}

// Result is the outcome of one operation: the request that was sent and the interpreted response.
type Result struct {
	Operation  string `json:"operation"`
	StatusCode int    `json:"statusCode"`
	Request    any    `json:"request"`
	Response
}

type client struct {
	cfg       config.Config
	transport Transport
	baseURL   string

	log logrus.FieldLogger
}

type ClientOption func(*client)

// WithBaseURL replaces the endpoint picked from the ship-to number.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

type callOptions struct {
	suppressDiagnostics bool
}

type CallOption func(*callOptions)

// SuppressDiagnostics turns off logging of the errors found in the response.
func SuppressDiagnostics(suppress bool) CallOption {
	return func(o *callOptions) {
		o.suppressDiagnostics = suppress
	}
}

// New returns a client for the enrollment service. The transport is owned by the caller.
func New(cfg config.Config, transport Transport, log logrus.FieldLogger, opts ...ClientOption) Client {
	c := &client{
		cfg:       cfg,
		transport: transport,
		log:       log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) Environment() (config.Environment, error) {
	env, err := c.cfg.Resolve()
	if err != nil {
		return config.Environment{}, err
	}

	if c.baseURL != "" {
		env.BaseURL = c.baseURL
	}
	return env, nil
}

func (c *client) invoke(ctx context.Context, operation string, build func(config.Environment) any, opts []CallOption) (*Result, error) {
	o := &callOptions{}
	for _, opt := range opts {
		opt(o)
	}

	env, err := c.Environment()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	ctx, span := otel.Start(ctx, operation)
	defer span.End()

	request := build(env)
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("%s: encoding request: %w", operation, err)
	}

	url := env.BaseURL + "/" + operation
	log := c.log.WithFields(logrus.Fields{
		"operation": operation,
		"tier":      env.Tier,
		"url":       url,
	})

	span.SetAttributes(
		attribute.String("dep.operation", operation),
		attribute.String("dep.tier", string(env.Tier)),
	)

	metrics.IncRequest(operation)
	log.Debug("sending request")

	header := http.Header{}
	header.Set("Content-Type", ContentType)

	status, respBody, err := c.transport.Send(ctx, http.MethodPost, url, header, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "transport")
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	resp := Interpret(respBody, log.WithField("status", status), o.suppressDiagnostics)
	for _, code := range resp.Codes {
		metrics.IncAPIError(operation, code)
	}

	span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.String("dep.envelope", resp.Shape.String()),
		attribute.StringSlice("dep.error_codes", resp.Codes),
	)
	if !resp.OK() {
		span.SetStatus(otelcodes.Error, strings.Join(resp.Codes, ","))
	}

	return &Result{
		Operation:  operation,
		StatusCode: status,
		Request:    request,
		Response:   resp,
	}, nil
}
