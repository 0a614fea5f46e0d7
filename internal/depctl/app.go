package depctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Simply-Mac/go-dep/internal/config"
	"github.com/Simply-Mac/go-dep/internal/depapi"
	"github.com/Simply-Mac/go-dep/internal/logger"
	"github.com/Simply-Mac/go-dep/internal/metrics"
	"github.com/Simply-Mac/go-dep/internal/otel"
	"github.com/Simply-Mac/go-dep/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// ErrRemoteErrors is returned when the service answered with one or more error codes.
var ErrRemoteErrors = errors.New("enrollment service returned errors")

type TransportFunc func(cred config.Credential, timeout time.Duration) (depapi.Transport, error)

type app struct {
	out          io.Writer
	logOut       io.Writer
	newTransport TransportFunc

	cfg          config.Config
	log          *logrus.Logger
	otelShutdown func(ctx context.Context) error
}

func defaultTransport(cred config.Credential, timeout time.Duration) (depapi.Transport, error) {
	return depapi.NewHTTPTransport(cred, timeout)
}

// New returns the depctl command line application writing results to out and logs to stderr.
func New(out io.Writer) *cli.App {
	return newApp(&app{
		out:          out,
		logOut:       os.Stderr,
		newTransport: defaultTransport,
	})
}

func newApp(a *app) *cli.App {
	return &cli.App{
		Name:    "depctl",
		Usage:   "talk to the Device Enrollment Program reseller API",
		Version: version.String(),
		Flags:   globalFlags(),
		Before:  a.before,
		After:   a.after,
		Commands: []*cli.Command{
			{
				Name:  "bulk-enroll",
				Usage: "post orders for device enrollment",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     FlagOrders,
						Usage:    "JSON file with an array of orders, - for stdin",
						Required: true,
					},
					&cli.StringFlag{
						Name:  FlagTransactionID,
						Usage: "reseller transaction ID, generated when empty",
					},
					&cli.BoolFlag{
						Name:  FlagSkipValidation,
						Usage: "send orders without checking field contracts first",
					},
				},
				Action: a.bulkEnroll,
			},
			{
				Name:    "check-transaction",
				Aliases: []string{"status"},
				Usage:   "check the status of enrollment transactions",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     FlagID,
						Usage:    "deviceEnrollmentTransactionId returned by bulk-enroll, may be repeated",
						Required: true,
					},
				},
				Action: a.checkTransaction,
			},
			{
				Name:  "show-order",
				Usage: "show enrollment details of orders",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     FlagOrder,
						Usage:    "order number, may be repeated",
						Required: true,
					},
				},
				Action: a.showOrder,
			},
			{
				Name:   "environment",
				Usage:  "print the resolved environment without contacting the service",
				Action: a.environment,
			},
		},
	}
}

func (a *app) before(c *cli.Context) error {
	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logger.Setup(cfg.LogLevel, a.logOut)
	a.log.WithFields(version.LogFields()).Debug("depctl starting")

	shutdown, err := otel.SetupOTelSDK(c.Context, "depctl", cfg.OTelEndpoint, a.log)
	if err != nil {
		return fmt.Errorf("setup OpenTelemetry: %w", err)
	}
	a.otelShutdown = shutdown

	return nil
}

func (a *app) after(c *cli.Context) error {
	var err error
	if a.otelShutdown != nil {
		err = a.otelShutdown(c.Context)
	}

	if path := c.String(FlagMetricsTextfile); path != "" {
		err = errors.Join(err, metrics.WriteTextfile(path))
	}

	return err
}

func (a *app) client(c *cli.Context) (depapi.Client, error) {
	var opts []depapi.ClientOption
	if baseURL := c.String(FlagBaseURL); baseURL != "" {
		opts = append(opts, depapi.WithBaseURL(baseURL))
	}

	env, err := a.cfg.Resolve()
	if err != nil {
		return nil, err
	}

	transport, err := a.newTransport(env.Credential, a.cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return depapi.New(a.cfg, transport, a.log.WithField("component", "depapi"), opts...), nil
}

func (a *app) callOptions(c *cli.Context) []depapi.CallOption {
	return []depapi.CallOption{depapi.SuppressDiagnostics(c.Bool(FlagQuiet))}
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// report prints the results and turns error codes into ErrRemoteErrors.
func (a *app) report(results ...*depapi.Result) error {
	var out any = results
	if len(results) == 1 {
		out = results[0]
	}

	if err := a.print(out); err != nil {
		return err
	}

	for _, result := range results {
		if !result.OK() {
			return ErrRemoteErrors
		}
	}
	return nil
}
