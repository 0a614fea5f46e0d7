package depctl

import (
	"github.com/Simply-Mac/go-dep/internal/config"
	"github.com/urfave/cli/v2"
)

const (
	FlagEnv             = "env"
	FlagShipTo          = "ship-to"
	FlagResellerID      = "reseller-id"
	FlagUATCert         = "uat-cert"
	FlagUATKey          = "uat-key"
	FlagProdCert        = "prod-cert"
	FlagProdKey         = "prod-key"
	FlagBaseURL         = "base-url"
	FlagLogLevel        = "log-level"
	FlagQuiet           = "quiet"
	FlagTimeout         = "timeout"
	FlagMetricsTextfile = "metrics-textfile"
	FlagOTelEndpoint    = "otel-endpoint"

	FlagOrders         = "orders"
	FlagTransactionID  = "transaction-id"
	FlagSkipValidation = "skip-validation"
	FlagID             = "id"
	FlagOrder          = "order"
)

// Flags without a value fall back to the DEP_* environment, see config.Load.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: FlagEnv, Usage: "enrollment tier, UAT or PROD (DEP_ENV)"},
		&cli.StringFlag{Name: FlagShipTo, Usage: "ship-to account number (DEP_SHIPTO)"},
		&cli.StringFlag{Name: FlagResellerID, Usage: "reseller ID (DEP_RESELLER_ID)"},
		&cli.StringFlag{Name: FlagUATCert, Usage: "path to UAT client certificate (DEP_UAT_CERT)"},
		&cli.StringFlag{Name: FlagUATKey, Usage: "path to UAT private key (DEP_UAT_PRIVATE_KEY)"},
		&cli.StringFlag{Name: FlagProdCert, Usage: "path to PROD client certificate (DEP_PROD_CERT)"},
		&cli.StringFlag{Name: FlagProdKey, Usage: "path to PROD private key (DEP_PROD_PRIVATE_KEY)"},
		&cli.StringFlag{Name: FlagBaseURL, Usage: "override the endpoint picked from the ship-to number", Hidden: true},
		&cli.StringFlag{Name: FlagLogLevel, Usage: "logging verbosity (DEP_LOG_LEVEL)"},
		&cli.BoolFlag{Name: FlagQuiet, Aliases: []string{"q"}, Usage: "do not log errors returned by the service"},
		&cli.DurationFlag{Name: FlagTimeout, Usage: "request timeout (DEP_TIMEOUT)", Value: config.DefaultConfig().Timeout},
		&cli.StringFlag{Name: FlagMetricsTextfile, Usage: "write client metrics to this file on exit", EnvVars: []string{"DEP_METRICS_TEXTFILE"}},
		&cli.StringFlag{Name: FlagOTelEndpoint, Usage: "OTLP HTTP endpoint for traces and metrics (DEP_OTEL_ENDPOINT)"},
	}
}

func configFromFlags(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	overrides := map[string]*string{
		FlagEnv:          &cfg.Env,
		FlagShipTo:       &cfg.ShipTo,
		FlagResellerID:   &cfg.ResellerID,
		FlagUATCert:      &cfg.UATCert,
		FlagUATKey:       &cfg.UATPrivateKey,
		FlagProdCert:     &cfg.ProdCert,
		FlagProdKey:      &cfg.ProdPrivateKey,
		FlagLogLevel:     &cfg.LogLevel,
		FlagOTelEndpoint: &cfg.OTelEndpoint,
	}
	for flag, field := range overrides {
		if c.IsSet(flag) {
			*field = c.String(flag)
		}
	}

	if c.IsSet(FlagTimeout) {
		cfg.Timeout = c.Duration(FlagTimeout)
	}

	return cfg, cfg.Parse()
}
