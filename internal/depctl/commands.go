package depctl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Simply-Mac/go-dep/internal/depapi"
	"github.com/Simply-Mac/go-dep/internal/enrollment"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentRequests bounds the fan-out when several transaction IDs are checked at once.
const maxConcurrentRequests = 4

func (a *app) bulkEnroll(c *cli.Context) error {
	orders, err := readOrders(c.String(FlagOrders), c.App.Reader)
	if err != nil {
		return err
	}

	if !c.Bool(FlagSkipValidation) {
		if err := enrollment.ValidateOrders(orders); err != nil {
			return fmt.Errorf("invalid orders, use --%s to send anyway: %w", FlagSkipValidation, err)
		}
	}

	transactionID := c.String(FlagTransactionID)
	if transactionID == "" {
		transactionID = "TXN_" + uuid.New().String()
		a.log.WithField("transaction_id", transactionID).Info("generated transaction ID")
	}

	client, err := a.client(c)
	if err != nil {
		return err
	}

	result, err := client.BulkEnrollDevices(c.Context, transactionID, orders, a.callOptions(c)...)
	if err != nil {
		return err
	}

	return a.report(result)
}

func (a *app) checkTransaction(c *cli.Context) error {
	client, err := a.client(c)
	if err != nil {
		return err
	}

	ids := c.StringSlice(FlagID)
	results := make([]*depapi.Result, len(ids))

	eg, ctx := errgroup.WithContext(c.Context)
	eg.SetLimit(maxConcurrentRequests)
	for i, id := range ids {
		i, id := i, id
		eg.Go(func() error {
			result, err := client.CheckTransactionStatus(ctx, id, a.callOptions(c)...)
			if err != nil {
				return fmt.Errorf("transaction %s: %w", id, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	return a.report(results...)
}

func (a *app) showOrder(c *cli.Context) error {
	client, err := a.client(c)
	if err != nil {
		return err
	}

	result, err := client.ShowOrderDetails(c.Context, c.StringSlice(FlagOrder), a.callOptions(c)...)
	if err != nil {
		return err
	}

	return a.report(result)
}

func (a *app) environment(c *cli.Context) error {
	env, err := a.cfg.Resolve()
	if err != nil {
		return err
	}

	if baseURL := c.String(FlagBaseURL); baseURL != "" {
		env.BaseURL = baseURL
	}

	return a.print(env)
}

func readOrders(path string, stdin io.Reader) ([]enrollment.Order, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open orders: %w", err)
		}
		defer f.Close()
		r = f
	}

	var orders []enrollment.Order
	if err := json.NewDecoder(r).Decode(&orders); err != nil {
		return nil, fmt.Errorf("decode orders from %s: %w", path, err)
	}

	if len(orders) == 0 {
		return nil, fmt.Errorf("no orders in %s", path)
	}

	return orders, nil
}
