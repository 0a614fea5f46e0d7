package depctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Simply-Mac/go-dep/internal/config"
	"github.com/Simply-Mac/go-dep/internal/depapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersFile = `[
  {
    "orderNumber": "ORDER_900123",
    "orderDate": "2024-03-01T10:15:00Z",
    "orderType": "OR",
    "customerId": "19827",
    "poNumber": "PO_12345",
    "deliveries": [
      {
        "deliveryNumber": "D1.2",
        "shipDate": "2024-03-02T08:00:00Z",
        "devices": [{"deviceId": "33645004YAM", "assetTag": "A123456"}]
      }
    ]
  }
]`

func testApp(t *testing.T, s *httptest.Server) (*app, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &app{
		out:    out,
		logOut: io.Discard,
		newTransport: func(cred config.Credential, timeout time.Duration) (depapi.Transport, error) {
			return depapi.NewHTTPTransportWithClient(s.Client()), nil
		},
	}, out
}

func run(t *testing.T, a *app, s *httptest.Server, args ...string) error {
	t.Helper()
	base := []string{
		"depctl",
		"--env", "UAT",
		"--ship-to", "1234567890",
		"--reseller-id", "RESELLER01",
		"--uat-cert", "uat.pem",
		"--uat-key", "uat.key",
		"--base-url", s.URL,
	}
	return newApp(a).RunContext(context.Background(), append(base, args...))
}

func TestBulkEnroll(t *testing.T) {
	var mu sync.Mutex
	var request map[string]any
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bulk-enroll-devices", r.URL.Path)
		mu.Lock()
		defer mu.Unlock()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		fmt.Fprint(w, `{"deviceEnrollmentTransactionId": "TX1", "enrollDevicesResponse": {"statusCode": "SUCCESS", "statusMessage": "Transaction posted successfully in DEP"}}`)
	}))
	defer s.Close()

	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(ordersFile), 0o600))

	t.Run("generated transaction ID", func(t *testing.T) {
		a, out := testApp(t, s)
		require.NoError(t, run(t, a, s, "bulk-enroll", "--orders", path))

		mu.Lock()
		defer mu.Unlock()
		assert.True(t, strings.HasPrefix(request["transactionId"].(string), "TXN_"))
		assert.Equal(t, "RESELLER01", request["depResellerID"])
		assert.Len(t, request["orders"], 1)

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, depapi.OperationBulkEnrollDevices, result["operation"])
		assert.Equal(t, "none", result["shape"])
	})

	t.Run("explicit transaction ID", func(t *testing.T) {
		a, _ := testApp(t, s)
		require.NoError(t, run(t, a, s, "bulk-enroll", "--orders", path, "--transaction-id", "TXN_1"))

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "TXN_1", request["transactionId"])
	})

	t.Run("orders from stdin", func(t *testing.T) {
		a, _ := testApp(t, s)
		cliApp := newApp(a)
		cliApp.Reader = strings.NewReader(ordersFile)
		err := cliApp.RunContext(context.Background(), []string{
			"depctl", "--env", "UAT", "--ship-to", "1234567890", "--reseller-id", "RESELLER01",
			"--uat-cert", "uat.pem", "--uat-key", "uat.key", "--base-url", s.URL,
			"bulk-enroll", "--orders", "-",
		})
		require.NoError(t, err)
	})
}

func TestBulkEnrollValidation(t *testing.T) {
	var calls atomic.Int32
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{}`)
	}))
	defer s.Close()

	path := filepath.Join(t.TempDir(), "orders.json")
	invalid := strings.Replace(ordersFile, `"devices": [{"deviceId": "33645004YAM", "assetTag": "A123456"}]`, `"devices": []`, 1)
	require.NoError(t, os.WriteFile(path, []byte(invalid), 0o600))

	a, _ := testApp(t, s)
	err := run(t, a, s, "bulk-enroll", "--orders", path)
	assert.ErrorContains(t, err, "invalid orders")
	assert.Equal(t, int32(0), calls.Load())

	a, _ = testApp(t, s)
	require.NoError(t, run(t, a, s, "bulk-enroll", "--orders", path, "--skip-validation"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCheckTransaction(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		id := req["deviceEnrollmentTransactionId"].(string)
		if id == "bad" {
			fmt.Fprint(w, `{"checkTransactionErrorResponse": {"errorCode": "DEP-ERR-4001", "errorMessage": "Transaction ID not found"}}`)
			return
		}
		fmt.Fprintf(w, `{"deviceEnrollmentTransactionID": %q, "statusCode": "COMPLETE"}`, id)
	}))
	defer s.Close()

	t.Run("all succeed", func(t *testing.T) {
		a, out := testApp(t, s)
		require.NoError(t, run(t, a, s, "check-transaction", "--id", "a", "--id", "b"))

		var results []map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &results))
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0]["request"].(map[string]any)["deviceEnrollmentTransactionId"])
		assert.Equal(t, "b", results[1]["request"].(map[string]any)["deviceEnrollmentTransactionId"])
	})

	t.Run("remote errors", func(t *testing.T) {
		a, out := testApp(t, s)
		err := run(t, a, s, "--quiet", "check-transaction", "--id", "a", "--id", "bad")
		assert.ErrorIs(t, err, ErrRemoteErrors)

		var results []map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &results))
		require.Len(t, results, 2)
		assert.Equal(t, []any{"DEP-ERR-4001"}, results[1]["codes"])
	})
}

func TestShowOrder(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/show-order-details", r.URL.Path)
		fmt.Fprint(w, `{"orders": [{"orderNumber": "O1", "showOrderStatusCode": "SUCCESS", "showOrderStatusMessage": "ok"}]}`)
	}))
	defer s.Close()

	a, out := testApp(t, s)
	require.NoError(t, run(t, a, s, "show-order", "--order", "O1"))
	assert.Contains(t, out.String(), depapi.OperationShowOrderDetails)
}

func TestEnvironment(t *testing.T) {
	a := &app{out: &bytes.Buffer{}, logOut: io.Discard}
	err := newApp(a).RunContext(context.Background(), []string{
		"depctl", "--env", "PROD", "--ship-to", "1234567891", "--reseller-id", "RESELLER01",
		"--prod-cert", "prod.pem", "--prod-key", "prod.key", "environment",
	})
	require.NoError(t, err)

	var env config.Environment
	require.NoError(t, json.Unmarshal(a.out.(*bytes.Buffer).Bytes(), &env))
	assert.Equal(t, config.TierProd, env.Tier)
	assert.Equal(t, config.ProdEndpointOdd, env.BaseURL)
	assert.Equal(t, "prod.pem", env.Credential.CertPath)
}

func TestConfigurationError(t *testing.T) {
	a := &app{
		out:    &bytes.Buffer{},
		logOut: io.Discard,
		newTransport: func(config.Credential, time.Duration) (depapi.Transport, error) {
			t.Fatal("transport must not be created")
			return nil, nil
		},
	}
	err := newApp(a).RunContext(context.Background(), []string{
		"depctl", "--env", "UAT", "--ship-to", "1234567890", "show-order", "--order", "O1",
	})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestMetricsTextfile(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"orders": [{"orderNumber": "O1", "showOrderStatusCode": "SUCCESS"}]}`)
	}))
	defer s.Close()

	path := filepath.Join(t.TempDir(), "dep.prom")
	a, _ := testApp(t, s)
	require.NoError(t, run(t, a, s, "--metrics-textfile", path, "show-order", "--order", "O1"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `dep_client_requests{operation="show-order-details"}`)
}
