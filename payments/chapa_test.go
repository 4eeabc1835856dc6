package payments

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_Success(t *testing.T) {
	body := `{"status":"success","data":{"checkout_url":"https://pay/x","id":"ptx_1"}}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewChapaClientWithBaseURL("test-key", srv.URL)
	result, err := client.Initialize(InitializePayload{
		Amount:   "1500.00",
		Currency: "ETB",
		TxRef:    "BOOKPAY-AAAABBBBCCCC",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "https://pay/x", result.CheckoutURL)
	assert.Equal(t, "ptx_1", result.TransactionID)
	assert.Equal(t, body, string(result.Raw))
}

func TestInitialize_ProviderRejected(t *testing.T) {
	body := `{"status":"failed","message":"Invalid currency"}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewChapaClientWithBaseURL("test-key", srv.URL)
	result, err := client.Initialize(InitializePayload{TxRef: "BOOKPAY-AAAABBBBCCCC"})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, body, string(result.Raw))
}

func TestInitialize_NonSuccessEnvelopeOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","data":null}`))
	}))
	defer srv.Close()

	client := NewChapaClientWithBaseURL("test-key", srv.URL)
	result, err := client.Initialize(InitializePayload{})

	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestInitialize_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewChapaClientWithBaseURL("test-key", srv.URL)
	result, err := client.Initialize(InitializePayload{})

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrGatewayUnreachable))
}

func TestInitialize_InvalidJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer srv.Close()

	client := NewChapaClientWithBaseURL("test-key", srv.URL)
	_, err := client.Initialize(InitializePayload{})

	assert.True(t, errors.Is(err, ErrGatewayUnreachable))
}

func TestVerify_DualStatusRule(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		verifiedSuccess bool
		dataStatus      string
	}{
		{
			name:            "both success",
			body:            `{"status":"success","data":{"status":"success"}}`,
			verifiedSuccess: true,
			dataStatus:      "success",
		},
		{
			name:            "nested status case-insensitive",
			body:            `{"status":"success","data":{"status":"SUCCESS"}}`,
			verifiedSuccess: true,
			dataStatus:      "success",
		},
		{
			name:            "nested failed",
			body:            `{"status":"success","data":{"status":"failed"}}`,
			verifiedSuccess: false,
			dataStatus:      "failed",
		},
		{
			name:            "nested pending",
			body:            `{"status":"success","data":{"status":"pending"}}`,
			verifiedSuccess: false,
			dataStatus:      "pending",
		},
		{
			name:            "top-level failure",
			body:            `{"status":"failed","data":{"status":"success"}}`,
			verifiedSuccess: false,
			dataStatus:      "success",
		},
		{
			name:            "missing data",
			body:            `{"status":"success"}`,
			verifiedSuccess: false,
			dataStatus:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "GET", r.Method)
				assert.Equal(t, "/transaction/verify/BOOKPAY-AAAABBBBCCCC", r.URL.Path)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewChapaClientWithBaseURL("test-key", srv.URL)
			result, err := client.Verify("BOOKPAY-AAAABBBBCCCC")

			require.NoError(t, err)
			assert.Equal(t, tt.verifiedSuccess, result.VerifiedSuccess())
			assert.Equal(t, tt.dataStatus, result.DataStatus)
			assert.Equal(t, tt.body, string(result.Raw))
		})
	}
}

func TestVerify_NumericTransactionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"id":123456,"status":"success"}}`))
	}))
	defer srv.Close()

	client := NewChapaClientWithBaseURL("test-key", srv.URL)
	result, err := client.Verify("BOOKPAY-AAAABBBBCCCC")

	require.NoError(t, err)
	assert.Equal(t, "123456", result.TransactionID)
}
