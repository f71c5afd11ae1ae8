package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestRazorpayGateway_CreateOrder(t *testing.T) {
	gw := NewRazorpayGateway("rzp_test_key", "key-secret", "hook-secret").(*razorpayGateway)

	t.Run("Success", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, "https://api.razorpay.com/v1/orders", req.URL.String())
			assert.Equal(t, http.MethodPost, req.Method)

			user, pass, ok := req.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "rzp_test_key", user)
			assert.Equal(t, "key-secret", pass)

			var body map[string]any
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, float64(109800), body["amount"])
			assert.Equal(t, "INR", body["currency"])
			assert.Equal(t, "receipt_1", body["receipt"])

			return jsonResponse(http.StatusOK,
				`{"id":"order_Rzp1","amount":109800,"currency":"INR","receipt":"receipt_1","status":"created"}`)
		})

		res, err := gw.CreateOrder(context.Background(), 1098, "receipt_1")
		require.NoError(t, err)
		assert.Equal(t, "order_Rzp1", res.ID)
		assert.Equal(t, int64(109800), res.Amount)
	})

	t.Run("APIError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusBadRequest, `{"error":{"description":"amount too small"}}`)
		})

		_, err := gw.CreateOrder(context.Background(), 0, "receipt_1")
		assert.ErrorContains(t, err, "razorpay error 400")
	})

	t.Run("NetworkError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection reset")
		})

		_, err := gw.CreateOrder(context.Background(), 599, "receipt_1")
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("MissingKeys", func(t *testing.T) {
		empty := NewRazorpayGateway("", "", "")
		_, err := empty.CreateOrder(context.Background(), 599, "receipt_1")
		assert.ErrorIs(t, err, ErrMissingSecret)
	})
}

func TestRazorpayGateway_FetchPayment(t *testing.T) {
	gw := NewRazorpayGateway("rzp_test_key", "key-secret", "").(*razorpayGateway)
	gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
		assert.Equal(t, "/v1/payments/pay_1", req.URL.Path)
		return jsonResponse(http.StatusOK,
			`{"id":"pay_1","order_id":"order_Rzp1","amount":109800,"status":"captured","method":"upi"}`)
	})

	p, err := gw.FetchPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "captured", p.Status)
	assert.Equal(t, "order_Rzp1", p.OrderID)
}

func TestRazorpayGateway_VerifyPaymentSignature(t *testing.T) {
	gw := NewRazorpayGateway("rzp_test_key", "key-secret", "")
	sig := Sign([]byte("order_Rzp1|pay_1"), "key-secret")

	assert.NoError(t, gw.VerifyPaymentSignature("order_Rzp1", "pay_1", sig))
	assert.ErrorIs(t, gw.VerifyPaymentSignature("order_Rzp1", "pay_2", sig), ErrInvalidSignature)
	assert.ErrorIs(t, gw.VerifyPaymentSignature("order_Rzp1", "pay_1", ""), ErrInvalidSignature)

	noSecret := NewRazorpayGateway("rzp_test_key", "", "")
	assert.ErrorIs(t, noSecret.VerifyPaymentSignature("order_Rzp1", "pay_1", sig), ErrMissingSecret)
}

func TestRazorpayGateway_VerifySignature(t *testing.T) {
	gw := NewRazorpayGateway("rzp_test_key", "key-secret", "hook-secret")
	body := `{"event":"payment.captured"}`

	t.Run("Valid keeps body readable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(body))
		req.Header.Set(SignatureHeader, Sign([]byte(body), "hook-secret"))

		require.NoError(t, gw.VerifySignature(req))

		rest, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, body, string(rest))
	})

	t.Run("Tampered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(body+" "))
		req.Header.Set(SignatureHeader, Sign([]byte(body), "hook-secret"))

		assert.ErrorIs(t, gw.VerifySignature(req), ErrInvalidSignature)
	})

	t.Run("No secret configured", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(body))
		err := NewRazorpayGateway("k", "s", "").VerifySignature(req)
		assert.ErrorIs(t, err, ErrMissingSecret)
	})
}
