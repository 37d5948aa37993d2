package handler

import (
	"net/url"
	"strings"
	"testing"

	"somnus_tickets/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayGate() *PayGate {
	return &PayGate{
		Config: model.GatewayConfig{
			MerchantCode: "SOMNUS01",
			HashSecret:   "test-secret",
			BaseURL:      "https://gateway.test/pay",
			ReturnURL:    "http://localhost:8002/paygate/return",
			IPNURL:       "http://localhost:8002/paygate/ipn",
		},
	}
}

func TestBuildPaymentUrlIsSigned(t *testing.T) {
	g := testPayGate()

	paymentUrl, err := g.BuildPaymentUrl(model.GatewayRequest{
		TxnRef:    "SL-1A2B3C4D",
		Amount:    toMinorUnits(150),
		OrderInfo: "Entradas Noche Somnus",
		IPAddr:    "203.0.113.7",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(paymentUrl)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(paymentUrl, g.Config.BaseURL))

	query := parsed.Query()
	assert.Equal(t, "SL-1A2B3C4D", query.Get("pg_TxnRef"))
	assert.Equal(t, "15000", query.Get("pg_Amount")) // minor units
	assert.NotEmpty(t, query.Get("pg_SecureHash"))
	assert.NotEmpty(t, query.Get("pg_ExpireDate"))
}

func TestBuildPaymentUrlKeepsCents(t *testing.T) {
	g := testPayGate()

	// a 5% service fee routinely produces fractional totals
	paymentUrl, err := g.BuildPaymentUrl(model.GatewayRequest{
		TxnRef:    "SL-5E6F7A8B",
		Amount:    toMinorUnits(52.50),
		OrderInfo: "Entradas Noche Somnus",
		IPAddr:    "203.0.113.7",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(paymentUrl)
	require.NoError(t, err)
	assert.Equal(t, "5250", parsed.Query().Get("pg_Amount"))
}

func TestVerifyReturnUrlRoundTrip(t *testing.T) {
	g := testPayGate()

	query := url.Values{}
	query.Set("pg_TxnRef", "SL-1A2B3C4D")
	query.Set("pg_Amount", "15000")
	query.Set("pg_ResponseCode", "00")
	query.Set("pg_SecureHash", g.generateHash(query.Encode()))

	resp := g.VerifyReturnUrl(query)
	assert.True(t, resp.IsSuccess)
	assert.Equal(t, "SL-1A2B3C4D", resp.TxnRef)
	assert.EqualValues(t, 15000, resp.Amount)
}

func TestVerifyReturnUrlTamperedAmount(t *testing.T) {
	g := testPayGate()

	query := url.Values{}
	query.Set("pg_TxnRef", "SL-1A2B3C4D")
	query.Set("pg_Amount", "15000")
	query.Set("pg_ResponseCode", "00")
	query.Set("pg_SecureHash", g.generateHash(query.Encode()))

	query.Set("pg_Amount", "100")

	resp := g.VerifyReturnUrl(query)
	assert.False(t, resp.IsSuccess)
}

func TestVerifyIPNDeclined(t *testing.T) {
	g := testPayGate()

	query := url.Values{}
	query.Set("pg_TxnRef", "SL-1A2B3C4D")
	query.Set("pg_ResponseCode", "24")
	query.Set("pg_SecureHash", g.generateHash(query.Encode()))

	resp := g.VerifyIPN(query)
	assert.False(t, resp.IsSuccess)
}
