package handler

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"somnus_tickets/model"

	"github.com/joho/godotenv"
)

// PayGate is the hosted payment page client. The gateway contract is a
// redirect URL carrying an HMAC-SHA512-signed query string, a browser return
// callback and a server-to-server IPN, both signed the same way and
// correlated by pg_TxnRef.
type PayGate struct {
	Config model.GatewayConfig
}

func NewPayGate() *PayGate {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}
	return &PayGate{
		Config: model.GatewayConfig{
			MerchantCode: os.Getenv("PG_MERCHANT_CODE"),
			HashSecret:   os.Getenv("PG_HASH_SECRET"),
			BaseURL:      os.Getenv("PG_URL"),
			ReturnURL:    os.Getenv("APP_URL") + "/paygate/return",
			IPNURL:       os.Getenv("APP_URL") + "/paygate/ipn",
		},
	}
}

func (g *PayGate) BuildPaymentUrl(req model.GatewayRequest) (string, error) {
	params := url.Values{}
	params.Add("pg_Version", "1.0")
	params.Add("pg_Command", "pay")
	params.Add("pg_MerchantCode", g.Config.MerchantCode)
	params.Add("pg_Amount", strconv.FormatInt(req.Amount, 10))
	params.Add("pg_CreateDate", time.Now().Format("20060102150405"))
	params.Add("pg_IpAddr", req.IPAddr)
	params.Add("pg_OrderInfo", url.QueryEscape(req.OrderInfo))
	params.Add("pg_ReturnUrl", g.Config.ReturnURL)
	params.Add("pg_TxnRef", req.TxnRef)
	params.Add("pg_ExpireDate", time.Now().Add(30*time.Minute).Format("20060102150405"))

	query := params.Encode()
	hash := g.generateHash(query)
	fullQuery := query + "&pg_SecureHash=" + hash

	return g.Config.BaseURL + "?" + fullQuery, nil
}

// VerifyReturnUrl checks the signature on the browser callback.
func (g *PayGate) VerifyReturnUrl(query url.Values) model.GatewayResponse {
	secureHash := query.Get("pg_SecureHash")
	query.Del("pg_SecureHash")

	expectedHash := g.generateHash(query.Encode())
	if !hmac.Equal([]byte(secureHash), []byte(expectedHash)) {
		return model.GatewayResponse{IsSuccess: false, Message: "Invalid hash"}
	}

	if query.Get("pg_ResponseCode") == "00" {
		amount, _ := strconv.ParseInt(query.Get("pg_Amount"), 10, 64)
		return model.GatewayResponse{
			IsSuccess: true,
			TxnRef:    query.Get("pg_TxnRef"),
			Amount:    amount,
			Status:    "PAID",
		}
	}

	return model.GatewayResponse{IsSuccess: false, Message: "Payment failed"}
}

// VerifyIPN checks the server-to-server notification.
func (g *PayGate) VerifyIPN(query url.Values) model.GatewayResponse {
	secureHash := query.Get("pg_SecureHash")
	query.Del("pg_SecureHash")

	expectedHash := g.generateHash(query.Encode())
	if !hmac.Equal([]byte(secureHash), []byte(expectedHash)) {
		return model.GatewayResponse{IsSuccess: false, Message: "Invalid IPN hash"}
	}

	if query.Get("pg_ResponseCode") == "00" {
		return model.GatewayResponse{
			IsSuccess: true,
			TxnRef:    query.Get("pg_TxnRef"),
			Status:    "PAID",
		}
	}

	return model.GatewayResponse{IsSuccess: false, Message: "IPN failed"}
}

func (g *PayGate) generateHash(data string) string {
	h := hmac.New(sha512.New, []byte(g.Config.HashSecret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
