package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"os"
	"strings"
	"time"

	"somnus_tickets/constants"
	"somnus_tickets/database"
	"somnus_tickets/helper"
	"somnus_tickets/model"
	"somnus_tickets/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// invite transaction references are prefixed so the callbacks can route
// them; plain sale references are the sale public code
const inviteRefPrefix = "INV-"

// the gateway takes integer minor units, fractional totals must not be
// truncated
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreatePayment builds the gateway URL for a PENDING sale.
func CreatePayment(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreatePaymentInput)
	db := database.DB

	var sale model.Sale
	if err := db.Where("public_code = ? AND status = ?", input.SaleCode, helper.SalePending).First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, 400, "Sale is not payable", err)
		}
		return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, err)
	}

	paymentCode := fmt.Sprintf("PAY_%s_%s", time.Now().Format("20060102"), sale.PublicCode)

	gate := NewPayGate()
	req := model.GatewayRequest{
		Amount:    toMinorUnits(sale.TotalAmount),
		OrderInfo: fmt.Sprintf("Sale %s - event tickets", sale.PublicCode),
		TxnRef:    sale.PublicCode,
		IPAddr:    c.IP(),
	}

	paymentUrl, err := gate.BuildPaymentUrl(req)
	if err != nil {
		return utils.ErrorResponse(c, 500, "Could not build payment URL", err)
	}

	payment := model.Payment{
		SaleID:      sale.ID,
		Amount:      sale.TotalAmount,
		PaymentCode: paymentCode,
		Status:      "PENDING",
		Method:      input.Method,
	}
	db.Create(&payment)

	return utils.SuccessResponse(c, 200, fiber.Map{
		"paymentUrl":  paymentUrl,
		"paymentCode": paymentCode,
		"saleCode":    sale.PublicCode,
	})
}

// CreateInvitePayment builds the gateway URL for a table seat invite.
func CreateInvitePayment(c *fiber.Ctx) error {
	token := c.Params("token")

	invite, err := helper.GetInviteByToken(database.DB, token)
	if err != nil {
		return inviteErrorResponse(c, err)
	}

	seatPrice := 0.0
	if invite.TicketType != nil {
		seatPrice = invite.TicketType.SeatPrice
	}

	gate := NewPayGate()
	req := model.GatewayRequest{
		Amount:    toMinorUnits(seatPrice),
		OrderInfo: fmt.Sprintf("Table %d seat %d", invite.TableNumber, invite.SeatNumber),
		TxnRef:    inviteRefPrefix + token,
		IPAddr:    c.IP(),
	}

	paymentUrl, err := gate.BuildPaymentUrl(req)
	if err != nil {
		return utils.ErrorResponse(c, 500, "Could not build payment URL", err)
	}

	return utils.SuccessResponse(c, 200, fiber.Map{
		"paymentUrl": paymentUrl,
		"amount":     seatPrice,
		"expiresAt":  invite.ExpiresAt,
	})
}

// SettleCashSale is the admin path for door sales paid in cash: same
// completion as the gateway, just triggered by hand.
func SettleCashSale(c *fiber.Ctx) error {
	saleCode := c.Params("saleCode")

	if err := settleSale(saleCode, "CASH"); err != nil {
		if errors.Is(err, helper.ErrSaleNotPending) {
			return utils.ErrorResponse(c, 409, "Sale is not pending", err)
		}
		if errors.Is(err, helper.ErrSoldOut) {
			return utils.ErrorResponse(c, 409, constants.MSG_SOLD_OUT, err)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, 404, constants.MSG_SALE_NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, 200, fiber.Map{
		"saleCode": saleCode,
		"status":   helper.SaleCompleted,
	})
}

// PayGateReturn handles the browser redirect back from the gateway.
func PayGateReturn(c *fiber.Ctx) error {
	gate := NewPayGate()
	queryString := string(c.Request().URI().QueryString())
	query, _ := url.ParseQuery(queryString)

	result := gate.VerifyReturnUrl(query)
	if !result.IsSuccess {
		return c.Redirect(fmt.Sprintf("%s/payment-failed?reason=%s", os.Getenv("APP_URL"), url.QueryEscape(result.Message)))
	}

	if strings.HasPrefix(result.TxnRef, inviteRefPrefix) {
		token := strings.TrimPrefix(result.TxnRef, inviteRefPrefix)
		if err := settleInvite(token, "PAYGATE"); err != nil {
			return c.Redirect(fmt.Sprintf("%s/payment-failed?reason=%s", os.Getenv("APP_URL"), url.QueryEscape(err.Error())))
		}
		return c.Redirect(fmt.Sprintf("%s/invite/%s/success", os.Getenv("APP_URL"), token))
	}

	if err := settleSale(result.TxnRef, "PAYGATE"); err != nil {
		return c.Redirect(fmt.Sprintf("%s/payment-failed?reason=%s", os.Getenv("APP_URL"), url.QueryEscape(err.Error())))
	}
	return c.Redirect(fmt.Sprintf("%s/success?saleCode=%s", os.Getenv("APP_URL"), result.TxnRef))
}

// PayGateIPN handles the server-to-server confirmation. Replays are
// acknowledged without a second issuance.
func PayGateIPN(c *fiber.Ctx) error {
	gate := NewPayGate()

	body := c.Body()
	query, _ := url.ParseQuery(string(body))
	result := gate.VerifyIPN(query)

	if !result.IsSuccess {
		return c.JSON(fiber.Map{"RspCode": "01", "Message": "Failed"})
	}

	var err error
	if strings.HasPrefix(result.TxnRef, inviteRefPrefix) {
		err = settleInvite(strings.TrimPrefix(result.TxnRef, inviteRefPrefix), "PAYGATE")
	} else {
		err = settleSale(result.TxnRef, "PAYGATE")
	}
	if err != nil {
		return c.JSON(fiber.Map{"RspCode": "02", "Message": err.Error()})
	}

	return c.JSON(fiber.Map{"RspCode": "00", "Message": "Success"})
}

// settleSale completes the sale exactly once and fires the side effects
// (payment row, confirmation email with the sale QR, availability push).
// A replayed confirmation returns nil without reissuing anything.
func settleSale(saleCode, method string) error {
	db := database.DB

	sale, err := helper.CompleteSale(db, saleCode, method)
	if err != nil {
		if errors.Is(err, helper.ErrAlreadyCompleted) {
			RecordWebhookReplay()
			return nil
		}
		if errors.Is(err, helper.ErrSoldOut) {
			RecordSoldOutRejection(sale.EventID)
		}
		return err
	}

	db.Model(&model.Payment{}).
		Where("sale_id = ? AND status = ?", sale.ID, "PENDING").
		Update("status", "PAID")

	RecordSaleCompleted(sale.EventID, sale.TotalAmount)
	PublishAvailability(sale.EventID)

	if sale.BuyerEmail != "" {
		qrBytes, qrErr := utils.GenerateQRCode(sale.PublicCode, 400)
		if qrErr != nil {
			log.Printf("failed to build QR for sale %s: %v", sale.PublicCode, qrErr)
			qrBytes = nil
		}
		items := make([]string, 0, len(sale.Items))
		for _, item := range sale.Items {
			name := ""
			if item.TicketType != nil {
				name = item.TicketType.Name
			}
			items = append(items, fmt.Sprintf("%dx %s", item.Quantity, name))
		}
		utils.SendSaleConfirmationEmail(sale.BuyerEmail, utils.SaleConfirmationData{
			SaleCode:    sale.PublicCode,
			EventName:   sale.Event.Name,
			EventDate:   sale.Event.StartsAt.Format("02/01/2006 15:04"),
			Items:       strings.Join(items, ", "),
			TotalAmount: sale.TotalAmount,
			DetailLink:  fmt.Sprintf("%s/sales/%s", os.Getenv("APP_URL"), sale.PublicCode),
		}, qrBytes)
	}
	return nil
}

// settleInvite redeems the invite exactly once; the loser of a replay race
// is treated as a no-op.
func settleInvite(token, method string) error {
	db := database.DB

	sale, ticket, err := helper.RedeemInvite(db, token, method)
	if err != nil {
		if errors.Is(err, helper.ErrInviteRedeemed) {
			RecordWebhookReplay()
			return nil
		}
		return err
	}

	RecordSaleCompleted(sale.EventID, sale.TotalAmount)
	PublishAvailability(sale.EventID)

	if sale.BuyerEmail != "" {
		var event model.Event
		db.First(&event, sale.EventID)

		qrBytes, qrErr := utils.GenerateQRCode(ticket.TicketCode, 400)
		if qrErr != nil {
			qrBytes = nil
		}
		utils.SendSaleConfirmationEmail(sale.BuyerEmail, utils.SaleConfirmationData{
			SaleCode:    sale.PublicCode,
			EventName:   event.Name,
			Items:       fmt.Sprintf("Table %d, seat %d", *ticket.TableNumber, *ticket.SeatNumber),
			TotalAmount: sale.TotalAmount,
			DetailLink:  fmt.Sprintf("%s/sales/%s", os.Getenv("APP_URL"), sale.PublicCode),
		}, qrBytes)
	}
	return nil
}

func inviteErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, helper.ErrInviteExpired):
		return utils.ErrorResponse(c, 410, constants.MSG_INVITE_EXPIRED, err)
	case errors.Is(err, helper.ErrInviteRedeemed):
		return utils.ErrorResponse(c, 409, constants.MSG_INVITE_REDEEMED, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrorResponse(c, 404, constants.MSG_INVITE_NOT_FOUND, err)
	default:
		return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, err)
	}
}

// saleQRBase64 renders the scannable code embedded in sale detail pages.
func saleQRBase64(code string) string {
	qrBytes, err := utils.GenerateQRCode(code, 400)
	if err != nil {
		log.Printf("failed to build QR for %s: %v", code, err)
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrBytes)
}
