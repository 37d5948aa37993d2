package handler

import (
	"errors"
	"math"

	"somnus_tickets/constants"
	"somnus_tickets/database"
	"somnus_tickets/helper"
	"somnus_tickets/model"
	"somnus_tickets/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetAvailability returns remaining units per ticket type for an event.
// A snapshot for the storefront; the real guard is the ledger at completion.
func GetAvailability(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var event model.Event
	if err := database.DB.Preload("TicketTypes").Where("slug = ?", slug).First(&event).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.MSG_EVENT_NOT_FOUND, err)
	}

	rows := []fiber.Map{}
	for _, tt := range event.TicketTypes {
		rows = append(rows, fiber.Map{
			"ticketTypeId":  tt.ID,
			"name":          tt.Name,
			"price":         tt.Price,
			"isTable":       tt.IsTable,
			"seatsPerTable": tt.SeatsPerTable,
			"seatPrice":     tt.SeatPrice,
			"remaining":     tt.MaxQuantity - tt.SoldQuantity,
			"soldOut":       tt.SoldQuantity >= tt.MaxQuantity,
		})
	}

	return utils.SuccessResponse(c, 200, fiber.Map{
		"event":       event.Name,
		"ticketTypes": rows,
	})
}

// Checkout creates a PENDING sale with its line items and hands back the
// gateway payment URL. No inventory is reserved here: the ledger increments
// happen atomically at completion, so an abandoned checkout holds nothing.
func Checkout(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CheckoutInput)
	db := database.DB

	var event model.Event
	if err := db.First(&event, "id = ? AND is_active = ?", input.EventID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, 404, "Event is not open for sales", err)
		}
		return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, err)
	}

	var customerID *uint
	if customer, ok := c.Locals("customer").(*model.Customer); ok && customer != nil {
		customerID = &customer.ID
	}

	var sale model.Sale
	err := db.Transaction(func(tx *gorm.DB) error {
		subtotal := 0.0
		items := make([]model.SaleItem, 0, len(input.Lines))

		for _, line := range input.Lines {
			var tt model.TicketType
			if err := tx.First(&tt, "id = ? AND event_id = ?", line.TicketTypeID, event.ID).Error; err != nil {
				return err
			}
			// early rejection; the completion path re-checks atomically
			if tt.SoldQuantity+line.Quantity > tt.MaxQuantity {
				return helper.ErrSoldOut
			}
			subtotal += tt.Price * float64(line.Quantity)
			items = append(items, model.SaleItem{
				TicketTypeID: tt.ID,
				Quantity:     line.Quantity,
				UnitPrice:    tt.Price,
			})
		}

		fee := math.Round(subtotal*helper.ServiceFeeRate*100) / 100
		sale = model.Sale{
			PublicCode:  helper.NewSaleCode(),
			CustomerID:  customerID,
			EventID:     event.ID,
			BuyerName:   input.BuyerName,
			BuyerEmail:  input.BuyerEmail,
			BuyerPhone:  input.BuyerPhone,
			TotalAmount: subtotal + fee,
			ServiceFee:  fee,
			Status:      helper.SalePending,
			Items:       items,
		}
		return tx.Create(&sale).Error
	})
	if err != nil {
		if errors.Is(err, helper.ErrSoldOut) {
			RecordSoldOutRejection(event.ID)
			return utils.ErrorResponse(c, 409, constants.MSG_SOLD_OUT, err)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, 400, "Unknown ticket type for this event", err)
		}
		return utils.ErrorResponse(c, 500, "Could not create sale", err)
	}

	return utils.SuccessResponse(c, 201, fiber.Map{
		"saleCode":    sale.PublicCode,
		"totalAmount": sale.TotalAmount,
		"serviceFee":  sale.ServiceFee,
		"status":      sale.Status,
		"nextStep":    "POST /payments with the sale code to get the payment URL",
	})
}
