package handler

import (
	"somnus_tickets/constants"
	"somnus_tickets/database"
	"somnus_tickets/helper"
	"somnus_tickets/model"
	"somnus_tickets/utils"

	"github.com/gofiber/fiber/v2"
)

func GetMySales(c *fiber.Ctx) error {
	customer, ok := c.Locals("customer").(*model.Customer)
	if !ok || customer == nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.UNAUTHORIZED, nil)
	}

	var sales []model.Sale
	if err := database.DB.
		Preload("Tickets").
		Preload("Items").
		Preload("Items.TicketType").
		Preload("Event").
		Where("customer_id = ? AND status = ?", customer.ID, helper.SaleCompleted).
		Order("created_at desc").
		Find(&sales).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Could not load sales", err)
	}

	response := []fiber.Map{}
	for _, sale := range sales {
		tickets := []fiber.Map{}
		for _, ticket := range sale.Tickets {
			tickets = append(tickets, fiber.Map{
				"ticketCode":  ticket.TicketCode,
				"status":      ticket.Status,
				"tableNumber": ticket.TableNumber,
				"seatNumber":  ticket.SeatNumber,
			})
		}

		response = append(response, fiber.Map{
			"saleCode":    sale.PublicCode,
			"eventName":   sale.Event.Name,
			"eventDate":   sale.Event.StartsAt.Format("02/01/2006 15:04"),
			"totalAmount": sale.TotalAmount,
			"paidAt":      sale.PaidAt,
			"ticketCount": len(sale.Tickets),
			"tickets":     tickets,
			"qrCode":      saleQRBase64(sale.PublicCode),
		})
	}

	return utils.SuccessResponse(c, fiber.StatusOK, response)
}

// GetSaleDetail is the public order page, looked up by sale code. One QR for
// the whole sale, same payload the door scanner reads.
func GetSaleDetail(c *fiber.Ctx) error {
	saleCode := c.Params("saleCode")

	var sale model.Sale
	if err := database.DB.
		Preload("Tickets").
		Preload("Items").
		Preload("Items.TicketType").
		Preload("Event").
		Where("public_code = ?", saleCode).
		First(&sale).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.MSG_SALE_NOT_FOUND, err)
	}

	items := []fiber.Map{}
	for _, item := range sale.Items {
		name := ""
		if item.TicketType != nil {
			name = item.TicketType.Name
		}
		items = append(items, fiber.Map{
			"name":      name,
			"quantity":  item.Quantity,
			"unitPrice": item.UnitPrice,
		})
	}

	tickets := []fiber.Map{}
	for _, ticket := range sale.Tickets {
		tickets = append(tickets, fiber.Map{
			"ticketCode":  ticket.TicketCode,
			"status":      ticket.Status,
			"tableNumber": ticket.TableNumber,
			"seatNumber":  ticket.SeatNumber,
			"holderName":  ticket.HolderName,
		})
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"saleCode":      sale.PublicCode,
		"eventName":     sale.Event.Name,
		"eventDate":     sale.Event.StartsAt.Format("15:04 - 02/01/2006"),
		"venue":         sale.Event.Venue,
		"items":         items,
		"tickets":       tickets,
		"totalAmount":   sale.TotalAmount,
		"serviceFee":    sale.ServiceFee,
		"paymentMethod": sale.PaymentMethod,
		"status":        sale.Status,
		"paidAt":        sale.PaidAt,
		"buyerName":     sale.BuyerName,
		"buyerEmail":    sale.BuyerEmail,
		"qrCode":        saleQRBase64(sale.PublicCode),
	})
}

// GetSalesAdmin lists sales for the dashboard with pagination.
func GetSalesAdmin(c *fiber.Ctx) error {
	var input model.Pagination
	if err := c.QueryParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query", err)
	}

	status := c.Query("status")
	db := database.DB

	query := db.Model(&model.Sale{}).Preload("Event").Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var totalCount int64
	query.Count(&totalCount)

	var sales []model.Sale
	if err := utils.ApplyPagination(query, input.Limit, input.Page).Find(&sales).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Could not load sales", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.ResponseCustom{
		Rows:       sales,
		Limit:      input.Limit,
		Page:       input.Page,
		TotalCount: totalCount,
	})
}
