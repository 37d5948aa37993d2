package handler

import (
	"errors"
	"time"

	"somnus_tickets/database"
	"somnus_tickets/helper"
	"somnus_tickets/model"
	"somnus_tickets/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ScanTicket is the door check-in. The ISSUED→USED flip is a conditional
// single-row update, so a replayed scan of the same code loses the race and
// reports when the ticket was first used.
func ScanTicket(c *fiber.Ctx) error {
	input := c.Locals("input").(model.ScanTicketInput)
	db := database.DB

	now := time.Now()
	result := db.Model(&model.Ticket{}).
		Where("ticket_code = ? AND status = ?", input.TicketCode, helper.TicketIssued).
		Updates(map[string]any{
			"status":  helper.TicketUsed,
			"used_at": now,
		})
	if result.Error != nil {
		return utils.ErrorResponse(c, 500, "Scan failed", result.Error)
	}

	var ticket model.Ticket
	if err := db.Preload("TicketType").Where("ticket_code = ?", input.TicketCode).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, 404, "Unknown ticket code", err)
		}
		return utils.ErrorResponse(c, 500, "Scan failed", err)
	}

	if result.RowsAffected == 0 {
		switch ticket.Status {
		case helper.TicketUsed:
			return utils.ErrorResponse(c, 409, "Ticket already used at "+ticket.UsedAt.Format("15:04:05"), nil)
		case helper.TicketCancelled:
			return utils.ErrorResponse(c, 410, "Ticket was cancelled", nil)
		default:
			return utils.ErrorResponse(c, 409, "Ticket is not valid for entry", nil)
		}
	}

	RecordTicketScan(ticket.EventID)

	typeName := ""
	if ticket.TicketType != nil {
		typeName = ticket.TicketType.Name
	}
	return utils.SuccessResponse(c, 200, fiber.Map{
		"ticketCode":  ticket.TicketCode,
		"holderName":  ticket.HolderName,
		"ticketType":  typeName,
		"tableNumber": ticket.TableNumber,
		"seatNumber":  ticket.SeatNumber,
		"checkedInAt": now,
	})
}

// ScanSale checks in every remaining ISSUED ticket of a sale at once, for
// groups arriving together with the single sale QR.
func ScanSale(c *fiber.Ctx) error {
	saleCode := c.Params("saleCode")
	db := database.DB

	var sale model.Sale
	if err := db.Preload("Tickets").
		Where("public_code = ? AND status = ?", saleCode, helper.SaleCompleted).
		First(&sale).Error; err != nil {
		return utils.ErrorResponse(c, 404, "Unknown or unpaid sale code", err)
	}

	now := time.Now()
	result := db.Model(&model.Ticket{}).
		Where("sale_id = ? AND status = ?", sale.ID, helper.TicketIssued).
		Updates(map[string]any{
			"status":  helper.TicketUsed,
			"used_at": now,
		})
	if result.Error != nil {
		return utils.ErrorResponse(c, 500, "Scan failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, 409, "All tickets of this sale were already used", nil)
	}

	RecordTicketScan(sale.EventID)

	return utils.SuccessResponse(c, 200, fiber.Map{
		"saleCode":   sale.PublicCode,
		"buyerName":  sale.BuyerName,
		"checkedIn":  result.RowsAffected,
		"totalCount": len(sale.Tickets),
	})
}

// GetTicketsAdmin lists tickets with filters for the dashboard.
func GetTicketsAdmin(c *fiber.Ctx) error {
	var input model.Pagination
	if err := c.QueryParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query", err)
	}

	db := database.DB
	query := db.Model(&model.Ticket{}).Preload("TicketType").Order("issued_at desc")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if eventID := c.QueryInt("eventId"); eventID > 0 {
		query = query.Where("event_id = ?", eventID)
	}

	var totalCount int64
	query.Count(&totalCount)

	var tickets []model.Ticket
	if err := utils.ApplyPagination(query, input.Limit, input.Page).Find(&tickets).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Could not load tickets", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.ResponseCustom{
		Rows:       tickets,
		Limit:      input.Limit,
		Page:       input.Page,
		TotalCount: totalCount,
	})
}
