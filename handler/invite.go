package handler

import (
	"errors"
	"fmt"
	"os"
	"time"

	"somnus_tickets/constants"
	"somnus_tickets/database"
	"somnus_tickets/helper"
	"somnus_tickets/model"
	"somnus_tickets/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateInvite lets the host of a completed table sale reserve one seat for
// a named guest. Seat 1 belongs to the host; one PENDING or PAID invite may
// exist per (event, table, seat) — the composite unique index plus a
// conditional reclaim of EXPIRED rows enforce that without locks.
func CreateInvite(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateInviteInput)
	db := database.DB

	var sale model.Sale
	if err := db.Preload("Tickets").Preload("Event").
		Where("public_code = ? AND status = ?", input.SaleCode, helper.SaleCompleted).
		First(&sale).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.MSG_SALE_NOT_FOUND, err)
	}

	if customer, ok := c.Locals("customer").(*model.Customer); ok && customer != nil {
		if sale.CustomerID != nil && *sale.CustomerID != customer.ID {
			return utils.ErrorResponse(c, 403, "Sale does not belong to you", nil)
		}
	}

	// collect the sale's table tickets, a sale can hold several tables
	var tableTickets []*model.Ticket
	for i := range sale.Tickets {
		if sale.Tickets[i].TableNumber != nil {
			tableTickets = append(tableTickets, &sale.Tickets[i])
		}
	}
	if len(tableTickets) == 0 {
		return utils.ErrorResponse(c, 400, "Sale has no table to invite guests to", nil)
	}

	var tableTicket *model.Ticket
	switch {
	case input.TableNumber > 0:
		for _, ticket := range tableTickets {
			if *ticket.TableNumber == input.TableNumber {
				tableTicket = ticket
				break
			}
		}
		if tableTicket == nil {
			return utils.ErrorResponse(c, 404,
				fmt.Sprintf("Sale has no table %d", input.TableNumber), nil)
		}
	case len(tableTickets) > 1:
		return utils.ErrorResponse(c, 400, "Sale has several tables, specify tableNumber", nil)
	default:
		tableTicket = tableTickets[0]
	}

	var tt model.TicketType
	if err := db.First(&tt, tableTicket.TicketTypeID).Error; err != nil {
		return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, err)
	}
	if input.SeatNumber < 2 || input.SeatNumber > tt.SeatsPerTable {
		return utils.ErrorResponse(c, 400,
			fmt.Sprintf("Seat must be between 2 and %d (seat 1 is the host)", tt.SeatsPerTable), nil)
	}

	invite := model.TableSlotInvite{
		EventID:      sale.EventID,
		TicketTypeID: tt.ID,
		TableNumber:  *tableTicket.TableNumber,
		SeatNumber:   input.SeatNumber,
		HostSaleID:   sale.ID,
		GuestName:    input.GuestName,
		GuestEmail:   input.GuestEmail,
		InviteToken:  helper.NewInviteToken(),
		Status:       helper.InvitePending,
		ExpiresAt:    time.Now().Add(helper.InviteTTL),
	}

	if err := db.Create(&invite).Error; err != nil {
		// seat row exists; reclaim it only if the previous invite expired
		result := db.Model(&model.TableSlotInvite{}).
			Where("event_id = ? AND table_number = ? AND seat_number = ? AND status = ?",
				sale.EventID, invite.TableNumber, input.SeatNumber, helper.InviteExpired).
			Updates(map[string]any{
				"status":       helper.InvitePending,
				"guest_name":   input.GuestName,
				"guest_email":  input.GuestEmail,
				"invite_token": invite.InviteToken,
				"host_sale_id": sale.ID,
				"expires_at":   invite.ExpiresAt,
				"paid_sale_id": nil,
				"paid_at":      nil,
			})
		if result.Error != nil {
			return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, result.Error)
		}
		if result.RowsAffected == 0 {
			return utils.ErrorResponse(c, 409, "Seat already has an active invite", helper.ErrSeatTaken)
		}
	}

	inviteLink := fmt.Sprintf("%s/invite/%s", os.Getenv("APP_URL"), invite.InviteToken)
	utils.SendInviteEmail(input.GuestEmail, input.GuestName, sale.BuyerName, sale.Event.Name, inviteLink, invite.ExpiresAt)

	return utils.SuccessResponse(c, 201, fiber.Map{
		"inviteToken": invite.InviteToken,
		"tableNumber": invite.TableNumber,
		"seatNumber":  invite.SeatNumber,
		"expiresAt":   invite.ExpiresAt,
	})
}

// GetInvite returns the invite state for the guest-facing page. Accessing a
// stale PENDING invite expires it before reporting.
func GetInvite(c *fiber.Ctx) error {
	token := c.Params("token")

	invite, err := helper.GetInviteByToken(database.DB, token)
	if err != nil {
		if errors.Is(err, helper.ErrInviteExpired) {
			return utils.ErrorResponse(c, 410, constants.MSG_INVITE_EXPIRED, err)
		}
		return inviteErrorResponse(c, err)
	}

	seatPrice := 0.0
	typeName := ""
	if invite.TicketType != nil {
		seatPrice = invite.TicketType.SeatPrice
		typeName = invite.TicketType.Name
	}

	var event model.Event
	database.DB.First(&event, invite.EventID)

	return utils.SuccessResponse(c, 200, fiber.Map{
		"guestName":   invite.GuestName,
		"eventName":   event.Name,
		"eventDate":   event.StartsAt,
		"ticketType":  typeName,
		"tableNumber": invite.TableNumber,
		"seatNumber":  invite.SeatNumber,
		"seatPrice":   seatPrice,
		"status":      invite.Status,
		"expiresAt":   invite.ExpiresAt,
	})
}

// GetSaleInvites lists the host's invites for a completed table sale.
func GetSaleInvites(c *fiber.Ctx) error {
	saleCode := c.Params("saleCode")
	db := database.DB

	var sale model.Sale
	if err := db.Where("public_code = ?", saleCode).First(&sale).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.MSG_SALE_NOT_FOUND, err)
	}

	var invites []model.TableSlotInvite
	if err := db.Where("host_sale_id = ?", sale.ID).Order("seat_number").Find(&invites).Error; err != nil {
		return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, err)
	}

	// expire lazily so the host sees fresh states
	now := time.Now()
	for i := range invites {
		if invites[i].Status == helper.InvitePending && now.After(invites[i].ExpiresAt) {
			result := db.Model(&model.TableSlotInvite{}).
				Where("id = ? AND status = ?", invites[i].ID, helper.InvitePending).
				Update("status", helper.InviteExpired)
			if result.Error == nil && result.RowsAffected > 0 {
				invites[i].Status = helper.InviteExpired
			}
		}
	}

	return utils.SuccessResponse(c, 200, invites)
}
