package handler

import (
	"time"

	"somnus_tickets/constants"
	"somnus_tickets/database"
	"somnus_tickets/helper"
	"somnus_tickets/model"
	"somnus_tickets/utils"

	"github.com/gofiber/fiber/v2"
)

// GetAdminStats powers the dashboard overview cards.
func GetAdminStats(c *fiber.Ctx) error {
	db := database.DB

	type Stats struct {
		Events    int64 `json:"events"`
		Customers int64 `json:"customers"`
		Sales     int64 `json:"sales"`

		TodayRevenue  float64 `json:"todayRevenue"`
		TodaySales    int64   `json:"todaySales"`
		TodayCheckins int64   `json:"todayCheckins"`
		RevenueGrowth float64 `json:"revenueGrowth"` // %
		SalesGrowth   float64 `json:"salesGrowth"`   // %
	}

	var stats Stats
	today := time.Now().In(time.Local)
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	todayEnd := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, today.Location())

	db.Model(&model.Event{}).Count(&stats.Events)
	db.Model(&model.Customer{}).Count(&stats.Customers)
	db.Model(&model.Sale{}).Where("status = ?", helper.SaleCompleted).Count(&stats.Sales)

	db.Raw(`
        SELECT COALESCE(SUM(total_amount), 0)
        FROM sales
        WHERE status = 'COMPLETED'
          AND paid_at BETWEEN ? AND ?
    `, todayStart, todayEnd).Scan(&stats.TodayRevenue)

	db.Model(&model.Sale{}).
		Where("status = ? AND paid_at BETWEEN ? AND ?", helper.SaleCompleted, todayStart, todayEnd).
		Count(&stats.TodaySales)

	db.Model(&model.Ticket{}).
		Where("status = ? AND used_at BETWEEN ? AND ?", helper.TicketUsed, todayStart, todayEnd).
		Count(&stats.TodayCheckins)

	yesterdayStart := todayStart.AddDate(0, 0, -1)
	yesterdayEnd := todayEnd.AddDate(0, 0, -1)

	var yesterdayRevenue float64
	var yesterdaySales int64

	db.Raw(`
        SELECT COALESCE(SUM(total_amount), 0)
        FROM sales
        WHERE status = 'COMPLETED'
          AND paid_at BETWEEN ? AND ?
    `, yesterdayStart, yesterdayEnd).Scan(&yesterdayRevenue)

	db.Model(&model.Sale{}).
		Where("status = ? AND paid_at BETWEEN ? AND ?", helper.SaleCompleted, yesterdayStart, yesterdayEnd).
		Count(&yesterdaySales)

	stats.RevenueGrowth = utils.CalculateGrowth(stats.TodayRevenue, yesterdayRevenue)
	stats.SalesGrowth = utils.CalculateGrowth(float64(stats.TodaySales), float64(yesterdaySales))

	return utils.SuccessResponse(c, fiber.StatusOK, stats)
}

// GetEventStats breaks one event down per ticket type, with check-in and
// invite numbers for the door team.
func GetEventStats(c *fiber.Ctx) error {
	id, ok := c.Locals("inputId").(int)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, nil)
	}
	db := database.DB

	var event model.Event
	if err := db.Preload("TicketTypes").First(&event, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.MSG_EVENT_NOT_FOUND, err)
	}

	type TypeRow struct {
		TicketTypeID uint    `json:"ticketTypeId"`
		Name         string  `json:"name"`
		Sold         int     `json:"sold"`
		Max          int     `json:"max"`
		Revenue      float64 `json:"revenue"`
	}

	rows := make([]TypeRow, 0, len(event.TicketTypes))
	var totalRevenue float64
	for _, tt := range event.TicketTypes {
		var revenue float64
		db.Raw(`
            SELECT COALESCE(SUM(si.quantity * si.unit_price), 0)
            FROM sale_items si
            JOIN sales s ON s.id = si.sale_id
            WHERE si.ticket_type_id = ? AND s.status = 'COMPLETED'
        `, tt.ID).Scan(&revenue)
		totalRevenue += revenue
		rows = append(rows, TypeRow{
			TicketTypeID: tt.ID,
			Name:         tt.Name,
			Sold:         tt.SoldQuantity,
			Max:          tt.MaxQuantity,
			Revenue:      revenue,
		})
	}

	var issued, used int64
	db.Model(&model.Ticket{}).Where("event_id = ?", event.ID).Count(&issued)
	db.Model(&model.Ticket{}).Where("event_id = ? AND status = ?", event.ID, helper.TicketUsed).Count(&used)

	var invitesPending, invitesPaid int64
	db.Model(&model.TableSlotInvite{}).
		Where("event_id = ? AND status = ?", event.ID, helper.InvitePending).Count(&invitesPending)
	db.Model(&model.TableSlotInvite{}).
		Where("event_id = ? AND status = ?", event.ID, helper.InvitePaid).Count(&invitesPaid)

	var inviteRevenue float64
	db.Raw(`
        SELECT COALESCE(SUM(tt.seat_price), 0)
        FROM table_slot_invites i
        JOIN ticket_types tt ON tt.id = i.ticket_type_id
        WHERE i.event_id = ? AND i.status = 'PAID'
    `, event.ID).Scan(&inviteRevenue)

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"event":          event.Name,
		"startsAt":       event.StartsAt,
		"ticketTypes":    rows,
		"totalRevenue":   totalRevenue + inviteRevenue,
		"inviteRevenue":  inviteRevenue,
		"ticketsIssued":  issued,
		"ticketsUsed":    used,
		"invitesPending": invitesPending,
		"invitesPaid":    invitesPaid,
	})
}
