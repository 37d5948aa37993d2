package helper

import (
	"errors"
	"strings"
	"time"

	"somnus_tickets/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SalePending   = "PENDING"
	SaleCompleted = "COMPLETED"
	SaleCancelled = "CANCELLED"

	TicketIssued    = "ISSUED"
	TicketUsed      = "USED"
	TicketCancelled = "CANCELLED"
)

// PendingSaleTTL is how long an unpaid sale holds its PENDING state before
// the sweeper cancels it. Matches the gateway link expiry.
const PendingSaleTTL = 30 * time.Minute

var (
	ErrAlreadyCompleted = errors.New("sale already completed")
	ErrSaleNotPending   = errors.New("sale is not pending")
)

func NewSaleCode() string {
	return "SL-" + strings.ToUpper(uuid.New().String()[:8])
}

func NewTicketCode() string {
	return "TKT-" + strings.ToUpper(uuid.New().String()[:12])
}

// ServiceFeeRate is charged on top of the line items.
const ServiceFeeRate = 0.05

// CompleteSale settles a paid sale: flips PENDING→COMPLETED, applies the
// inventory increments for every line item and issues the tickets, all in
// one transaction. Any capacity failure aborts the whole completion — no
// partial issuance. A replayed confirmation for the same sale finds the
// status already flipped and returns ErrAlreadyCompleted without touching
// anything.
func CompleteSale(db *gorm.DB, saleCode string, method string) (*model.Sale, error) {
	var sale model.Sale
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Preload("Items").
			Preload("Items.TicketType").
			Preload("Event").
			Where("public_code = ?", saleCode).
			First(&sale).Error; err != nil {
			return err
		}

		now := time.Now()
		result := tx.Model(&model.Sale{}).
			Where("id = ? AND status = ?", sale.ID, SalePending).
			Updates(map[string]any{
				"status":         SaleCompleted,
				"paid_at":        now,
				"payment_method": method,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// the pre-read status is stale when a concurrent confirmation
			// won the flip between the read and the update, re-read it
			var current model.Sale
			if err := tx.Select("status").First(&current, sale.ID).Error; err != nil {
				return err
			}
			if current.Status == SaleCompleted {
				return ErrAlreadyCompleted
			}
			// cancelled by the sweeper
			return ErrSaleNotPending
		}

		var tickets []model.Ticket
		for _, item := range sale.Items {
			newSold, err := IncrementSold(tx, item.TicketTypeID, item.Quantity)
			if err != nil {
				return err
			}

			for i := 0; i < item.Quantity; i++ {
				ticket := model.Ticket{
					TicketCode:   NewTicketCode(),
					Status:       TicketIssued,
					Price:        item.UnitPrice,
					IssuedAt:     now,
					SaleID:       sale.ID,
					EventID:      sale.EventID,
					TicketTypeID: item.TicketTypeID,
					HolderName:   sale.BuyerName,
				}
				if item.TicketType != nil && item.TicketType.IsTable {
					// a unit of a table type is a whole table; the host
					// takes seat 1, the rest go out as invites
					tableNumber := newSold - item.Quantity + i + 1
					ticket.TableNumber = &tableNumber
					seat := 1
					ticket.SeatNumber = &seat
				}
				tickets = append(tickets, ticket)
			}
		}

		if err := tx.Create(&tickets).Error; err != nil {
			return err
		}

		sale.Status = SaleCompleted
		sale.PaidAt = &now
		sale.PaymentMethod = method
		sale.Tickets = tickets
		return nil
	})
	if err != nil {
		return &sale, err
	}
	return &sale, nil
}

// ExpireStalePendingSales cancels PENDING sales older than PendingSaleTTL.
// Late gateway confirmations for a swept sale hit the conditional flip in
// CompleteSale and become no-ops.
func ExpireStalePendingSales(db *gorm.DB) (int64, error) {
	cutoff := time.Now().Add(-PendingSaleTTL)
	result := db.Model(&model.Sale{}).
		Where("status = ? AND created_at < ?", SalePending, cutoff).
		Updates(map[string]any{
			"status":       SaleCancelled,
			"cancelled_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
