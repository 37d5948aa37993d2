package helper

import (
	"errors"

	"somnus_tickets/model"

	"gorm.io/gorm"
)

var (
	ErrSoldOut   = errors.New("ticket type sold out")
	ErrSeatTaken = errors.New("table seat already taken")
)

// IncrementSold reserves qty units of a ticket type and returns the sold
// count after the increment. The capacity guard lives in the UPDATE itself,
// so concurrent callers serialize on the row and the database never lets
// sold_quantity pass max_quantity — no in-process locking, safe across
// server instances.
//
// Must run inside the caller's transaction so the increment commits or rolls
// back together with the tickets it backs.
func IncrementSold(tx *gorm.DB, ticketTypeID uint, qty int) (int, error) {
	result := tx.Model(&model.TicketType{}).
		Where("id = ? AND sold_quantity + ? <= max_quantity", ticketTypeID, qty).
		UpdateColumn("sold_quantity", gorm.Expr("sold_quantity + ?", qty))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrSoldOut
	}

	// Read back inside the same tx. The UPDATE above holds the row lock, so
	// this observes our own increment and nothing newer.
	var tt model.TicketType
	if err := tx.Select("sold_quantity").First(&tt, ticketTypeID).Error; err != nil {
		return 0, err
	}
	return tt.SoldQuantity, nil
}

// DecrementSold releases qty units, clamped at zero. Used when a completed
// sale is cancelled by an admin.
func DecrementSold(tx *gorm.DB, ticketTypeID uint, qty int) error {
	result := tx.Model(&model.TicketType{}).
		Where("id = ? AND sold_quantity >= ?", ticketTypeID, qty).
		UpdateColumn("sold_quantity", gorm.Expr("sold_quantity - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("sold quantity underflow")
	}
	return nil
}

// RemainingQuantity is a read-only availability snapshot for listings. Not a
// reservation: checkout still goes through IncrementSold.
func RemainingQuantity(db *gorm.DB, ticketTypeID uint) (int, error) {
	var tt model.TicketType
	if err := db.Select("max_quantity", "sold_quantity").First(&tt, ticketTypeID).Error; err != nil {
		return 0, err
	}
	return tt.MaxQuantity - tt.SoldQuantity, nil
}
