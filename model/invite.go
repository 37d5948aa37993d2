package model

import "time"

// TableSlotInvite reserves one seat of a sold table for a named guest until
// they pay or the deadline passes. One row per (event, table, seat).
type TableSlotInvite struct {
	DTO
	EventID      uint        `gorm:"not null;uniqueIndex:idx_event_table_seat" json:"eventId"`
	TicketTypeID uint        `gorm:"not null" json:"ticketTypeId"`
	TableNumber  int         `gorm:"not null;uniqueIndex:idx_event_table_seat" json:"tableNumber"`
	SeatNumber   int         `gorm:"not null;uniqueIndex:idx_event_table_seat" json:"seatNumber"`
	HostSaleID   uint        `gorm:"not null;index" json:"hostSaleId"`
	GuestName    string      `gorm:"not null" json:"guestName"`
	GuestEmail   string      `gorm:"not null" json:"guestEmail"`
	InviteToken  string      `gorm:"uniqueIndex;size:64" json:"inviteToken"`
	Status       string      `gorm:"not null;default:'PENDING';index" json:"status"` // PENDING, PAID, EXPIRED
	ExpiresAt    time.Time   `gorm:"not null" json:"expiresAt"`
	PaidSaleID   *uint       `json:"paidSaleId,omitempty"`
	PaidAt       *time.Time  `json:"paidAt,omitempty"`
	TicketType   *TicketType `gorm:"foreignKey:TicketTypeID" json:"ticketType,omitempty"`
	HostSale     *Sale       `gorm:"foreignKey:HostSaleID" json:"-"`
}

type CreateInviteInput struct {
	SaleCode    string `json:"saleCode" validate:"required"`
	TableNumber int    `json:"tableNumber" validate:"omitempty,gt=0"` // optional when the sale has one table
	SeatNumber  int    `json:"seatNumber" validate:"required,gt=0"`
	GuestName   string `json:"guestName" validate:"required,min=2"`
	GuestEmail  string `json:"guestEmail" validate:"required,email"`
}
