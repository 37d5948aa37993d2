package model

import "time"

type Event struct {
	DTO
	Name        string         `gorm:"not null" validate:"required" json:"name"`
	Slug        string         `gorm:"uniqueIndex;size:120" json:"slug"`
	Description string         `json:"description"`
	Venue       string         `json:"venue"`
	StartsAt    time.Time      `gorm:"not null" json:"startsAt"`
	EndsAt      time.Time      `gorm:"not null" json:"endsAt"`
	IsActive    bool           `gorm:"default:false;index" json:"isActive"`
	TicketTypes []TicketType   `gorm:"foreignKey:EventID" json:"ticketTypes,omitempty"`
	Gallery     []GalleryImage `gorm:"foreignKey:EventID" json:"gallery,omitempty"`
}

type CreateEventInput struct {
	Name        string    `json:"name" validate:"required,min=3"`
	Description string    `json:"description" validate:"omitempty"`
	Venue       string    `json:"venue" validate:"omitempty"`
	StartsAt    time.Time `json:"startsAt" validate:"required"`
	EndsAt      time.Time `json:"endsAt" validate:"required,gtfield=StartsAt"`
}

type EditEventInput struct {
	Name        *string    `json:"name" validate:"omitempty,min=3"`
	Description *string    `json:"description"`
	Venue       *string    `json:"venue"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

// TicketType is a priced admission category. For table types a unit is a
// whole table; SeatsPerTable seats hang off each sold table.
type TicketType struct {
	DTO
	EventID       uint    `gorm:"not null;index" json:"eventId"`
	Name          string  `gorm:"not null" validate:"required" json:"name"`
	Description   string  `json:"description"`
	Price         float64 `gorm:"not null" validate:"required,gt=0" json:"price"`
	MaxQuantity   int     `gorm:"not null" validate:"required,gt=0" json:"maxQuantity"`
	SoldQuantity  int     `gorm:"not null;default:0" json:"soldQuantity"`
	IsTable       bool    `gorm:"default:false" json:"isTable"`
	SeatsPerTable int     `gorm:"default:0" json:"seatsPerTable"`
	SeatPrice     float64 `gorm:"default:0" json:"seatPrice"`
	Event         *Event  `gorm:"foreignKey:EventID" json:"-"`
}

type CreateTicketTypeInput struct {
	EventID       uint    `json:"eventId" validate:"required,gt=0"`
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	MaxQuantity   int     `json:"maxQuantity" validate:"required,gt=0"`
	IsTable       bool    `json:"isTable"`
	SeatsPerTable int     `json:"seatsPerTable" validate:"required_if=IsTable true,omitempty,gt=0"`
	SeatPrice     float64 `json:"seatPrice" validate:"required_if=IsTable true,omitempty,gt=0"`
}

type EditTicketTypeInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	MaxQuantity *int     `json:"maxQuantity" validate:"omitempty,gt=0"`
	SeatPrice   *float64 `json:"seatPrice" validate:"omitempty,gt=0"`
}

type GalleryImage struct {
	DTO
	EventID   *uint  `gorm:"index" json:"eventId,omitempty"`
	Url       string `gorm:"not null" json:"url"`
	PublicID  string `gorm:"not null" json:"publicId"`
	Caption   string `json:"caption"`
	SortOrder int    `gorm:"default:0" json:"sortOrder"`
}
