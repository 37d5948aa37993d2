package model

import "time"

type Sale struct {
	DTO
	PublicCode    string     `gorm:"uniqueIndex;size:20" json:"publicCode"`
	CustomerID    *uint      `json:"customerId,omitempty"` // nil for guest checkout
	Customer      *Customer  `json:"customer,omitempty"`
	EventID       uint       `gorm:"not null;index" json:"eventId"`
	Event         Event      `json:"event"`
	BuyerName     string     `json:"buyerName"`
	BuyerEmail    string     `gorm:"index" json:"buyerEmail"`
	BuyerPhone    string     `json:"buyerPhone"`
	TotalAmount   float64    `gorm:"not null" json:"totalAmount"`
	ServiceFee    float64    `gorm:"not null;default:0" json:"serviceFee"`
	Status        string     `gorm:"not null;default:'PENDING';index" json:"status"` // PENDING, COMPLETED, CANCELLED
	PaymentMethod string     `json:"paymentMethod"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty"`
	Items         []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
	Tickets       []Ticket   `gorm:"foreignKey:SaleID" json:"tickets,omitempty"`
}

type SaleItem struct {
	DTO
	SaleID       uint        `gorm:"not null;index" json:"saleId"`
	TicketTypeID uint        `gorm:"not null" json:"ticketTypeId"`
	Quantity     int         `gorm:"not null" json:"quantity"`
	UnitPrice    float64     `gorm:"not null" json:"unitPrice"`
	TicketType   *TicketType `gorm:"foreignKey:TicketTypeID" json:"ticketType,omitempty"`
}

type CheckoutLineInput struct {
	TicketTypeID uint `json:"ticketTypeId" validate:"required,gt=0"`
	Quantity     int  `json:"quantity" validate:"required,gt=0,lte=10"`
}

type CheckoutInput struct {
	EventID    uint                `json:"eventId" validate:"required,gt=0"`
	Lines      []CheckoutLineInput `json:"lines" validate:"required,min=1,dive"`
	BuyerName  string              `json:"buyerName" validate:"required,min=2"`
	BuyerEmail string              `json:"buyerEmail" validate:"required,email"`
	BuyerPhone string              `json:"buyerPhone" validate:"omitempty,min=7"`
}

type Ticket struct {
	DTO
	TicketCode   string      `gorm:"uniqueIndex;size:40" json:"ticketCode"`
	Status       string      `gorm:"not null;default:'ISSUED'" json:"status"` // ISSUED, USED, CANCELLED
	Price        float64     `gorm:"not null" json:"price"`
	IssuedAt     time.Time   `json:"issuedAt"`
	UsedAt       *time.Time  `json:"usedAt,omitempty"`
	TableNumber  *int        `json:"tableNumber,omitempty"`
	SeatNumber   *int        `json:"seatNumber,omitempty"`
	SaleID       uint        `gorm:"not null;index" json:"saleId"`
	EventID      uint        `gorm:"not null;index" json:"eventId"`
	TicketTypeID uint        `gorm:"not null" json:"ticketTypeId"`
	HolderName   string      `json:"holderName"`
	Sale         Sale        `gorm:"foreignKey:SaleID" json:"-"`
	Event        Event       `gorm:"foreignKey:EventID" json:"-"`
	TicketType   *TicketType `gorm:"foreignKey:TicketTypeID" json:"-"`
}

type ScanTicketInput struct {
	TicketCode string `json:"ticketCode" validate:"required"`
}

type FilterTicketInput struct {
	Pagination
	EventID uint   `json:"eventId" validate:"omitempty,gt=0"`
	Status  string `json:"status" validate:"omitempty,oneof=ISSUED USED CANCELLED"`
}
