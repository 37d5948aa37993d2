package model

type Payment struct {
	DTO
	SaleID      uint    `gorm:"not null;index" json:"saleId"`
	Amount      float64 `gorm:"not null" json:"amount"`
	PaymentCode string  `gorm:"unique" json:"paymentCode"`
	Status      string  `gorm:"default:PENDING" json:"status"` // PENDING, PAID, FAILED
	Method      string  `json:"method"`

	Sale Sale `gorm:"foreignKey:SaleID" json:"-"`
}

type CreatePaymentInput struct {
	SaleCode string `json:"saleCode" validate:"required"`
	Method   string `json:"method" validate:"required,oneof=PAYGATE CASH"`
}

type GatewayConfig struct {
	MerchantCode string
	HashSecret   string
	BaseURL      string
	ReturnURL    string
	IPNURL       string
}

type GatewayRequest struct {
	Amount    int64  `json:"amount"` // minor units
	OrderInfo string `json:"orderInfo"`
	TxnRef    string `json:"txnRef"`
	IPAddr    string `json:"ipAddr"`
}

type GatewayResponse struct {
	IsSuccess bool   `json:"isSuccess"`
	TxnRef    string `json:"txnRef"`
	Amount    int64  `json:"amount"` // minor units
	Status    string `json:"status"`
	Message   string `json:"message"`
}
