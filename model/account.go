package model

type Account struct {
	DTO
	Username string `gorm:"unique;not null" validate:"required" json:"username"`
	Password string `gorm:"not null" validate:"required" json:"-"`
	Role     string `gorm:"not null;default:'ADMIN'" json:"role"`
	Active   bool   `gorm:"default:true" json:"active"`
}

type Customer struct {
	DTO
	Name     string `gorm:"not null" validate:"required" json:"name"`
	Email    string `gorm:"unique;not null" validate:"required,email" json:"email"`
	Phone    string `json:"phone"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"not null;default:'CLIENTE'" json:"role"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

type RegisterCustomerInput struct {
	Name           string `json:"name" validate:"required,min=2"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"omitempty,min=7"`
	Password       string `json:"password" validate:"required,min=6"`
	RepeatPassword string `json:"repeatPassword" validate:"required,eqfield=Password"`
}

type CustomerChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	RepeatPassword  string `json:"repeatPassword" validate:"required,eqfield=NewPassword"`
}

type PasswordResetToken struct {
	DTO
	CustomerId uint      `gorm:"not null" json:"customerId"`
	Token      string    `gorm:"uniqueIndex;size:64" json:"-"`
	ExpiresAt  int64     `gorm:"not null" json:"expiresAt"`
	Used       bool      `gorm:"default:false" json:"used"`
	Customer   *Customer `gorm:"foreignKey:CustomerId" json:"-"`
}
