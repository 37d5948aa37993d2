package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"somnus_tickets/config"
	"somnus_tickets/constants"
	"somnus_tickets/database"
	"somnus_tickets/helper"
	"somnus_tickets/model"
	"somnus_tickets/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

func RegisterCustomer(c *fiber.Ctx) error {
	db := database.DB

	customerInput, ok := c.Locals("input").(model.RegisterCustomerInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, nil)
	}

	existing, err := helper.GetCustomerByEmail(customerInput.Email)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if existing != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Email is already registered", nil)
	}

	hash, err := helper.HashPassword(customerInput.Password)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	newCustomer := new(model.Customer)
	copier.Copy(&newCustomer, &customerInput)
	newCustomer.Password = hash
	newCustomer.Role = constants.ROLE_CLIENTE
	newCustomer.IsActive = true

	if err := db.Create(&newCustomer).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Email is already registered", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, newCustomer)
}

func CustomerLogin(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	loginRequest := new(LoginRequest)

	if err := c.BodyParser(loginRequest); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.MISSING_LOGIN_INPUT, err)
	}
	if loginRequest.Email == "" || loginRequest.Password == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.MISSING_LOGIN_INPUT, errors.New("email and password are required"))
	}

	customer, err := helper.GetCustomerByEmail(loginRequest.Email)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if customer == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Email not registered", errors.New("customer not exists"))
	}

	if !helper.CheckPasswordHash(loginRequest.Password, customer.Password) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.INVALID_PASSWORD, errors.New("password does not match email"))
	}
	if !customer.IsActive {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ACCOUNT_NOT_ACTIVE, errors.New("active false"))
	}

	tokenClaim := model.TokenClaim{
		CustomerId: customer.ID,
		Email:      customer.Email,
		Role:       customer.Role,
	}
	token, err := helper.GenerateAccessToken(tokenClaim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	refreshToken, err := helper.GenerateRefreshToken(tokenClaim)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		HTTPOnly: true,
		SameSite: "None",
		Secure:   false,
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HTTPOnly: true,
		SameSite: "None",
		Secure:   false,
		Path:     "/",
	})

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"name":  customer.Name,
		"email": customer.Email,
		"role":  customer.Role,
	})
}

func GetCurrentCustomer(c *fiber.Ctx) error {
	claim, customer := helper.GetInfoCustomerFromToken(c)
	if claim.CustomerId == 0 || customer.ID == 0 {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.UNAUTHORIZED, nil)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, customer)
}

func ChangePasswordCustomer(c *fiber.Ctx) error {
	db := database.DB

	input, ok := c.Locals("input").(model.CustomerChangePassword)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, nil)
	}

	claim, customer := helper.GetInfoCustomerFromToken(c)
	if claim.CustomerId == 0 || customer.ID == 0 {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.UNAUTHORIZED, nil)
	}

	if !helper.CheckPasswordHash(input.CurrentPassword, customer.Password) {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Current password is incorrect", nil)
	}

	hash, err := helper.HashPassword(input.NewPassword)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	if err := db.Model(&model.Customer{}).Where("id = ?", customer.ID).
		Update("password", hash).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Password changed"})
}

// ForgotPassword emails a one-time reset link. Responds 200 for unknown
// emails too, so the endpoint cannot be used to discover registered accounts.
func ForgotPassword(c *fiber.Ctx) error {
	db := database.DB

	emailAddr, ok := c.Locals("email").(string)
	if !ok || emailAddr == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Email is required", nil)
	}

	wait, err := utils.CheckResetCooldown(c.Context(), redisClient, emailAddr)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if wait > 0 {
		return utils.ErrorResponse(c, fiber.StatusTooManyRequests,
			fmt.Sprintf("Please wait %d seconds before requesting another reset", int(wait.Seconds())), nil)
	}

	customer, err := helper.GetCustomerByEmail(emailAddr)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if customer != nil {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
		token := hex.EncodeToString(raw)

		resetToken := model.PasswordResetToken{
			CustomerId: customer.ID,
			Token:      token,
			ExpiresAt:  time.Now().Add(30 * time.Minute).Unix(),
		}
		if err := db.Create(&resetToken).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}

		resetLink := fmt.Sprintf("%s/reset-password?token=%s", config.Config("APP_URL"), token)
		utils.SendPasswordResetEmail(customer.Email, resetLink)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"message": "If the email is registered, a reset link has been sent",
	})
}

func ResetPassword(c *fiber.Ctx) error {
	db := database.DB

	token, _ := c.Locals("resetToken").(string)
	newPassword, _ := c.Locals("newPassword").(string)
	if token == "" || newPassword == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Token and new password are required", nil)
	}

	var resetToken model.PasswordResetToken
	if err := db.Where("token = ? AND used = false", token).First(&resetToken).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Invalid or already used reset token", nil)
	}
	if time.Now().Unix() > resetToken.ExpiresAt {
		return utils.ErrorResponse(c, fiber.StatusGone, "Reset token has expired", nil)
	}

	hash, err := helper.HashPassword(newPassword)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Single-use: the flip guards against a replayed token.
		res := tx.Model(&model.PasswordResetToken{}).
			Where("id = ? AND used = false", resetToken.ID).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("reset token already used")
		}
		return tx.Model(&model.Customer{}).
			Where("id = ?", resetToken.CustomerId).
			Update("password", hash).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Could not reset password", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Password has been reset"})
}
