package handler

import (
	"errors"
	"os"

	"somnus_tickets/constants"
	"somnus_tickets/helper"
	"somnus_tickets/model"
	"somnus_tickets/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Login authenticates an admin account.
func Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	loginInput := new(LoginInput)
	if err := c.BodyParser(loginInput); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.MISSING_LOGIN_INPUT, err)
	}

	if loginInput.Username == "" || loginInput.Password == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.MISSING_LOGIN_INPUT, errors.New("username and password are required"))
	}

	account, err := helper.GetAccountByUsername(loginInput.Username)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if account == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.INVALID_USERNAME, errors.New("username not exists"))
	}

	if !helper.CheckPasswordHash(loginInput.Password, account.Password) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.INVALID_PASSWORD, errors.New("password does not match username"))
	}

	if !account.Active {
		return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ACCOUNT_NOT_ACTIVE, errors.New("active false"))
	}

	tokenClaim := model.TokenClaim{
		AccountId: account.ID,
		Email:     account.Username,
		Role:      account.Role,
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
		"role": account.Role,
	})
}

// RefreshToken rotates the admin token pair from the refresh cookie.
func RefreshToken(c *fiber.Ctx) error {
	refresh := c.Cookies("refresh_token")
	if refresh == "" {
		return utils.ErrorResponse(c, 401, "Missing refresh token", nil)
	}

	token, err := jwt.Parse(refresh, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return utils.ErrorResponse(c, 401, "Invalid refresh token", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	tokenClaim := model.TokenClaim{}
	if v, ok := claims["accountId"].(float64); ok {
		tokenClaim.AccountId = uint(v)
	}
	if v, ok := claims["customerId"].(float64); ok {
		tokenClaim.CustomerId = uint(v)
	}
	if v, ok := claims["email"].(string); ok {
		tokenClaim.Email = v
	}
	if v, ok := claims["role"].(string); ok {
		tokenClaim.Role = v
	}

	newAccess, err := helper.GenerateAccessToken(tokenClaim)
	if err != nil {
		return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, err)
	}
	newRefresh, err := helper.GenerateRefreshToken(tokenClaim)
	if err != nil {
		return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, err)
	}

	c.Cookie(&fiber.Cookie{Name: "access_token", Value: newAccess, HTTPOnly: true, SameSite: "None", Path: "/"})
	c.Cookie(&fiber.Cookie{Name: "refresh_token", Value: newRefresh, HTTPOnly: true, SameSite: "None", Path: "/"})

	return utils.SuccessResponse(c, 200, model.TokenData{AccessToken: newAccess, RefreshToken: newRefresh})
}

// Me returns the logged-in admin principal.
func Me(c *fiber.Ctx) error {
	claim := helper.ClaimFromToken(c)
	if claim.AccountId == 0 {
		return utils.ErrorResponse(c, 401, constants.UNAUTHORIZED, nil)
	}
	return utils.SuccessResponse(c, 200, claim)
}
