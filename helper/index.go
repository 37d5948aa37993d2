package helper

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"time"

	"somnus_tickets/constants"
	"somnus_tickets/database"
	"somnus_tickets/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var JwtSecret = []byte(os.Getenv("JWT_SECRET"))

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func ValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func GetAccountByUsername(u string) (*model.Account, error) {
	db := database.DB
	var account model.Account
	if err := db.Where(&model.Account{Username: u}).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func GetCustomerByEmail(e string) (*model.Customer, error) {
	db := database.DB
	var customer model.Customer
	if err := db.Where(&model.Customer{Email: e}).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func GenerateAccessToken(tokenClaim model.TokenClaim) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["email"] = tokenClaim.Email
	claims["customerId"] = tokenClaim.CustomerId
	claims["accountId"] = tokenClaim.AccountId
	claims["role"] = tokenClaim.Role
	claims["exp"] = time.Now().Add(time.Minute * 60).Unix()

	return token.SignedString(JwtSecret)
}

func GenerateRefreshToken(tokenClaim model.TokenClaim) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["email"] = tokenClaim.Email
	claims["customerId"] = tokenClaim.CustomerId
	claims["accountId"] = tokenClaim.AccountId
	claims["role"] = tokenClaim.Role
	claims["exp"] = time.Now().Add(time.Hour * 24 * 7).Unix()

	return token.SignedString(JwtSecret)
}

func ParseToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return JwtSecret, nil
	})
}

// ClaimFromToken pulls the token claim out of Locals. Zero-valued claim for
// guests.
func ClaimFromToken(c *fiber.Ctx) model.TokenClaim {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return model.TokenClaim{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.TokenClaim{}
	}

	claim := model.TokenClaim{}
	if v, ok := claims["customerId"].(float64); ok {
		claim.CustomerId = uint(v)
	}
	if v, ok := claims["accountId"].(float64); ok {
		claim.AccountId = uint(v)
	}
	if v, ok := claims["email"].(string); ok {
		claim.Email = v
	}
	if v, ok := claims["role"].(string); ok {
		claim.Role = v
	}
	return claim
}

// GetInfoCustomerFromToken resolves the logged-in customer, if any.
func GetInfoCustomerFromToken(c *fiber.Ctx) (model.TokenClaim, model.Customer) {
	claim := ClaimFromToken(c)
	var customer model.Customer
	if claim.CustomerId == 0 {
		return claim, customer
	}

	db := database.DB
	if err := db.First(&customer, claim.CustomerId).Error; err != nil {
		return claim, model.Customer{}
	}
	return claim, customer
}

// IsAdmin checks the role claim against the account table, so a revoked
// account loses access when the token is next used.
func IsAdmin(c *fiber.Ctx) bool {
	claim := ClaimFromToken(c)
	if claim.Role != constants.ROLE_ADMIN || claim.AccountId == 0 {
		return false
	}
	var account model.Account
	if err := database.DB.First(&account, claim.AccountId).Error; err != nil {
		return false
	}
	return account.Active
}
