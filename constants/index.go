package constants

// Roles
const (
	ROLE_ADMIN   = "ADMIN"
	ROLE_CLIENTE = "CLIENTE"
)

// Common messages
const (
	ERROR_INTERNAL_ERROR     = "Internal server error"
	MISSING_LOGIN_INPUT      = "Username and password are required"
	INVALID_USERNAME         = "Username does not exist"
	INVALID_PASSWORD         = "Incorrect password"
	ACCOUNT_NOT_ACTIVE       = "Account is disabled"
	DATA_INPUT_IS_NOT_NUMBER = "Parameter must be a number"
	UNAUTHORIZED             = "Please log in"
	FORBIDDEN                = "You do not have permission"
)

// Checkout / payment messages
const (
	MSG_SOLD_OUT         = "This ticket type is sold out"
	MSG_SALE_NOT_FOUND   = "Sale not found"
	MSG_EVENT_NOT_FOUND  = "Event not found"
	MSG_INVITE_NOT_FOUND = "Invite not found"
	MSG_INVITE_EXPIRED   = "This invite has expired"
	MSG_INVITE_REDEEMED  = "This invite has already been paid"
)
