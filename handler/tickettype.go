package handler

import (
	"somnus_tickets/constants"
	"somnus_tickets/database"
	"somnus_tickets/model"
	"somnus_tickets/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
)

func GetTicketTypesByEvent(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)

	var types []model.TicketType
	if err := database.DB.Where("event_id = ?", id).Order("price asc").Find(&types).Error; err != nil {
		return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, 200, types)
}

func CreateTicketType(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateTicketTypeInput)
	db := database.DB

	var event model.Event
	if err := db.First(&event, input.EventID).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.MSG_EVENT_NOT_FOUND, err)
	}

	var tt model.TicketType
	copier.Copy(&tt, &input)

	if err := db.Create(&tt).Error; err != nil {
		return utils.ErrorResponse(c, 500, "Could not create ticket type", err)
	}
	return utils.SuccessResponse(c, 201, tt)
}

func EditTicketType(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)
	input := c.Locals("input").(model.EditTicketTypeInput)
	db := database.DB

	var tt model.TicketType
	if err := db.First(&tt, id).Error; err != nil {
		return utils.ErrorResponse(c, 404, "Ticket type not found", err)
	}

	// capacity can grow but never drop under what is already sold
	if input.MaxQuantity != nil && *input.MaxQuantity < tt.SoldQuantity {
		return utils.ErrorResponse(c, 400, "Max quantity cannot be lower than sold quantity", nil)
	}

	copier.CopyWithOption(&tt, &input, copier.Option{IgnoreEmpty: true})

	if err := db.Save(&tt).Error; err != nil {
		return utils.ErrorResponse(c, 500, "Could not update ticket type", err)
	}
	return utils.SuccessResponse(c, 200, tt)
}

// DeleteTicketType refuses while tickets reference the type.
func DeleteTicketType(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)
	db := database.DB

	var ticketCount int64
	db.Model(&model.Ticket{}).Where("ticket_type_id = ?", id).Count(&ticketCount)
	if ticketCount > 0 {
		return utils.ErrorResponse(c, 409, "Ticket type has issued tickets and cannot be deleted", nil)
	}

	result := db.Delete(&model.TicketType{}, id)
	if result.Error != nil {
		return utils.ErrorResponse(c, 500, "Could not delete ticket type", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, 404, "Ticket type not found", nil)
	}
	return utils.SuccessResponse(c, 200, fiber.Map{"deleted": id})
}
