package handler

import (
	"errors"
	"time"

	"somnus_tickets/constants"
	"somnus_tickets/database"
	"somnus_tickets/helper"
	"somnus_tickets/model"
	"somnus_tickets/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// GetActiveEvent is the storefront landing query.
func GetActiveEvent(c *fiber.Ctx) error {
	var event model.Event
	if err := database.DB.
		Preload("TicketTypes").
		Preload("Gallery", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Where("is_active = ?", true).
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, 404, "No event on sale right now", err)
		}
		return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, 200, event)
}

func GetUpcomingEvents(c *fiber.Ctx) error {
	var events []model.Event
	if err := database.DB.
		Where("ends_at > ?", time.Now()).
		Order("starts_at asc").
		Find(&events).Error; err != nil {
		return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, 200, events)
}

func GetEventBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var event model.Event
	if err := database.DB.
		Preload("TicketTypes").
		Preload("Gallery", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Where("slug = ?", slug).
		First(&event).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.MSG_EVENT_NOT_FOUND, err)
	}
	return utils.SuccessResponse(c, 200, event)
}

// Admin CRUD

func GetEventsAdmin(c *fiber.Ctx) error {
	var input model.Pagination
	if err := c.QueryParser(&input); err != nil {
		return utils.ErrorResponse(c, 400, "Invalid query", err)
	}

	query := database.DB.Model(&model.Event{}).Order("starts_at desc")

	var totalCount int64
	query.Count(&totalCount)

	var events []model.Event
	if err := utils.ApplyPagination(query, input.Limit, input.Page).Find(&events).Error; err != nil {
		return utils.ErrorResponse(c, 500, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, 200, model.ResponseCustom{
		Rows:       events,
		Limit:      input.Limit,
		Page:       input.Page,
		TotalCount: totalCount,
	})
}

func CreateEvent(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateEventInput)
	db := database.DB

	var event model.Event
	err := db.Transaction(func(tx *gorm.DB) error {
		copier.Copy(&event, &input)
		event.Slug = helper.GenerateUniqueEventSlug(tx, input.Name)
		return tx.Create(&event).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, 500, "Could not create event", err)
	}

	return utils.SuccessResponse(c, 201, event)
}

func EditEvent(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)
	input := c.Locals("input").(model.EditEventInput)
	db := database.DB

	var event model.Event
	if err := db.First(&event, id).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.MSG_EVENT_NOT_FOUND, err)
	}

	copier.CopyWithOption(&event, &input, copier.Option{IgnoreEmpty: true})
	if input.Name != nil && *input.Name != "" {
		event.Slug = helper.GenerateUniqueEventSlug(db, *input.Name)
	}

	if err := db.Save(&event).Error; err != nil {
		return utils.ErrorResponse(c, 500, "Could not update event", err)
	}
	return utils.SuccessResponse(c, 200, event)
}

// ActivateEvent puts one event on sale. At most one event is active at a
// time, so the others are switched off in the same transaction.
func ActivateEvent(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)
	db := database.DB

	var event model.Event
	if err := db.First(&event, id).Error; err != nil {
		return utils.ErrorResponse(c, 404, constants.MSG_EVENT_NOT_FOUND, err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Event{}).
			Where("is_active = ? AND id <> ?", true, event.ID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&event).Update("is_active", true).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, 500, "Could not activate event", err)
	}

	return utils.SuccessResponse(c, 200, fiber.Map{"id": event.ID, "isActive": true})
}

func DeactivateEvent(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)
	db := database.DB

	result := db.Model(&model.Event{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return utils.ErrorResponse(c, 500, "Could not deactivate event", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, 404, constants.MSG_EVENT_NOT_FOUND, nil)
	}
	return utils.SuccessResponse(c, 200, fiber.Map{"id": id, "isActive": false})
}

// DeleteEvent refuses once tickets exist; sold history stays.
func DeleteEvent(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)
	db := database.DB

	var ticketCount int64
	db.Model(&model.Ticket{}).Where("event_id = ?", id).Count(&ticketCount)
	if ticketCount > 0 {
		return utils.ErrorResponse(c, 409, "Event has issued tickets and cannot be deleted", nil)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&model.TicketType{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Event{}, id).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, 500, "Could not delete event", err)
	}
	return utils.SuccessResponse(c, 200, fiber.Map{"deleted": id})
}
