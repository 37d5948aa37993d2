package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"somnus_tickets/database"
	"somnus_tickets/helper"
	"somnus_tickets/model"
	"somnus_tickets/validate"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupInviteApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	app := fiber.New()
	app.Post("/invites", validate.CreateInvite(), CreateInvite)
	return app, db
}

// completeTableSale buys the given number of tables in one sale and settles it.
func completeTableSale(t *testing.T, db *gorm.DB, tables int) model.Sale {
	t.Helper()
	event := model.Event{
		Name: "Noche Somnus", Slug: "noche-somnus",
		StartsAt: time.Now().Add(24 * time.Hour), EndsAt: time.Now().Add(30 * time.Hour), IsActive: true,
	}
	require.NoError(t, db.Create(&event).Error)
	tt := model.TicketType{
		EventID: event.ID, Name: "Mesa VIP", Price: 500, MaxQuantity: 10,
		IsTable: true, SeatsPerTable: 8, SeatPrice: 80,
	}
	require.NoError(t, db.Create(&tt).Error)
	sale := model.Sale{
		PublicCode: helper.NewSaleCode(), EventID: event.ID,
		BuyerName: "Ana Torres", BuyerEmail: "ana@example.com",
		TotalAmount: float64(tables) * 500, Status: helper.SalePending,
		Items: []model.SaleItem{{TicketTypeID: tt.ID, Quantity: tables, UnitPrice: 500}},
	}
	require.NoError(t, db.Create(&sale).Error)
	completed, err := helper.CompleteSale(db, sale.PublicCode, "PAYGATE")
	require.NoError(t, err)
	return *completed
}

func postInvite(t *testing.T, app *fiber.App, payload fiber.Map) int {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/invites", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestCreateInviteForSecondTable(t *testing.T) {
	app, db := setupInviteApp(t)
	sale := completeTableSale(t, db, 2)

	status := postInvite(t, app, fiber.Map{
		"saleCode": sale.PublicCode, "tableNumber": 2, "seatNumber": 3,
		"guestName": "Luis Vega", "guestEmail": "luis@example.com",
	})
	assert.Equal(t, 201, status)

	var invite model.TableSlotInvite
	require.NoError(t, db.Where("host_sale_id = ?", sale.ID).First(&invite).Error)
	assert.Equal(t, 2, invite.TableNumber)
	assert.Equal(t, 3, invite.SeatNumber)
}

func TestCreateInviteMultiTableNeedsTableNumber(t *testing.T) {
	app, db := setupInviteApp(t)
	sale := completeTableSale(t, db, 2)

	status := postInvite(t, app, fiber.Map{
		"saleCode": sale.PublicCode, "seatNumber": 3,
		"guestName": "Luis Vega", "guestEmail": "luis@example.com",
	})
	assert.Equal(t, 400, status)
}

func TestCreateInviteUnknownTableRejected(t *testing.T) {
	app, db := setupInviteApp(t)
	sale := completeTableSale(t, db, 2)

	status := postInvite(t, app, fiber.Map{
		"saleCode": sale.PublicCode, "tableNumber": 5, "seatNumber": 3,
		"guestName": "Luis Vega", "guestEmail": "luis@example.com",
	})
	assert.Equal(t, 404, status)
}

func TestCreateInviteSingleTableNeedsNoTableNumber(t *testing.T) {
	app, db := setupInviteApp(t)
	sale := completeTableSale(t, db, 1)

	status := postInvite(t, app, fiber.Map{
		"saleCode": sale.PublicCode, "seatNumber": 2,
		"guestName": "Luis Vega", "guestEmail": "luis@example.com",
	})
	assert.Equal(t, 201, status)

	var invite model.TableSlotInvite
	require.NoError(t, db.Where("host_sale_id = ?", sale.ID).First(&invite).Error)
	assert.Equal(t, 1, invite.TableNumber)
}
