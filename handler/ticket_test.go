package handler

import (
	"bytes"
	"encoding/json"
	"io"
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

func setupScanApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	app := fiber.New()
	app.Post("/scan", validate.ScanTicket(), ScanTicket)
	app.Post("/scan-sale/:saleCode", ScanSale)
	return app, db
}

func issueTicket(t *testing.T, db *gorm.DB) model.Ticket {
	t.Helper()
	event := model.Event{
		Name: "Noche Somnus", Slug: "noche-somnus",
		StartsAt: time.Now(), EndsAt: time.Now().Add(6 * time.Hour), IsActive: true,
	}
	require.NoError(t, db.Create(&event).Error)
	tt := model.TicketType{EventID: event.ID, Name: "General", Price: 50, MaxQuantity: 10}
	require.NoError(t, db.Create(&tt).Error)
	now := time.Now()
	sale := model.Sale{
		PublicCode: helper.NewSaleCode(), EventID: event.ID,
		BuyerName: "Ana Torres", TotalAmount: 50,
		Status: helper.SaleCompleted, PaidAt: &now,
	}
	require.NoError(t, db.Create(&sale).Error)
	ticket := model.Ticket{
		TicketCode: helper.NewTicketCode(), Status: helper.TicketIssued,
		Price: 50, IssuedAt: now,
		SaleID: sale.ID, EventID: event.ID, TicketTypeID: tt.ID,
		HolderName: "Ana Torres",
	}
	require.NoError(t, db.Create(&ticket).Error)
	return ticket
}

func postScan(t *testing.T, app *fiber.App, code string) (int, map[string]any) {
	t.Helper()
	body, _ := json.Marshal(fiber.Map{"ticketCode": code})
	req := httptest.NewRequest("POST", "/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, _ := io.ReadAll(resp.Body)
	var parsed map[string]any
	json.Unmarshal(raw, &parsed)
	return resp.StatusCode, parsed
}

func TestScanTicketChecksIn(t *testing.T) {
	app, db := setupScanApp(t)
	ticket := issueTicket(t, db)

	status, _ := postScan(t, app, ticket.TicketCode)
	assert.Equal(t, 200, status)

	var reloaded model.Ticket
	require.NoError(t, db.First(&reloaded, ticket.ID).Error)
	assert.Equal(t, helper.TicketUsed, reloaded.Status)
	assert.NotNil(t, reloaded.UsedAt)
}

func TestScanTicketReplayRejected(t *testing.T) {
	app, db := setupScanApp(t)
	ticket := issueTicket(t, db)

	status, _ := postScan(t, app, ticket.TicketCode)
	require.Equal(t, 200, status)

	status, parsed := postScan(t, app, ticket.TicketCode)
	assert.Equal(t, 409, status)
	assert.Contains(t, parsed["message"], "already used at")
}

func TestScanTicketUnknownCode(t *testing.T) {
	app, _ := setupScanApp(t)

	status, _ := postScan(t, app, "TKT-DOESNOTEXIST")
	assert.Equal(t, 404, status)
}

func TestScanSaleBulkCheckIn(t *testing.T) {
	app, db := setupScanApp(t)
	ticket := issueTicket(t, db)

	second := model.Ticket{
		TicketCode: helper.NewTicketCode(), Status: helper.TicketIssued,
		Price: 50, IssuedAt: time.Now(),
		SaleID: ticket.SaleID, EventID: ticket.EventID, TicketTypeID: ticket.TicketTypeID,
		HolderName: "Ana Torres",
	}
	require.NoError(t, db.Create(&second).Error)

	var sale model.Sale
	require.NoError(t, db.First(&sale, ticket.SaleID).Error)

	req := httptest.NewRequest("POST", "/scan-sale/"+sale.PublicCode, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var used int64
	db.Model(&model.Ticket{}).
		Where("sale_id = ? AND status = ?", sale.ID, helper.TicketUsed).
		Count(&used)
	assert.EqualValues(t, 2, used)

	// nothing left to check in
	req = httptest.NewRequest("POST", "/scan-sale/"+sale.PublicCode, nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
}
