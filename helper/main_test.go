package helper

import (
	"testing"
	"time"

	"somnus_tickets/database"
	"somnus_tickets/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// each sqlite :memory: connection is its own database, keep the pool
	// at one so concurrent tests share state
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createEvent(t *testing.T, db *gorm.DB) model.Event {
	t.Helper()
	event := model.Event{
		Name:     "Noche Somnus",
		Slug:     "noche-somnus",
		Venue:    "Sala Principal",
		StartsAt: time.Now().Add(7 * 24 * time.Hour),
		EndsAt:   time.Now().Add(7*24*time.Hour + 6*time.Hour),
		IsActive: true,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func createTicketType(t *testing.T, db *gorm.DB, eventID uint, name string, price float64, max int) model.TicketType {
	t.Helper()
	tt := model.TicketType{
		EventID:     eventID,
		Name:        name,
		Price:       price,
		MaxQuantity: max,
	}
	require.NoError(t, db.Create(&tt).Error)
	return tt
}

func createTableType(t *testing.T, db *gorm.DB, eventID uint, max, seats int, seatPrice float64) model.TicketType {
	t.Helper()
	tt := model.TicketType{
		EventID:       eventID,
		Name:          "Mesa VIP",
		Price:         500,
		MaxQuantity:   max,
		IsTable:       true,
		SeatsPerTable: seats,
		SeatPrice:     seatPrice,
	}
	require.NoError(t, db.Create(&tt).Error)
	return tt
}

func createPendingSale(t *testing.T, db *gorm.DB, eventID uint, items []model.SaleItem) model.Sale {
	t.Helper()
	total := 0.0
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	sale := model.Sale{
		PublicCode:  NewSaleCode(),
		EventID:     eventID,
		BuyerName:   "Ana Torres",
		BuyerEmail:  "ana@example.com",
		TotalAmount: total,
		Status:      SalePending,
		Items:       items,
	}
	require.NoError(t, db.Create(&sale).Error)
	return sale
}
