package helper

import (
	"testing"
	"time"

	"somnus_tickets/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCompleteSaleIssuesTickets(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	tt := createTicketType(t, db, event.ID, "General", 50, 10)
	sale := createPendingSale(t, db, event.ID, []model.SaleItem{
		{TicketTypeID: tt.ID, Quantity: 3, UnitPrice: 50},
	})

	completed, err := CompleteSale(db, sale.PublicCode, "PAYGATE")
	require.NoError(t, err)
	assert.Equal(t, SaleCompleted, completed.Status)
	assert.NotNil(t, completed.PaidAt)
	assert.Len(t, completed.Tickets, 3)
	for _, ticket := range completed.Tickets {
		assert.Equal(t, TicketIssued, ticket.Status)
		assert.Equal(t, "Ana Torres", ticket.HolderName)
		assert.Nil(t, ticket.TableNumber)
	}

	remaining, err := RemainingQuantity(db, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, remaining)
}

func TestCompleteSaleReplayIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	tt := createTicketType(t, db, event.ID, "General", 50, 10)
	sale := createPendingSale(t, db, event.ID, []model.SaleItem{
		{TicketTypeID: tt.ID, Quantity: 2, UnitPrice: 50},
	})

	_, err := CompleteSale(db, sale.PublicCode, "PAYGATE")
	require.NoError(t, err)

	_, err = CompleteSale(db, sale.PublicCode, "PAYGATE")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	// the replay issued nothing and moved no inventory
	var ticketCount int64
	db.Model(&model.Ticket{}).Where("sale_id = ?", sale.ID).Count(&ticketCount)
	assert.EqualValues(t, 2, ticketCount)

	remaining, err := RemainingQuantity(db, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, remaining)
}

func TestCompleteSaleLosesFlipRaceTreatsItAsReplay(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	tt := createTicketType(t, db, event.ID, "General", 50, 10)
	sale := createPendingSale(t, db, event.ID, []model.SaleItem{
		{TicketTypeID: tt.ID, Quantity: 2, UnitPrice: 50},
	})

	// flip the sale between CompleteSale's read and its conditional
	// update, the way a concurrent confirmation would
	raced := false
	err := db.Callback().Query().After("gorm:query").Register("rival_confirmation", func(d *gorm.DB) {
		if raced || d.Statement.Table != "sales" {
			return
		}
		raced = true
		d.Session(&gorm.Session{NewDB: true}).Model(&model.Sale{}).
			Where("id = ?", sale.ID).
			Updates(map[string]any{"status": SaleCompleted, "paid_at": time.Now()})
	})
	require.NoError(t, err)
	defer db.Callback().Query().Remove("rival_confirmation")

	// the stale PENDING read must not turn the loss into a failure
	_, err = CompleteSale(db, sale.PublicCode, "PAYGATE")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestCompleteSaleAllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	plenty := createTicketType(t, db, event.ID, "General", 50, 100)
	scarce := createTicketType(t, db, event.ID, "VIP", 120, 1)

	// someone else takes the last VIP before this sale settles
	_, err := IncrementSold(db, scarce.ID, 1)
	require.NoError(t, err)

	sale := createPendingSale(t, db, event.ID, []model.SaleItem{
		{TicketTypeID: plenty.ID, Quantity: 2, UnitPrice: 50},
		{TicketTypeID: scarce.ID, Quantity: 1, UnitPrice: 120},
	})

	_, err = CompleteSale(db, sale.PublicCode, "PAYGATE")
	assert.ErrorIs(t, err, ErrSoldOut)

	// rollback restored everything: no tickets, sale still pending,
	// the plenty ledger untouched
	var reloaded model.Sale
	require.NoError(t, db.First(&reloaded, sale.ID).Error)
	assert.Equal(t, SalePending, reloaded.Status)

	var ticketCount int64
	db.Model(&model.Ticket{}).Where("sale_id = ?", sale.ID).Count(&ticketCount)
	assert.EqualValues(t, 0, ticketCount)

	remaining, err := RemainingQuantity(db, plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, remaining)
}

func TestCompleteSaleAssignsTableNumbers(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	table := createTableType(t, db, event.ID, 10, 8, 80)

	first := createPendingSale(t, db, event.ID, []model.SaleItem{
		{TicketTypeID: table.ID, Quantity: 1, UnitPrice: 500},
	})
	second := createPendingSale(t, db, event.ID, []model.SaleItem{
		{TicketTypeID: table.ID, Quantity: 2, UnitPrice: 500},
	})

	completedFirst, err := CompleteSale(db, first.PublicCode, "PAYGATE")
	require.NoError(t, err)
	require.Len(t, completedFirst.Tickets, 1)
	require.NotNil(t, completedFirst.Tickets[0].TableNumber)
	assert.Equal(t, 1, *completedFirst.Tickets[0].TableNumber)
	require.NotNil(t, completedFirst.Tickets[0].SeatNumber)
	assert.Equal(t, 1, *completedFirst.Tickets[0].SeatNumber)

	completedSecond, err := CompleteSale(db, second.PublicCode, "PAYGATE")
	require.NoError(t, err)
	require.Len(t, completedSecond.Tickets, 2)
	assert.Equal(t, 2, *completedSecond.Tickets[0].TableNumber)
	assert.Equal(t, 3, *completedSecond.Tickets[1].TableNumber)
}

func TestExpireStalePendingSales(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	tt := createTicketType(t, db, event.ID, "General", 50, 10)

	stale := createPendingSale(t, db, event.ID, []model.SaleItem{
		{TicketTypeID: tt.ID, Quantity: 1, UnitPrice: 50},
	})
	fresh := createPendingSale(t, db, event.ID, []model.SaleItem{
		{TicketTypeID: tt.ID, Quantity: 1, UnitPrice: 50},
	})

	old := time.Now().Add(-PendingSaleTTL - time.Minute)
	require.NoError(t, db.Model(&model.Sale{}).Where("id = ?", stale.ID).
		Update("created_at", old).Error)

	swept, err := ExpireStalePendingSales(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, swept)

	var reloaded model.Sale
	require.NoError(t, db.First(&reloaded, stale.ID).Error)
	assert.Equal(t, SaleCancelled, reloaded.Status)
	assert.NotNil(t, reloaded.CancelledAt)

	var freshReloaded model.Sale
	require.NoError(t, db.First(&freshReloaded, fresh.ID).Error)
	assert.Equal(t, SalePending, freshReloaded.Status)

	// a late gateway confirmation for the swept sale changes nothing
	_, err = CompleteSale(db, stale.PublicCode, "PAYGATE")
	assert.ErrorIs(t, err, ErrSaleNotPending)

	remaining, err := RemainingQuantity(db, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)
}
