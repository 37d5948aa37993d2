package helper

import (
	"sync"
	"testing"
	"time"

	"somnus_tickets/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createPendingInvite(t *testing.T, db *gorm.DB, event model.Event, table model.TicketType, seat int) model.TableSlotInvite {
	t.Helper()
	hostSale := createPendingSale(t, db, event.ID, []model.SaleItem{
		{TicketTypeID: table.ID, Quantity: 1, UnitPrice: table.Price},
	})
	completed, err := CompleteSale(db, hostSale.PublicCode, "PAYGATE")
	require.NoError(t, err)
	require.Len(t, completed.Tickets, 1)

	invite := model.TableSlotInvite{
		EventID:      event.ID,
		TicketTypeID: table.ID,
		TableNumber:  *completed.Tickets[0].TableNumber,
		SeatNumber:   seat,
		HostSaleID:   completed.ID,
		GuestName:    "Luis Vega",
		GuestEmail:   "luis@example.com",
		InviteToken:  NewInviteToken(),
		Status:       InvitePending,
		ExpiresAt:    time.Now().Add(InviteTTL),
	}
	require.NoError(t, db.Create(&invite).Error)
	return invite
}

func TestRedeemInviteIssuesSeatTicket(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	table := createTableType(t, db, event.ID, 5, 8, 80)
	invite := createPendingInvite(t, db, event, table, 3)

	sale, ticket, err := RedeemInvite(db, invite.InviteToken, "PAYGATE")
	require.NoError(t, err)

	assert.Equal(t, SaleCompleted, sale.Status)
	assert.Equal(t, 80.0, sale.TotalAmount)
	assert.Equal(t, "Luis Vega", sale.BuyerName)

	require.NotNil(t, ticket.TableNumber)
	assert.Equal(t, invite.TableNumber, *ticket.TableNumber)
	require.NotNil(t, ticket.SeatNumber)
	assert.Equal(t, 3, *ticket.SeatNumber)
	assert.Equal(t, TicketIssued, ticket.Status)

	var reloaded model.TableSlotInvite
	require.NoError(t, db.First(&reloaded, invite.ID).Error)
	assert.Equal(t, InvitePaid, reloaded.Status)
	require.NotNil(t, reloaded.PaidSaleID)
	assert.Equal(t, sale.ID, *reloaded.PaidSaleID)
}

func TestRedeemInviteExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	table := createTableType(t, db, event.ID, 5, 8, 80)
	invite := createPendingInvite(t, db, event, table, 2)

	first, _, err := RedeemInvite(db, invite.InviteToken, "PAYGATE")
	require.NoError(t, err)

	_, _, err = RedeemInvite(db, invite.InviteToken, "PAYGATE")
	assert.ErrorIs(t, err, ErrInviteRedeemed)

	// the losing attempt left no extra sale or ticket behind
	var saleCount, ticketCount int64
	db.Model(&model.Sale{}).Where("buyer_email = ?", "luis@example.com").Count(&saleCount)
	assert.EqualValues(t, 1, saleCount)
	db.Model(&model.Ticket{}).Where("sale_id = ?", first.ID).Count(&ticketCount)
	assert.EqualValues(t, 1, ticketCount)
}

func TestRedeemInviteConcurrentPayments(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	table := createTableType(t, db, event.ID, 5, 8, 80)
	invite := createPendingInvite(t, db, event, table, 7)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = RedeemInvite(db, invite.InviteToken, "PAYGATE")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrInviteRedeemed)
		}
	}
	assert.Equal(t, 1, wins)

	var saleCount int64
	db.Model(&model.Sale{}).Where("buyer_email = ?", "luis@example.com").Count(&saleCount)
	assert.EqualValues(t, 1, saleCount)
}

func TestInviteExpiresLazilyAndStaysExpired(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	table := createTableType(t, db, event.ID, 5, 8, 80)
	invite := createPendingInvite(t, db, event, table, 4)

	require.NoError(t, db.Model(&model.TableSlotInvite{}).
		Where("id = ?", invite.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	// first access flips and reports expiry
	got, err := GetInviteByToken(db, invite.InviteToken)
	assert.ErrorIs(t, err, ErrInviteExpired)
	assert.Equal(t, InviteExpired, got.Status)

	// the flip is persisted, not recomputed per read
	var reloaded model.TableSlotInvite
	require.NoError(t, db.First(&reloaded, invite.ID).Error)
	assert.Equal(t, InviteExpired, reloaded.Status)

	// an expired invite cannot be paid
	_, _, err = RedeemInvite(db, invite.InviteToken, "PAYGATE")
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestRedeemInvitePastDeadlineWithoutPriorRead(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	table := createTableType(t, db, event.ID, 5, 8, 80)
	invite := createPendingInvite(t, db, event, table, 5)

	require.NoError(t, db.Model(&model.TableSlotInvite{}).
		Where("id = ?", invite.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	// redemption itself checks the deadline, no GetInviteByToken needed first
	_, _, err := RedeemInvite(db, invite.InviteToken, "PAYGATE")
	assert.ErrorIs(t, err, ErrInviteExpired)

	var reloaded model.TableSlotInvite
	require.NoError(t, db.First(&reloaded, invite.ID).Error)
	assert.Equal(t, InviteExpired, reloaded.Status)
}

func TestGetInviteByTokenPendingPassesThrough(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	table := createTableType(t, db, event.ID, 5, 8, 80)
	invite := createPendingInvite(t, db, event, table, 6)

	got, err := GetInviteByToken(db, invite.InviteToken)
	require.NoError(t, err)
	assert.Equal(t, InvitePending, got.Status)
	require.NotNil(t, got.TicketType)
	assert.Equal(t, 80.0, got.TicketType.SeatPrice)
}

func TestSeatUniquePerTable(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	table := createTableType(t, db, event.ID, 5, 8, 80)
	invite := createPendingInvite(t, db, event, table, 2)

	dup := model.TableSlotInvite{
		EventID:      invite.EventID,
		TicketTypeID: invite.TicketTypeID,
		TableNumber:  invite.TableNumber,
		SeatNumber:   invite.SeatNumber,
		HostSaleID:   invite.HostSaleID,
		GuestName:    "Marta Ruiz",
		GuestEmail:   "marta@example.com",
		InviteToken:  NewInviteToken(),
		Status:       InvitePending,
		ExpiresAt:    time.Now().Add(InviteTTL),
	}
	err := db.Create(&dup).Error
	assert.Error(t, err)
}
