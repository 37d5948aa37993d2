package helper

import (
	"sync"
	"testing"

	"somnus_tickets/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementSoldStopsAtLimit(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	tt := createTicketType(t, db, event.ID, "General", 50, 3)

	sold, err := IncrementSold(db, tt.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, sold)

	sold, err = IncrementSold(db, tt.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, sold)

	_, err = IncrementSold(db, tt.ID, 1)
	assert.ErrorIs(t, err, ErrSoldOut)

	remaining, err := RemainingQuantity(db, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestIncrementSoldRejectsOversizedRequest(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	tt := createTicketType(t, db, event.ID, "General", 50, 5)

	// 4 remaining after this
	_, err := IncrementSold(db, tt.ID, 1)
	require.NoError(t, err)

	// asking for more than remains leaves the ledger untouched
	_, err = IncrementSold(db, tt.ID, 5)
	assert.ErrorIs(t, err, ErrSoldOut)

	remaining, err := RemainingQuantity(db, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)
}

func TestIncrementSoldSingleUnitType(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	tt := createTicketType(t, db, event.ID, "Unica", 100, 1)

	sold, err := IncrementSold(db, tt.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, sold)

	_, err = IncrementSold(db, tt.ID, 1)
	assert.ErrorIs(t, err, ErrSoldOut)
}

func TestIncrementSoldTwoBuyersLastUnit(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	tt := createTicketType(t, db, event.ID, "Unica", 100, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = IncrementSold(db, tt.ID, 1)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrSoldOut)
		}
	}
	assert.Equal(t, 1, wins)

	var reloaded model.TicketType
	require.NoError(t, db.First(&reloaded, tt.ID).Error)
	assert.Equal(t, 1, reloaded.SoldQuantity)
}

func TestDecrementSold(t *testing.T) {
	db := setupTestDB(t)
	event := createEvent(t, db)
	tt := createTicketType(t, db, event.ID, "General", 50, 10)

	_, err := IncrementSold(db, tt.ID, 4)
	require.NoError(t, err)

	require.NoError(t, DecrementSold(db, tt.ID, 3))

	remaining, err := RemainingQuantity(db, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, remaining)

	// cannot go below zero
	err = DecrementSold(db, tt.ID, 2)
	assert.Error(t, err)
}
