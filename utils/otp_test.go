package utils

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckResetCooldownFirstRequest(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectSetNX("reset_cooldown:ana@example.com", 1, ResetCooldown).SetVal(true)

	wait, err := CheckResetCooldown(context.Background(), rdb, "ana@example.com")
	require.NoError(t, err)
	assert.Zero(t, wait)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckResetCooldownThrottled(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectSetNX("reset_cooldown:ana@example.com", 1, ResetCooldown).SetVal(false)
	mock.ExpectTTL("reset_cooldown:ana@example.com").SetVal(45 * time.Second)

	wait, err := CheckResetCooldown(context.Background(), rdb, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, wait)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckResetCooldownNegativeTTLClamped(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectSetNX("reset_cooldown:ana@example.com", 1, ResetCooldown).SetVal(false)
	mock.ExpectTTL("reset_cooldown:ana@example.com").SetVal(-2 * time.Second)

	wait, err := CheckResetCooldown(context.Background(), rdb, "ana@example.com")
	require.NoError(t, err)
	assert.Zero(t, wait)
}
