package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAllReportsHealthyWhenNoChecksRegistered(t *testing.T) {
	h := NewHealthChecker(0)
	assert.Equal(t, StatusHealthy, h.GetOverallStatus(context.Background()))
}

func TestCheckReturnsUnhealthyOnError(t *testing.T) {
	h := NewHealthChecker(0)
	h.RegisterCheck("broken", func(ctx context.Context) error {
		return errors.New("boom")
	})

	result, err := h.Check(context.Background(), "broken")
	require.NoError(t, err)
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, "boom", result.Message)
}

func TestCheckCachesResultWithinTTL(t *testing.T) {
	h := NewHealthChecker(0)
	h.SetCacheTTL(time.Minute)

	calls := 0
	h.RegisterCheck("counted", func(ctx context.Context) error {
		calls++
		return nil
	})

	_, err := h.Check(context.Background(), "counted")
	require.NoError(t, err)
	_, err = h.Check(context.Background(), "counted")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestUnregisterCheckDropsItFromResults(t *testing.T) {
	h := NewHealthChecker(0)
	h.RegisterCheck("temp", func(ctx context.Context) error { return nil })
	h.UnregisterCheck("temp")

	_, err := h.Check(context.Background(), "temp")
	assert.Error(t, err)
}

func TestGetOverallStatusEscalatesToUnhealthy(t *testing.T) {
	h := NewHealthChecker(0)
	h.RegisterCheck("ok", func(ctx context.Context) error { return nil })
	h.RegisterCheck("bad", func(ctx context.Context) error { return errors.New("fail") })

	assert.Equal(t, StatusUnhealthy, h.GetOverallStatus(context.Background()))
}

func TestDatabaseHealthCheckRequiresPingFunc(t *testing.T) {
	check := DatabaseHealthCheck(nil)
	assert.Error(t, check(context.Background()))

	check = DatabaseHealthCheck(func(ctx context.Context) error { return nil })
	assert.NoError(t, check(context.Background()))
}

func TestServiceHealthCheckPassesURLThrough(t *testing.T) {
	var seen string
	check := ServiceHealthCheck("https://example.test", func(ctx context.Context, url string) error {
		seen = url
		return nil
	})
	require.NoError(t, check(context.Background()))
	assert.Equal(t, "https://example.test", seen)
}
