package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type purgeFunc func(ctx context.Context, now time.Time) (int64, error)

func (f purgeFunc) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return f(ctx, now)
}

func TestStartCleanupRunsPurger(t *testing.T) {
	calls := make(chan time.Time, 4)
	c, err := StartCleanup("@every 1s", purgeFunc(func(_ context.Context, now time.Time) (int64, error) {
		calls <- now
		return 1, nil
	}))
	require.NoError(t, err)
	defer c.Stop()

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("purger was not called")
	}
}

func TestStartCleanupRejectsBadSchedule(t *testing.T) {
	_, err := StartCleanup("every now and then", purgeFunc(func(context.Context, time.Time) (int64, error) {
		return 0, nil
	}))
	assert.Error(t, err)
}
