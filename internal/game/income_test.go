package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPassiveIncomeCreditsUntilCanceled(t *testing.T) {
	l, _ := openTestLedger(t, `{"crewMembers": {"cat": 1}}`)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunPassiveIncome(ctx, l, 5*time.Millisecond, nil) }()

	require.Eventually(t, func() bool { return l.Snapshot().Money >= 15 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)

	stopped := l.Snapshot().Money
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, l.Snapshot().Money)
	assert.Equal(t, 0, stopped%5)
}

func TestRunPassiveIncomeWithoutCrew(t *testing.T) {
	l, st := openTestLedger(t, "")
	saves := st.Saves()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.NoError(t, RunPassiveIncome(ctx, l, 5*time.Millisecond, nil))

	assert.Equal(t, 0, l.Snapshot().Money)
	assert.Equal(t, saves, st.Saves(), "empty ticks write nothing")
}
