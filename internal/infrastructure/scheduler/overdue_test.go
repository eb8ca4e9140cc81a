package scheduler

import (
	"context"
	"testing"
	"time"

	propertyapp "github.com/Tiedr/property-flow-organizer-sub000/internal/application/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMarker struct {
	mock.Mock
}

func (m *mockMarker) MarkOverdue(ctx context.Context, asOf time.Time) (*propertyapp.OverdueSweepResult, error) {
	args := m.Called(ctx, asOf)
	result, _ := args.Get(0).(*propertyapp.OverdueSweepResult)
	return result, args.Error(1)
}

func TestOverdueSweepTrigger(t *testing.T) {
	marker := &mockMarker{}
	fixed := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	marker.On("MarkOverdue", mock.Anything, fixed).
		Return(&propertyapp.OverdueSweepResult{AsOf: fixed, Checked: 3, Marked: 2}, nil).Once()

	trigger, err := NewOverdueSweepTrigger(marker, time.Hour, zap.NewNop())
	require.NoError(t, err)
	trigger.now = func() time.Time { return fixed }

	require.NoError(t, trigger.RunNow(context.Background()))
	marker.AssertExpectations(t)
	assert.Equal(t, int64(1), trigger.Stats().Runs)
}
