package dialog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/catalog"
)

func TestStepDefaultsToIdle(t *testing.T) {
	m := NewManager()
	assert.Equal(t, StepIdle, m.Step(1))
	assert.False(t, m.InProgress(1))
}

func TestOrderDraftAccumulates(t *testing.T) {
	m := NewManager()
	p := catalog.Product{ID: 2, Name: "🚗 Toy 2", Price: 300}

	m.SelectProduct(10, p)
	m.SetStep(10, StepAddress)
	require.True(t, m.InProgress(10))

	m.SetAddress(10, "PO Box 9")
	m.SetStep(10, StepComment)

	draft, ok := m.Draft(10)
	require.True(t, ok)
	assert.True(t, draft.HasProduct)
	assert.Equal(t, p, draft.Product)
	assert.Equal(t, "PO Box 9", draft.Address)
}

func TestResetDropsSession(t *testing.T) {
	m := NewManager()
	m.SetStep(5, StepPhone)
	m.Reset(5)

	assert.Equal(t, StepIdle, m.Step(5))
	_, ok := m.Draft(5)
	assert.False(t, ok)
	assert.Zero(t, m.Len())
}

func TestSessionsAreIndependentPerChat(t *testing.T) {
	m := NewManager()
	m.SetStep(1, StepPhone)
	m.SetStep(2, StepComment)

	assert.Equal(t, StepPhone, m.Step(1))
	assert.Equal(t, StepComment, m.Step(2))
	m.Reset(1)
	assert.Equal(t, StepComment, m.Step(2))
}

func TestExpireIdle(t *testing.T) {
	m := NewManager()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	m.SetStep(1, StepAddress)
	m.SetStep(2, StepPhone)

	// Chat 2 stays active, chat 1 goes stale.
	base = base.Add(20 * time.Minute)
	m.SetAddress(2, "Main st 1")

	base = base.Add(15 * time.Minute)
	expired := m.ExpireIdle(30 * time.Minute)

	assert.Equal(t, 1, expired)
	assert.Equal(t, StepIdle, m.Step(1))
	assert.Equal(t, StepPhone, m.Step(2))
}

func TestExpireIdleDisabled(t *testing.T) {
	m := NewManager()
	m.SetStep(1, StepPhone)
	assert.Zero(t, m.ExpireIdle(0))
	assert.Equal(t, 1, m.Len())
}
