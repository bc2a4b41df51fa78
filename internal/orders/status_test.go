package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusProcessing, StatusCompleted, StatusRejected}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusCompleted}:    true,
		{StatusPending, StatusRejected}:     true,
		{StatusProcessing, StatusCompleted}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]Status{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusRejected.Terminal())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("processing")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, s)

	_, err = ParseStatus("shipped")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParseModeAndKind(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAction, m)

	m, err = ParseMode("override")
	require.NoError(t, err)
	assert.Equal(t, ModeOverride, m)

	_, err = ParseMode("force")
	assert.ErrorIs(t, err, ErrInvalidMode)

	k, err := ParseKind("offer")
	require.NoError(t, err)
	assert.Equal(t, KindOffer, k)

	_, err = ParseKind("orders")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
