package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		allowed bool
	}{
		{"open to team assigned", StateOpen, StateTeamAssigned, true},
		{"open to cancelled", StateOpen, StateCancelled, true},
		{"open skips to sent", StateOpen, StateSentToClient, false},
		{"team assigned to sent", StateTeamAssigned, StateSentToClient, true},
		{"sent to rejected", StateSentToClient, StateRejectedByClient, true},
		{"sent to accepted", StateSentToClient, StateAccepted, true},
		{"rejected resend", StateRejectedByClient, StateSentToClient, true},
		{"rejected to accepted directly", StateRejectedByClient, StateAccepted, false},
		{"accepted absorbs", StateAccepted, StateCancelled, false},
		{"cancelled absorbs", StateCancelled, StateOpen, false},
		{"no backwards transition", StateSentToClient, StateTeamAssigned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, StateAccepted.Terminal())
	assert.True(t, StateCancelled.Terminal())
	assert.False(t, StateOpen.Terminal())
	assert.False(t, StateTeamAssigned.Terminal())
	assert.False(t, StateSentToClient.Terminal())
	assert.False(t, StateRejectedByClient.Terminal())
}
