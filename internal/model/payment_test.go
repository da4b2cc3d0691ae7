package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusFlagged, true},
		{StatusPending, StatusPending, false},
		{StatusPaid, StatusPending, false},
		{StatusPaid, StatusPaid, false},
		{StatusPaid, StatusFlagged, false},
		{StatusFlagged, StatusPaid, false},
		{StatusFlagged, StatusPending, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusPaid.Valid())
	assert.True(t, StatusFlagged.Valid())
	assert.False(t, Status("refunded").Valid())
	assert.False(t, Status("").Valid())
}
