package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCursor_MarkDelivered(t *testing.T) {
	c := NewCursor()
	assert.False(t, c.Delivered("n-1"))
	assert.True(t, c.LastCheck().IsZero())

	now := time.Now()
	c.MarkDelivered("n-1", now)

	assert.True(t, c.Delivered("n-1"))
	assert.Equal(t, now, c.LastCheck())
	assert.Equal(t, 1, c.DeliveredCount())
}

func TestCursor_LastCheckNeverMovesBackwards(t *testing.T) {
	c := NewCursor()
	newer := time.Now()
	older := newer.Add(-time.Hour)

	c.MarkDelivered("n-1", newer)
	c.MarkDelivered("n-2", older)

	assert.Equal(t, newer, c.LastCheck())
	assert.Equal(t, 2, c.DeliveredCount())
}
