package container

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDUniqueness(t *testing.T) {
	seen := make(map[ID]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewID()
		_, dup := seen[id]
		require.False(t, dup, "generated duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewStartsInitialized(t *testing.T) {
	c := New(NewID(), Options{Name: "c1", Command: "/bin/echo", Args: []string{"hi"}})
	assert.Equal(t, Initialized, c.Status)
	assert.Equal(t, NoExitCode, c.ExitCode)
	assert.Nil(t, c.CreatedAt)
	assert.Nil(t, c.StartedAt)
	assert.Nil(t, c.FinishedAt)
}

func TestCloneIsIndependent(t *testing.T) {
	now := time.Now()
	c := New(NewID(), Options{Name: "c1", Command: "/bin/echo", Args: []string{"hi"}})
	c.CreatedAt = &now
	c.Status = Created

	clone := c.Clone()
	clone.Status = Running
	clone.Args[0] = "mutated"
	*clone.CreatedAt = now.Add(time.Hour)

	assert.Equal(t, Created, c.Status)
	assert.Equal(t, "hi", c.Args[0])
	assert.Equal(t, now, *c.CreatedAt)
}
