package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willdeuschle/cruise/pkg/container"
)

func newTestContainer(id string) *container.Container {
	return container.New(id, container.Options{Name: "c", Command: "/bin/echo", Args: []string{"hi"}})
}

func TestAddAndGet(t *testing.T) {
	r := New()
	c := newTestContainer("id-1")
	require.NoError(t, r.Add(c))

	got, err := r.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, c.Status, got.Status)
}

func TestAddDuplicateFails(t *testing.T) {
	r := New()
	c := newTestContainer("id-1")
	require.NoError(t, r.Add(c))

	err := r.Add(newTestContainer("id-1"))
	require.Error(t, err)
	assert.True(t, IsAlreadyExists(err))
}

func TestGetMissingFails(t *testing.T) {
	r := New()
	_, err := r.Get("missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestUpdateStatusMissingFails(t *testing.T) {
	r := New()
	err := r.UpdateStatus("missing", container.Running)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestGetReturnsIndependentClone(t *testing.T) {
	r := New()
	c := newTestContainer("id-1")
	require.NoError(t, r.Add(c))

	got, err := r.Get("id-1")
	require.NoError(t, err)
	got.Status = container.Running

	again, err := r.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, container.Initialized, again.Status)
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(newTestContainer("id-1")))
	r.Remove("id-1")
	r.Remove("id-1")

	_, err := r.Get("id-1")
	assert.True(t, IsNotFound(err))
}

func TestUpdateFieldsMutateOnlyThatField(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(newTestContainer("id-1")))

	createdAt := time.Now()
	require.NoError(t, r.UpdateCreatedAt("id-1", createdAt))
	require.NoError(t, r.UpdateStatus("id-1", container.Created))

	got, err := r.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, container.Created, got.Status)
	require.NotNil(t, got.CreatedAt)
	assert.WithinDuration(t, createdAt, *got.CreatedAt, time.Millisecond)
	assert.Nil(t, got.StartedAt)
}

func TestListIsSnapshot(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(newTestContainer("id-1")))
	require.NoError(t, r.Add(newTestContainer("id-2")))

	list := r.List()
	assert.Len(t, list, 2)

	require.NoError(t, r.Add(newTestContainer("id-3")))
	r.Remove("id-1")
	assert.Len(t, list, 2)
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(newTestContainer("id-1")))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.UpdateStatus("id-1", container.Running)
		}()
		go func() {
			defer wg.Done()
			_, _ = r.Get("id-1")
		}()
	}
	wg.Wait()

	got, err := r.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, container.Running, got.Status)
}
