package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/hyper-mcp/pkg/hyper"
)

func TestResultStore_PutGet(t *testing.T) {
	s, err := NewResultStore(2)
	require.NoError(t, err)

	rs := s.Put("data", "list", []hyper.Doc{{"_id": "a"}})
	assert.True(t, len(rs.ID) > len("rs_"))
	assert.Equal(t, "data", rs.Service)

	got, ok := s.Get(rs.ID)
	require.True(t, ok)
	assert.Same(t, rs, got)

	_, ok = s.Get("rs_missing")
	assert.False(t, ok)
}

func TestResultSet_MapsAndIDs(t *testing.T) {
	rs := &ResultSet{Docs: []hyper.Doc{{"_id": "a", "n": 1.0}, {"id": "b"}, {"n": 2.0}}}

	maps := rs.Maps()
	require.Len(t, maps, 3)
	assert.Equal(t, 1.0, maps[0]["n"])
	assert.Equal(t, []string{"a", "b", ""}, rs.IDs("_id"))
}

func TestResultStore_Evicts(t *testing.T) {
	s, err := NewResultStore(2)
	require.NoError(t, err)

	first := s.Put("data", "list", nil)
	s.Put("data", "list", nil)
	s.Put("data", "list", nil)

	assert.Equal(t, 2, s.Len())
	_, ok := s.Get(first.ID)
	assert.False(t, ok)
}

func TestNewResultStore_InvalidSize(t *testing.T) {
	_, err := NewResultStore(0)
	assert.Error(t, err)
}

func TestFlight_CollapsesConcurrentCalls(t *testing.T) {
	var f Flight
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]hyper.Result, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = f.Do("data/movie-1", func() (hyper.Result, error) {
				calls.Add(1)
				<-release
				return &hyper.OkResult{Status: 200}, nil
			})
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	for _, r := range results {
		assert.Equal(t, 200, r.StatusCode())
	}
}

func TestFlight_PropagatesError(t *testing.T) {
	var f Flight
	boom := errors.New("boom")
	res, err := f.Do("k", func() (hyper.Result, error) { return nil, boom })
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
}
