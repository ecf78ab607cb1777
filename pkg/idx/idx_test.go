package idx_test

import (
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.False(t, id.IsZero())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	for _, bad := range []string{"", "   ", "not-a-ulid", "01HZZZZZZZZZZZZZZZZZZZZZZZZZZ"} {
		_, err := idx.Parse(bad)
		require.ErrorIs(t, err, idx.ErrInvalid, bad)
	}
}

func TestOrderingAndTime(t *testing.T) {
	t1 := time.Unix(1_700_000_000, 0).UTC()
	a := idx.NewAt(t1)
	b := idx.NewAt(t1.Add(time.Second))

	require.Less(t, a.String(), b.String())
	require.True(t, t1.Equal(a.Time()))
	require.True(t, idx.Zero.Time().IsZero())
}

func TestConcurrentUniqueness(t *testing.T) {
	const workers, perWorker = 8, 500

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				id := idx.NewString()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
}
