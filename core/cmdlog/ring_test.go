package cmdlog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/wheelsched/core/command"
)

type failingStore struct{ appended int }

func (f *failingStore) Append(context.Context, Entry) error { f.appended++; return errors.New("disk full") }
func (f *failingStore) Query(context.Context, Query) ([]Entry, error) {
	return nil, nil
}
func (f *failingStore) Close() error { return nil }

func TestRingKeepsLastFifty(t *testing.T) {
	r := NewRing(0, nil)
	require.Equal(t, DefaultCapacity, r.Capacity())
	for i := 0; i < 60; i++ {
		_, err := r.Add(context.Background(), Entry{Raw: fmt.Sprintf("cmd %d", i)})
		require.NoError(t, err)
	}
	got := r.Entries()
	require.Len(t, got, 50)
	assert.Equal(t, "cmd 10", got[0].Raw)
	assert.Equal(t, "cmd 59", got[49].Raw)
}

func TestRingStampsEntries(t *testing.T) {
	r := NewRing(3, nil)
	e, err := r.Add(context.Background(), Entry{Raw: "x"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())

	e2, _ := r.Add(context.Background(), Entry{Raw: "y"})
	assert.NotEqual(t, e.ID, e2.ID)
}

func TestRingEntriesIsACopy(t *testing.T) {
	r := NewRing(2, nil)
	_, _ = r.Add(context.Background(), Entry{Raw: "a"})
	got := r.Entries()
	got[0].Raw = "mutated"
	assert.Equal(t, "a", r.Entries()[0].Raw)
}

func TestRingKeepsEntryWhenStoreFails(t *testing.T) {
	st := &failingStore{}
	r := NewRing(5, st)
	_, err := r.Add(context.Background(), Entry{Raw: "a"})
	assert.Error(t, err)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, st.appended)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	st, err := Open(Options{})
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = Open(Options{Backend: BackendJSONL, Path: dir + "/a.jsonl"})
	require.NoError(t, err)
	assert.IsType(t, &JSONLStore{}, st)

	st, err = Open(Options{Backend: BackendJSONL, Path: dir + "/b.jsonl", MaxSizeMB: 1})
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, st)
	_ = st.Close()

	_, err = Open(Options{Backend: "postgres"})
	assert.Error(t, err)
}

func TestRingQuery(t *testing.T) {
	r := NewRing(5, nil)
	ctx := context.Background()
	_, _ = r.Add(ctx, Entry{Raw: "a", OK: true, Source: "pattern", Payload: command.Payload{OrderID: "O021"}})
	_, _ = r.Add(ctx, Entry{Raw: "b", Source: "model", Payload: command.Payload{OrderID: "O014", OrderID2: "O021"}})
	_, _ = r.Add(ctx, Entry{Raw: "c", Source: "model", Payload: command.Payload{OrderID: "O030"}})

	got, err := r.Query(ctx, Query{OrderID: "O021"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].Raw)

	got, _ = r.Query(ctx, Query{Source: "model", FailedOnly: true})
	assert.Len(t, got, 2)
}
