package store

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mexffff/PromptUzman/internal/db"
	"github.com/mexffff/PromptUzman/internal/prompt"
)

func record(id, idea string, ts int64) prompt.Record {
	return prompt.Record{ID: id, Idea: idea, Text: "text " + id, Timestamp: ts}
}

// backends returns every Repository implementation under test.
func backends(t *testing.T) map[string]*Store {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return map[string]*Store{
		"memory": NewMemory(),
		"sqlite": New(db.NewKV(database), nil),
	}
}

func TestLoadAll_EmptyStore(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			records, err := s.LoadAll(context.Background())
			require.NoError(t, err)
			require.NotNil(t, records)
			require.Len(t, records, 0)
		})
	}
}

func TestSaveAll_RoundTrip(t *testing.T) {
	lists := map[string][]prompt.Record{
		"zero records": {},
		"one record":   {record("01A", "tek", 1)},
		"ordered": {
			record("03C", "üçüncü", 3),
			record("02B", "ikinci", 2),
			record("01A", "birinci", 1),
		},
	}

	for name, s := range backends(t) {
		for listName, records := range lists {
			t.Run(name+"/"+listName, func(t *testing.T) {
				ctx := context.Background()
				require.NoError(t, s.SaveAll(ctx, records))

				loaded, err := s.LoadAll(ctx)
				require.NoError(t, err)
				require.Equal(t, records, loaded)
			})
		}
	}
}

func TestSaveAll_NilStoresEmptyList(t *testing.T) {
	kv := NewMemoryKV()
	s := New(kv, nil)
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, nil))
	raw, found, err := kv.Get(ctx, Key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "[]", string(raw))
}

func TestPrepend(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Prepend(ctx, record("01A", "ilk", 1)))
			require.NoError(t, s.Prepend(ctx, record("02B", "ikinci", 2)))

			loaded, err := s.LoadAll(ctx)
			require.NoError(t, err)
			require.Len(t, loaded, 2)
			require.Equal(t, "02B", loaded[0].ID)
			require.Equal(t, "01A", loaded[1].ID)
		})
	}
}

func TestDelete_PreservesOrder(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SaveAll(ctx, []prompt.Record{
				record("04", "d", 4),
				record("03", "c", 3),
				record("02", "b", 2),
				record("01", "a", 1),
			}))

			require.NoError(t, s.Delete(ctx, "03"))

			loaded, err := s.LoadAll(ctx)
			require.NoError(t, err)
			ids := make([]string, len(loaded))
			for i, r := range loaded {
				ids[i] = r.ID
			}
			require.Equal(t, []string{"04", "02", "01"}, ids)
		})
	}
}

func TestDelete_UnknownID(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	original := []prompt.Record{record("01", "a", 1), record("02", "b", 2)}
	require.NoError(t, s.SaveAll(ctx, original))

	require.NoError(t, s.Delete(ctx, "nope"))

	loaded, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, original, loaded)
}

func TestLoadAll_CorruptDataIsLoggedAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	kv := NewMemoryKV()
	s := New(kv, log.New(&buf, "", 0))
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, Key, []byte(`{not json`)))

	loaded, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 0)
	require.Contains(t, buf.String(), "Failed to load saved prompts")

	// A later prepend replaces the corrupt data
	require.NoError(t, s.Prepend(ctx, record("01", "a", 1)))
	loaded, err = s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
}

func TestStore_JSONFieldNames(t *testing.T) {
	kv := NewMemoryKV()
	s := New(kv, nil)
	ctx := context.Background()

	require.NoError(t, s.SaveAll(ctx, []prompt.Record{record("01", "fikir", 1700000000000)}))
	raw, _, err := kv.Get(ctx, Key)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"01","idea":"fikir","text":"text 01","timestamp":1700000000000}]`, string(raw))
}

func TestFind(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	rec := prompt.NewRecord("fikir", "metin", time.Now())
	require.NoError(t, s.Prepend(ctx, rec))

	got, ok, err := Find(ctx, s, rec.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec, got)

	_, ok, err = Find(ctx, s, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingKV) Put(context.Context, string, []byte) error        { return f.err }

func TestStore_BackendErrorsPropagate(t *testing.T) {
	boom := errors.New("disk gone")
	s := New(failingKV{err: boom}, nil)
	ctx := context.Background()

	_, err := s.LoadAll(ctx)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, s.Prepend(ctx, record("01", "a", 1)), boom)
	require.ErrorIs(t, s.Delete(ctx, "01"), boom)
	require.ErrorIs(t, s.SaveAll(ctx, nil), boom)
}
