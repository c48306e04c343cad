package userdata

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/concierge/internal/model"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, nil), mr
}

func TestProfileRoundtrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	saved := &model.UserProfile{Age: 31, Gender: model.GenderFemale, LivesInUS: true}
	require.NoError(t, store.SaveProfile(ctx, "u1", saved))

	got, err := store.Profile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved, got)
}

func TestProfileMissingReturnsNilNil(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Profile(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileCorruptReturnsNilNil(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Set("user:profile:u1", "not json")

	got, err := store.Profile(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveProfileRejectsInvalid(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.SaveProfile(context.Background(), "u1", &model.UserProfile{Age: 200, Gender: model.GenderMale})
	assert.Error(t, err)
}

func TestSearchHistoryNewestFirst(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.RecordSearch(ctx, "u1", SearchRecord{Query: "first"})
	store.RecordSearch(ctx, "u1", SearchRecord{Query: "second"})

	records, err := store.SearchHistory(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].Query)
	assert.Equal(t, "first", records[1].Query)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestSearchHistoryLimit(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		store.RecordSearch(ctx, "u1", SearchRecord{Query: fmt.Sprintf("q%d", i)})
	}

	records, err := store.SearchHistory(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRecordSearchTrimsHistory(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < historyMaxEntries+10; i++ {
		store.RecordSearch(ctx, "u1", SearchRecord{Query: fmt.Sprintf("q%d", i)})
	}

	entries, err := mr.List("user:history:u1")
	require.NoError(t, err)
	assert.Len(t, entries, historyMaxEntries)
}

func TestSearchHistorySkipsCorruptEntries(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	store.RecordSearch(ctx, "u1", SearchRecord{Query: "good"})
	_, err := mr.Lpush("user:history:u1", "not json")
	require.NoError(t, err)

	records, err := store.SearchHistory(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].Query)
}

func TestNilClientIsGraceful(t *testing.T) {
	store := NewStore(nil, nil)
	ctx := context.Background()

	assert.False(t, store.Available())

	profile, err := store.Profile(ctx, "u1")
	assert.NoError(t, err)
	assert.Nil(t, profile)

	assert.NoError(t, store.SaveProfile(ctx, "u1", &model.UserProfile{Age: 30, Gender: model.GenderMale}))
	store.RecordSearch(ctx, "u1", SearchRecord{Query: "q"})

	records, err := store.SearchHistory(ctx, "u1", 10)
	assert.NoError(t, err)
	assert.Nil(t, records)
}

func TestRecordSearchEmptyUserIDIsNoop(t *testing.T) {
	store, mr := newTestStore(t)
	store.RecordSearch(context.Background(), "", SearchRecord{Query: "q"})
	assert.False(t, mr.Exists("user:history:"))
}
