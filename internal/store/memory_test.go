package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/odds-chat/internal/catalog"
	"github.com/sells-group/odds-chat/internal/model"
)

var _ catalog.SnapshotStore = (*MemoryStore)(nil)
var _ catalog.SnapshotStore = (*SQLiteStore)(nil)
var _ catalog.SnapshotStore = (*PostgresStore)(nil)

func TestMemoryStore_History(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	for _, c := range []string{"one", "two", "three"} {
		require.NoError(t, st.AppendMessage(ctx, &model.ChatMessage{UserID: "u1", Role: model.RoleUser, Content: c}))
	}

	h, err := st.History(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "two", h[0].Content)
	assert.NotEmpty(t, h[0].ID)

	// Returned slices are copies.
	h[0].Content = "mutated"
	again, _ := st.History(ctx, "u1", 0)
	assert.Equal(t, "two", again[1].Content)

	require.NoError(t, st.ClearHistory(ctx, "u1"))
	h, err = st.History(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestMemoryStore_Catalog(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	sports, _, err := st.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Nil(t, sports)

	at := time.Now().UTC()
	require.NoError(t, st.SaveCatalog(ctx, []model.Sport{{Key: "golf_pga"}}, at))
	sports, fetchedAt, err := st.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, "golf_pga", sports[0].Key)
	assert.Equal(t, at, fetchedAt)
}
