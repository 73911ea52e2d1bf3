package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cognicore/sezam/pkg/sezam/store"
	"github.com/cognicore/sezam/pkg/sezam/store/storetest"
)

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "sezam.db"))
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		return st
	})
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sezam.db")

	st, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, st.UpsertDoc(ctx, store.Doc{ID: "JORFTEXT1", Topics: []string{"pêche"}}))
	require.NoError(t, st.Close())

	st, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer st.Close()

	docs, err := st.DocsByTopic(ctx, "pêche", 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "JORFTEXT1", docs[0].ID)
}
