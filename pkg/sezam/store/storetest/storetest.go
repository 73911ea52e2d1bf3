// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/sezam/pkg/sezam/store"
)

// Factory returns a fresh, empty store. It should register cleanup on t.
type Factory func(t *testing.T) store.Store

// Run executes every check against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("UpsertAndGetDoc", func(t *testing.T) { testUpsertAndGetDoc(t, newStore(t)) })
	t.Run("UpsertReplacesTopics", func(t *testing.T) { testUpsertReplacesTopics(t, newStore(t)) })
	t.Run("ListDocs", func(t *testing.T) { testListDocs(t, newStore(t)) })
	t.Run("DocsByTopic", func(t *testing.T) { testDocsByTopic(t, newStore(t)) })
	t.Run("Runs", func(t *testing.T) { testRuns(t, newStore(t)) })
	t.Run("TopicTable", func(t *testing.T) { testTopicTable(t, newStore(t)) })
	t.Run("RejectsEmptyID", func(t *testing.T) { testRejectsEmptyID(t, newStore(t)) })
	t.Run("LawKinds", func(t *testing.T) { testLawKinds(t, newStore(t)) })
}

func testLawKinds(t *testing.T, st store.Store) {
	ctx := context.Background()

	kinds, err := st.LawKinds(ctx)
	require.NoError(t, err)
	assert.Empty(t, kinds)

	require.NoError(t, st.SaveLawKinds(ctx, []string{"décret", "arrêté", "décret", ""}))
	kinds, err = st.LawKinds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"arrêté", "décret"}, kinds)

	require.NoError(t, st.SaveLawKinds(ctx, []string{"loi"}))
	kinds, err = st.LawKinds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"loi"}, kinds)

	require.NoError(t, st.SaveLawKinds(ctx, nil))
	kinds, err = st.LawKinds(ctx)
	require.NoError(t, err)
	assert.Empty(t, kinds)
}

func testUpsertAndGetDoc(t *testing.T, st store.Store) {
	ctx := context.Background()
	doc := store.Doc{
		ID:          "JORFTEXT000044178000",
		Title:       "Arrêté du 4 octobre 2021 portant création d'une zone de pêche",
		Text:        "pollution eau",
		Emetteur:    "Ministère de la mer",
		Nature:      "ARRETE",
		Date:        "2021-10-04",
		Fingerprint: 1<<63 + 42,
		Words:       []string{"pollution", "eau", "eau"},
		Topics:      []string{"santé", "environnement"},
		RunID:       "01HRUN",
	}
	require.NoError(t, st.UpsertDoc(ctx, doc))

	got, found, err := st.GetDoc(ctx, doc.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Emetteur, got.Emetteur)
	assert.Equal(t, doc.Fingerprint, got.Fingerprint)
	assert.Equal(t, []string{"eau", "pollution"}, got.Words)
	assert.Equal(t, []string{"environnement", "santé"}, got.Topics)
	assert.Equal(t, "01HRUN", got.RunID)

	_, found, err = st.GetDoc(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func testUpsertReplacesTopics(t *testing.T, st store.Store) {
	ctx := context.Background()
	require.NoError(t, st.UpsertDoc(ctx, store.Doc{ID: "a", Topics: []string{"pêche", "mer"}}))
	require.NoError(t, st.UpsertDoc(ctx, store.Doc{ID: "a", Title: "v2", Topics: []string{"mer"}}))

	got, found, err := st.GetDoc(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v2", got.Title)
	assert.Equal(t, []string{"mer"}, got.Topics)

	peche, err := st.DocsByTopic(ctx, "pêche", 0)
	require.NoError(t, err)
	assert.Empty(t, peche)
}

func testListDocs(t *testing.T, st store.Store) {
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, st.UpsertDoc(ctx, store.Doc{ID: id}))
	}

	docs, err := st.ListDocs(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})
}

func testDocsByTopic(t *testing.T, st store.Store) {
	ctx := context.Background()
	docs := []store.Doc{
		{ID: "1", Date: "2021-09-01", Topics: []string{"pêche"}},
		{ID: "2", Date: "2021-10-01", Topics: []string{"pêche", "mer"}},
		{ID: "3", Date: "2021-11-01", Topics: []string{"mer"}},
		{ID: "4", Date: "2021-08-01", Topics: []string{"pêche"}},
	}
	for _, d := range docs {
		require.NoError(t, st.UpsertDoc(ctx, d))
	}

	got, err := st.DocsByTopic(ctx, "pêche", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"2", "1", "4"}, []string{got[0].ID, got[1].ID, got[2].ID})

	limited, err := st.DocsByTopic(ctx, "pêche", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := st.DocsByTopic(ctx, "agriculture", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testRuns(t *testing.T, st store.Store) {
	ctx := context.Background()
	started := time.Date(2021, 10, 16, 9, 30, 0, 0, time.UTC)
	run := store.Run{ID: "01HRUN", StartedAt: started, Docs: 10, Matched: 7, Failed: 1, Duplicates: 2}
	require.NoError(t, st.UpsertRun(ctx, run))

	got, found, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, started.Equal(got.StartedAt), "started_at = %v", got.StartedAt)
	assert.Equal(t, 10, got.Docs)
	assert.Equal(t, 7, got.Matched)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 2, got.Duplicates)

	_, found, err = st.GetRun(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func testTopicTable(t *testing.T, st store.Store) {
	ctx := context.Background()

	empty, err := st.TopicTable(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	rows := []store.TopicRow{
		{Topic: "santé", Words: []string{"hôpital", "pollution"}},
		{Topic: "environnement", Words: []string{"pollution", "eau"}},
	}
	require.NoError(t, st.SaveTopicTable(ctx, rows))
	require.NoError(t, st.SaveTopicTable(ctx, rows))

	got, err := st.TopicTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, rows, got, "order and words must be preserved")
}

func testRejectsEmptyID(t *testing.T, st store.Store) {
	assert.Error(t, st.UpsertDoc(context.Background(), store.Doc{Title: "no id"}))
}
