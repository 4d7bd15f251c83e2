package internal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/iksnae/adk-chat/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTitleStore(t *testing.T, app string) *TitleStore {
	t.Helper()
	store, err := NewTitleStore(testutil.CreateInMemoryDB(t), app)
	require.NoError(t, err)
	return store
}

func TestTitleStore_RecordAndRead(t *testing.T) {
	store := newTestTitleStore(t, testApp)

	require.NoError(t, store.RecordTitle("u1", "s1", "First"))
	require.NoError(t, store.RecordTitle("u1", "s2", "Second"))
	require.NoError(t, store.RecordTitle("u2", "s1", "Other user"))
	require.NoError(t, store.RecordTitle("u1", "s1", "First, renamed"))

	titles, err := store.Titles("u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"s1": "First, renamed", "s2": "Second"}, titles)

	require.NoError(t, store.Forget("u1", "s1"))
	titles, err = store.Titles("u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"s2": "Second"}, titles)
}

func TestTitleStore_ScopedByApp(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	a, err := NewTitleStore(db, "app_a")
	require.NoError(t, err)
	b, err := NewTitleStore(db, "app_b")
	require.NoError(t, err)

	require.NoError(t, a.RecordTitle("u1", "s1", "from a"))

	titles, err := b.Titles("u1")
	require.NoError(t, err)
	assert.Empty(t, titles)
	assert.Equal(t, 1, testutil.CountRows(t, db, "session_titles"))
}

func TestOpenTitleStore_Persists(t *testing.T) {
	path := filepath.Join(testutil.CreateTempDir(t), "titles.db")

	store, err := OpenTitleStore(path, testApp)
	require.NoError(t, err)
	require.NoError(t, store.RecordTitle("u1", "s1", "Kept"))
	require.NoError(t, store.Close())

	reopened, err := OpenTitleStore(path, testApp)
	require.NoError(t, err)
	defer reopened.Close()

	titles, err := reopened.Titles("u1")
	require.NoError(t, err)
	assert.Equal(t, "Kept", titles["s1"])
}

func TestTitledBackend_ListOverlay(t *testing.T) {
	client, fake := newTestClient(t)
	fake.AddSession("u1", "s1", 1700000001)
	fake.AddSession("u1", "s2", 1700000002)

	store := newTestTitleStore(t, testApp)
	require.NoError(t, store.RecordTitle("u1", "s1", "Stored title"))

	backend := NewTitledBackend(client, store, Capabilities{})
	sessions := backend.ListSessions(context.Background(), "u1")
	require.Len(t, sessions, 2)
	assert.Equal(t, "s2", sessions[0].ID)
	assert.Equal(t, DefaultListedSessionTitle, sessions[0].Title)
	assert.Equal(t, "Stored title", sessions[1].Title)
}

func TestTitledBackend_Rename(t *testing.T) {
	tests := []struct {
		name      string
		renamable bool
		want      map[string]string
	}{
		{"capability on persists", true, map[string]string{"s1": "Renamed"}},
		{"capability off stays local", false, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fake := newTestClient(t)
			store := newTestTitleStore(t, testApp)
			backend := NewTitledBackend(client, store, Capabilities{Rename: tt.renamable})

			require.NoError(t, backend.RenameSession(context.Background(), "u1", "s1", "Renamed"))
			titles, err := store.Titles("u1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles)
			assert.Empty(t, fake.Requests())
		})
	}
}

func TestTitledBackend_DeleteForgets(t *testing.T) {
	client, fake := newTestClient(t, WithCapabilities(Capabilities{Delete: true}))
	fake.AddSession("u1", "s1", 1700000001)
	store := newTestTitleStore(t, testApp)
	require.NoError(t, store.RecordTitle("u1", "s1", "Doomed"))

	backend := NewTitledBackend(client, store, Capabilities{Delete: true, Rename: true})
	require.NoError(t, backend.DeleteSession(context.Background(), "u1", "s1"))

	titles, err := store.Titles("u1")
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestTitleStore_RecordDerivedTitle(t *testing.T) {
	store := newTestTitleStore(t, testApp)

	require.NoError(t, store.RecordTitle("u1", "s1", "Trip planning"))
	require.NoError(t, store.RecordDerivedTitle("u1", "s1", "a follow-up question about the..."))
	require.NoError(t, store.RecordDerivedTitle("u1", "s2", "Fresh..."))

	titles, err := store.Titles("u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"s1": "Trip planning", "s2": "Fresh..."}, titles)
}

func TestTitledBackend_DeleteWithoutCapabilityKeepsTitle(t *testing.T) {
	client, fake := newTestClient(t)
	fake.AddSession("u1", "s1", 1700000001)
	store := newTestTitleStore(t, testApp)
	require.NoError(t, store.RecordTitle("u1", "s1", "Still listed"))

	backend := NewTitledBackend(client, store, Capabilities{Rename: true})
	require.NoError(t, backend.DeleteSession(context.Background(), "u1", "s1"))

	titles, err := store.Titles("u1")
	require.NoError(t, err)
	assert.Equal(t, "Still listed", titles["s1"])
	assert.Empty(t, fake.Requests())

	sessions := backend.ListSessions(context.Background(), "u1")
	require.Len(t, sessions, 1)
	assert.Equal(t, "Still listed", sessions[0].Title)
}

func TestTitledBackend_DeleteFailureKeepsTitle(t *testing.T) {
	client, fake := newTestClient(t, WithCapabilities(Capabilities{Delete: true}))
	fake.Fail("delete", 500)
	store := newTestTitleStore(t, testApp)
	require.NoError(t, store.RecordTitle("u1", "s1", "Kept"))

	backend := NewTitledBackend(client, store, Capabilities{Delete: true, Rename: true})
	err := backend.DeleteSession(context.Background(), "u1", "s1")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))

	titles, err := store.Titles("u1")
	require.NoError(t, err)
	assert.Equal(t, "Kept", titles["s1"])
}

func TestTitledBackend_WithController(t *testing.T) {
	client, fake := newTestClient(t)
	store := newTestTitleStore(t, testApp)
	backend := NewTitledBackend(client, store, Capabilities{Delete: true, Rename: true})

	c := NewController(backend, "u1", WithTitleRecorder(backend))
	require.NoError(t, c.SendMessage(context.Background(), "Where should we eat tonight in Porto?"))

	// a fresh controller sees the derived title through the overlay
	fresh := NewController(backend, "u1")
	fresh.Bootstrap(context.Background())
	sessions := fresh.State().Sessions
	require.Len(t, sessions, 1)
	assert.Equal(t, "Where should we eat tonight in...", sessions[0].Title)
	assert.Equal(t, 1, fake.CountRequests("POST", "/run"))
}

func TestTitledBackend_RenameSurvivesLaterSend(t *testing.T) {
	client, fake := newTestClient(t)
	fake.AddSession("u1", "s1", 1700000001,
		testutil.UserEvent("e1", "plan a trip", 1700000000),
		testutil.ModelEvent("e2", "Sure, where to?", 1700000001),
	)
	store := newTestTitleStore(t, testApp)
	backend := NewTitledBackend(client, store, Capabilities{Rename: true})

	first := NewController(backend, "u1", WithTitleRecorder(backend))
	first.Bootstrap(context.Background())
	require.NoError(t, first.RenameSession(context.Background(), "s1", "Trip planning"))

	second := NewController(backend, "u1", WithTitleRecorder(backend))
	second.Bootstrap(context.Background())
	require.NoError(t, second.SelectSession(context.Background(), "s1"))
	require.NoError(t, second.SendMessage(context.Background(), "a follow-up question about the itinerary"))
	assert.Equal(t, "Trip planning", second.State().Sessions[0].Title)

	third := NewController(backend, "u1")
	third.Bootstrap(context.Background())
	sessions := third.State().Sessions
	require.Len(t, sessions, 1)
	assert.Equal(t, "Trip planning", sessions[0].Title)
}
