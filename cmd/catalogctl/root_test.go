package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apploan "github.com/xiebiao/library-catalog/internal/application/loan"
	"github.com/xiebiao/library-catalog/internal/domain/identity"
	"github.com/xiebiao/library-catalog/pkg/mq"
)

func TestParseGrantArgs(t *testing.T) {
	id, caps, err := parseGrantArgs([]string{"3", "catalog.add_book", "catalog.can_mark_returned"}, false)
	require.NoError(t, err)
	assert.Equal(t, uint(3), id)
	assert.Equal(t, []identity.Capability{identity.CapAddBook, identity.CapMarkReturned}, caps)

	_, caps, err = parseGrantArgs([]string{"3"}, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, identity.AllCapabilities(), caps)

	tests := []struct {
		name string
		args []string
		all  bool
	}{
		{"bad id", []string{"abc", "catalog.add_book"}, false},
		{"zero id", []string{"0", "catalog.add_book"}, false},
		{"no caps", []string{"3"}, false},
		{"unknown cap", []string{"3", "catalog.fly"}, false},
		{"all with names", []string{"3", "catalog.add_book"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseGrantArgs(tt.args, tt.all)
			assert.Error(t, err)
		})
	}
}

type fakeDirectory map[uint]bool

func (f fakeDirectory) Exists(_ context.Context, id uint) (bool, error) { return f[id], nil }

type recordingStore struct {
	granted map[uint][]identity.Capability
}

func (s *recordingStore) Grant(_ context.Context, userID uint, caps ...identity.Capability) error {
	if s.granted == nil {
		s.granted = map[uint][]identity.Capability{}
	}
	s.granted[userID] = append(s.granted[userID], caps...)
	return nil
}

func TestGrantRequiresExistingUser(t *testing.T) {
	store := &recordingStore{}
	ctx := context.Background()

	err := grant(ctx, fakeDirectory{1: true}, store, 2, []identity.Capability{identity.CapAddBook})
	assert.Error(t, err)
	assert.Empty(t, store.granted)

	require.NoError(t, grant(ctx, fakeDirectory{1: true}, store, 1, []identity.Capability{identity.CapAddBook}))
	assert.Equal(t, []identity.Capability{identity.CapAddBook}, store.granted[1])
}

func TestPrintEvent(t *testing.T) {
	borrower := uint(7)
	body, err := json.Marshal(mq.NewEvent("loan.checked_out", apploan.Event{
		InstanceID: "b5e7c3a0-0000-4000-8000-000000000001",
		BookID:     4,
		From:       "available",
		To:         "checked_out",
		BorrowerID: &borrower,
		ActorID:    1,
	}))
	require.NoError(t, err)

	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local)
	var buf bytes.Buffer
	require.NoError(t, printEvent(&buf, mq.Delivery{RoutingKey: "loan.checked_out", Body: body, Timestamp: ts}))
	assert.Equal(t,
		"2024-01-15 10:30:00 loan.checked_out instance=b5e7c3a0-0000-4000-8000-000000000001 book=4 available→checked_out borrower=7 actor=1\n",
		buf.String())

	buf.Reset()
	require.NoError(t, printEvent(&buf, mq.Delivery{RoutingKey: "loan.x", Body: []byte("not json"), Timestamp: ts}))
	assert.Equal(t, "2024-01-15 10:30:00 loan.x not json\n", buf.String())
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"migrate", "grant", "revoke", "capabilities", "events"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
