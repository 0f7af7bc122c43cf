package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/prospect-pipeline/internal/config"
	"github.com/wolfman30/prospect-pipeline/internal/notify"
	"github.com/wolfman30/prospect-pipeline/internal/prospects"
	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

type harness struct {
	t      *testing.T
	store  *prospects.Store
	sender *notify.StubEmailSender
	cfg    *appconfig.Config
	closed int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logging.New("error")
	n := 0
	store := prospects.NewStore(prospects.NewInMemoryRepository(), logger).
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("p-%d", n)
		})
	return &harness{
		t:      t,
		store:  store,
		sender: notify.NewStubEmailSender(logger),
		cfg:    &appconfig.Config{Timezone: "UTC", TouchGoal: 3, DigestRecipient: "coach@example.com"},
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	logger := logging.New("error")
	app := &cliApp{
		cfg:    h.cfg,
		logger: logger,
		openStore: func(context.Context, *appconfig.Config, *logging.Logger) (*prospects.Store, func(), error) {
			return h.store, func() { h.closed++ }, nil
		},
		newSender: func(context.Context, *appconfig.Config, *logging.Logger) (notify.EmailSender, error) {
			return h.sender, nil
		},
	}
	var out bytes.Buffer
	root := newRootCmd(app, &out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--today", "2024-01-15"}, args...))
	err := execute(context.Background(), app, root)
	return out.String(), err
}

func TestAddAndList(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("add", "Jane Smith", "--priority", "high", "--next", "2024-01-14", "--next-type", "follow-up")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Jane Smith (p-1)")

	_, err = h.run("add", "Bob", "--next", "2024-01-15")
	require.NoError(t, err)

	out, err = h.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "2024-01-14 follow-up")
	assert.Contains(t, out, "Total: 2")
	assert.Contains(t, out, "1 overdue")
	assert.Contains(t, out, "1 due today")

	out, err = h.run("list", "--status", "warm")
	require.NoError(t, err)
	assert.Contains(t, out, "No prospects match")

	_, err = h.run("list", "--sort", "colour")
	assert.ErrorIs(t, err, prospects.ErrInvalidSort)
}

func TestAddRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("add", "  ")
	assert.ErrorIs(t, err, prospects.ErrInvalidName)

	_, err = h.run("add", "Ann", "--next", "tomorrow")
	assert.ErrorIs(t, err, prospects.ErrInvalidDate)

	_, err = h.run("--today", "someday", "stats")
	assert.Error(t, err)
}

func TestContactAdvanceAndTouches(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("add", "Ann")
	require.NoError(t, err)

	out, err := h.run("log-contact", "p-1", "--type", "call", "--note", "left message",
		"--next", "2024-01-18", "--next-type", "follow-up")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged call with Ann")
	assert.Contains(t, out, "next follow-up 2024-01-18")

	_, err = h.run("contact", "p-1", "--type", "fax")
	assert.ErrorIs(t, err, prospects.ErrInvalidContactType)

	out, err = h.run("advance", "p-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann: cold → warm")

	out, err = h.run("touches")
	require.NoError(t, err)
	assert.Contains(t, out, "1 / 3 touches on 2024-01-15")
	assert.Contains(t, out, "call")
}

func TestAdvanceTerminal(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("add", "Ann", "--status", "not-interested")
	require.NoError(t, err)

	_, err = h.run("advance", "p-1")
	assert.ErrorIs(t, err, prospects.ErrTerminalStatus)

	_, err = h.run("advance", "p-9")
	assert.ErrorIs(t, err, prospects.ErrProspectNotFound)
}

func TestDeleteRequiresYes(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("add", "Ann")
	require.NoError(t, err)

	_, err = h.run("delete", "p-1")
	assert.ErrorIs(t, err, prospects.ErrDeleteNotConfirmed)

	out, err := h.run("delete", "p-1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted p-1")

	_, err = h.run("delete", "p-1", "--yes")
	assert.ErrorIs(t, err, prospects.ErrProspectNotFound)
}

func TestDigestPreviewAndSend(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("digest", "--send")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing due")
	assert.Empty(t, h.sender.Sent())

	_, err = h.run("add", "Ann", "--next", "2024-01-10")
	require.NoError(t, err)

	out, err = h.run("digest")
	require.NoError(t, err)
	assert.Contains(t, out, "Follow-ups for 2024-01-15: 1 overdue, 0 due today")
	assert.Empty(t, h.sender.Sent())

	out, err = h.run("digest", "--send")
	require.NoError(t, err)
	assert.Contains(t, out, "Sent digest to coach@example.com")
	require.Len(t, h.sender.Sent(), 1)
	assert.Equal(t, "coach@example.com", h.sender.Sent()[0].To)
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("add", "Ann", "--status", "client")
	require.NoError(t, err)

	out, err := h.run("stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 1")
	assert.Contains(t, out, "client 1")
}

func TestStorageClosedAfterEveryCommand(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("add", "Ann")
	require.NoError(t, err)
	assert.Equal(t, 1, h.closed)

	_, err = h.run("advance", "p-9")
	require.Error(t, err)
	assert.Equal(t, 2, h.closed)

	_, err = h.run("delete", "p-1")
	require.ErrorIs(t, err, prospects.ErrDeleteNotConfirmed)
	assert.Equal(t, 3, h.closed)

	_, err = h.run("--today", "someday", "list")
	require.Error(t, err)
	assert.Equal(t, 4, h.closed)
}
