package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/pipeline"
	"git.home.luguber.info/inful/pagebuilder/internal/retry"
)

type fakeConn struct {
	subject    string
	data       []byte
	publishErr error
	attempts   int
	flushed    bool
	closed     bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.attempts++
	if f.publishErr != nil {
		return f.publishErr
	}
	f.subject, f.data = subject, data
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error {
	f.flushed = true
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func report() *pipeline.BuildReport {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &pipeline.BuildReport{
		BuildID:     "b-7",
		Start:       start,
		End:         start.Add(2 * time.Second),
		Outcome:     pipeline.OutcomeFailed,
		Documents:   10,
		Compiled:    8,
		Failures:    []pipeline.PageFailure{{Source: "docs/a.md"}, {Source: "docs/b.md"}},
		BrokenLinks: []string{"/docs/x"},
		Errors:      []error{errors.New("2 pages failed")},
	}
}

func TestNotifier_BuildFinished(t *testing.T) {
	conn := &fakeConn{}
	n := New(conn, "pagebuilder.builds")
	require.NoError(t, n.BuildFinished(context.Background(), report()))

	require.Equal(t, "pagebuilder.builds", conn.subject)
	require.True(t, conn.flushed)

	var ev BuildEvent
	require.NoError(t, json.Unmarshal(conn.data, &ev))
	require.Equal(t, "b-7", ev.BuildID)
	require.Equal(t, "failed", ev.Outcome)
	require.Equal(t, int64(2000), ev.DurationMS)
	require.Equal(t, 2, ev.Failed)
	require.Equal(t, 1, ev.BrokenLinks)
	require.Equal(t, []string{"2 pages failed"}, ev.Errors)

	n.Close()
	require.True(t, conn.closed)
}

func TestNotifier_PublishErrorIsNetworkError(t *testing.T) {
	conn := &fakeConn{publishErr: errors.New("connection closed")}
	n := New(conn, "s", WithRetry(retry.NewPolicy(retry.Fixed, time.Millisecond, time.Millisecond, 3)))
	err := n.BuildFinished(context.Background(), report())
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryNetwork, ferrors.GetCategory(err))
	require.Equal(t, 4, conn.attempts)
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:1", "s")
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryNetwork, ferrors.GetCategory(err))
}
