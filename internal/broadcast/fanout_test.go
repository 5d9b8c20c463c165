package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telllate/snipcast/internal/domain"
)

// fakeSink records every post and fails the ids listed in failWith.
type fakeSink struct {
	mu       sync.Mutex
	posts    map[string][]byte
	failWith map[string]error
}

func newFakeSink() *fakeSink {
	return &fakeSink{posts: make(map[string][]byte), failWith: make(map[string]error)}
}

func (s *fakeSink) Post(_ context.Context, connectionID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failWith[connectionID]; ok {
		return err
	}
	s.posts[connectionID] = data
	return nil
}

func records(ids ...string) []domain.ConnectionRecord {
	out := make([]domain.ConnectionRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.ConnectionRecord{ConnectionID: id, ConnectedAt: time.Now()})
	}
	return out
}

func TestFanout_DeliversToEveryRecipient(t *testing.T) {
	sink := newFakeSink()

	report := Fanout(context.Background(), sink, records("a", "b", "c"), []byte("payload"))

	assert.Equal(t, 3, report.Delivered())
	assert.Equal(t, 0, report.Failed())
	assert.Len(t, sink.posts, 3)
	assert.Equal(t, []byte("payload"), sink.posts["b"])
}

func TestFanout_OneFailureDoesNotAbortOthers(t *testing.T) {
	sink := newFakeSink()
	sink.failWith["b"] = errors.New("transport error")

	report := Fanout(context.Background(), sink, records("a", "b", "c"), []byte("x"))

	assert.Equal(t, 2, report.Delivered())
	assert.Equal(t, 1, report.Failed())
	assert.Contains(t, sink.posts, "a")
	assert.Contains(t, sink.posts, "c")
	assert.NotContains(t, sink.posts, "b")
}

func TestFanout_EmptyRecipientSet(t *testing.T) {
	sink := newFakeSink()

	report := Fanout(context.Background(), sink, nil, []byte("x"))

	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.Delivered())
	assert.Empty(t, sink.posts)
}

func TestFanout_ReportStaleConnections(t *testing.T) {
	sink := newFakeSink()
	sink.failWith["gone"] = domain.ErrConnectionGone
	sink.failWith["broken"] = errors.New("write timeout")

	report := Fanout(context.Background(), sink, records("live", "gone", "broken"), []byte("x"))

	require.Equal(t, 2, report.Failed())
	assert.Equal(t, []string{"gone"}, report.Stale())
}

func TestFanout_ResultsKeepRecordOrder(t *testing.T) {
	sink := newFakeSink()

	report := Fanout(context.Background(), sink, records("a", "b", "c"), []byte("x"))

	require.Len(t, report.Results, 3)
	assert.Equal(t, "a", report.Results[0].ConnectionID)
	assert.Equal(t, "b", report.Results[1].ConnectionID)
	assert.Equal(t, "c", report.Results[2].ConnectionID)
}
