package journal

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finnvos/voxd/internal/domain"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, keySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func newTestJournal(t *testing.T) *Encrypted {
	t.Helper()
	j, err := Open(t.TempDir(), randomKey(t))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := newTestJournal(t)

	base := time.Now().Add(-time.Minute)
	events := []domain.RecordingEvent{
		{At: base, Event: "start", Outcome: domain.OutcomeRecording},
		{At: base.Add(10 * time.Second), Event: "stop", Outcome: domain.OutcomeOK,
			Duration: 10 * time.Second, Chars: 42},
		{At: base.Add(30 * time.Second), Event: "stop", Outcome: domain.OutcomeEmpty},
	}
	for _, ev := range events {
		require.NoError(t, j.Record(ev))
	}

	got, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest first.
	assert.Equal(t, domain.OutcomeEmpty, got[0].Outcome)
	assert.Equal(t, domain.OutcomeOK, got[1].Outcome)
	assert.Equal(t, 42, got[1].Chars)
	assert.Equal(t, 10*time.Second, got[1].Duration)
	assert.Equal(t, "start", got[2].Event)

	// IDs are assigned on insert.
	for _, ev := range got {
		assert.NotEmpty(t, ev.ID)
	}
}

func TestJournal_RecentLimit(t *testing.T) {
	j := newTestJournal(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Record(domain.RecordingEvent{
			Event: "stop", Outcome: domain.OutcomeOK,
		}))
	}

	got, err := j.Recent(2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestJournal_WrongKeyFailsToOpen(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(dir, randomKey(t))
	require.NoError(t, err)
	require.NoError(t, j.Record(domain.RecordingEvent{Event: "start", Outcome: domain.OutcomeRecording}))
	require.NoError(t, j.Close())

	_, err = Open(dir, randomKey(t))
	assert.Error(t, err)
}
