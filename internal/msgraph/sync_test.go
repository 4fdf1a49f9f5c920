package msgraph_test

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/stt/internal/model"
	"github.com/Tiliavir/stt/internal/msgraph"
	"github.com/Tiliavir/stt/internal/session"
)

func makeEvent(id, subject, start, end string) msgraph.CalendarEvent {
	return msgraph.CalendarEvent{
		ID:          id,
		Subject:     subject,
		Sensitivity: "normal",
		ShowAs:      "busy",
		Start:       msgraph.EventTime{DateTime: start, TimeZone: "UTC"},
		End:         msgraph.EventTime{DateTime: end, TimeZone: "UTC"},
	}
}

func utc(h, m int) time.Time {
	return time.Date(2026, 2, 27, h, m, 0, 0, time.UTC)
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.Open(filepath.Join(t.TempDir(), "activities"),
		session.WithClock(clockwork.NewFakeClockAt(utc(18, 0))))
	require.NoError(t, err)
	return s
}

func TestMapEvent(t *testing.T) {
	event := makeEvent("ext-id-1", "Sprint Planning", "2026-02-27T09:00:00", "2026-02-27T10:30:00")
	iv, err := msgraph.MapEvent(event, "UTC", "meeting: ")
	require.NoError(t, err)

	assert.Equal(t, "meeting: Sprint Planning", iv.Activity)
	assert.True(t, utc(9, 0).Equal(iv.Start))
	assert.Equal(t, 90*time.Minute, iv.Duration(iv.Start))
}

func TestMapEventWithLocation(t *testing.T) {
	event := makeEvent("ext-id-2", "Standup", "2026-02-27T10:00:00.0000000", "2026-02-27T10:15:00.0000000")
	event.BodyPreview = "Daily standup"
	event.Location.DisplayName = "Zoom"

	iv, err := msgraph.MapEvent(event, "UTC", "")
	require.NoError(t, err)
	assert.Equal(t, "Standup\nDaily standup\nZoom", iv.Activity)
	assert.Equal(t, "Standup", iv.Headline())
}

func TestMapEventTimezone(t *testing.T) {
	event := makeEvent("ext-id-3", "Review", "2026-02-27T09:00:00", "2026-02-27T10:00:00")
	iv, err := msgraph.MapEvent(event, "Europe/Berlin", "")
	require.NoError(t, err)
	assert.True(t, utc(8, 0).Equal(iv.Start))

	_, err = msgraph.MapEvent(event, "Mars/Olympus", "")
	assert.Error(t, err)
}

func TestMapEventRejectsEndBeforeStart(t *testing.T) {
	event := makeEvent("bad", "Backwards", "2026-02-27T10:00:00", "2026-02-27T09:00:00")
	_, err := msgraph.MapEvent(event, "UTC", "")
	assert.ErrorIs(t, err, model.ErrStartAfterEnd)
}

func TestSyncEventsImport(t *testing.T) {
	s := newSession(t)
	events := []msgraph.CalendarEvent{
		makeEvent("ext-1", "Architecture Board", "2026-02-27T09:00:00", "2026-02-27T10:30:00"),
		makeEvent("ext-2", "Broken", "tomorrow", "2026-02-27T10:30:00"),
	}

	var out bytes.Buffer
	result, err := msgraph.SyncEvents(s, events, msgraph.SyncOptions{Timezone: "UTC", Out: &out})
	require.NoError(t, err)

	assert.Equal(t, msgraph.SyncResult{Imported: 1, Errors: 1}, result)
	assert.Contains(t, out.String(), "Imported: Architecture Board (1h 30m)")
	require.Equal(t, 1, s.Store().Len())
	assert.Equal(t, "Architecture Board", s.Store().Items()[0].Activity)
	assert.True(t, s.Dirty())
}

func TestSyncEventsIdempotent(t *testing.T) {
	s := newSession(t)
	events := []msgraph.CalendarEvent{
		makeEvent("ext-1", "Architecture Board", "2026-02-27T09:00:00", "2026-02-27T10:30:00"),
	}
	opts := msgraph.SyncOptions{Timezone: "UTC"}

	r1, err := msgraph.SyncEvents(s, events, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, r1.Imported)

	r2, err := msgraph.SyncEvents(s, events, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, r2.Imported)
	assert.Equal(t, 1, r2.Skipped)
	assert.Equal(t, 1, s.Store().Len())
}

func TestSyncEventsSkipFiltered(t *testing.T) {
	tests := []struct {
		name   string
		modify func(e *msgraph.CalendarEvent)
	}{
		{"cancelled", func(e *msgraph.CalendarEvent) { e.IsCancelled = true }},
		{"all-day", func(e *msgraph.CalendarEvent) { e.IsAllDay = true }},
		{"private", func(e *msgraph.CalendarEvent) { e.Sensitivity = "private" }},
		{"free", func(e *msgraph.CalendarEvent) { e.ShowAs = "free" }},
		{"no start", func(e *msgraph.CalendarEvent) { e.Start.DateTime = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t)
			e := makeEvent("c1", tt.name, "2026-02-27T09:00:00", "2026-02-27T10:00:00")
			tt.modify(&e)

			r, err := msgraph.SyncEvents(s, []msgraph.CalendarEvent{e}, msgraph.SyncOptions{})
			require.NoError(t, err)
			assert.Equal(t, msgraph.SyncResult{}, r)
			assert.Equal(t, 0, s.Store().Len())
		})
	}
}

func TestSyncEventsDryRun(t *testing.T) {
	s := newSession(t)
	events := []msgraph.CalendarEvent{
		makeEvent("ext-dry", "Dry Run Event", "2026-02-27T09:00:00", "2026-02-27T10:00:00"),
	}

	result, err := msgraph.SyncEvents(s, events, msgraph.SyncOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, s.Store().Len())
	assert.False(t, s.Dirty())
}

func TestSyncEventsResolvesOverlapWithManualEntries(t *testing.T) {
	s := newSession(t)
	manual, err := model.Closed(utc(9, 0), utc(11, 0), "coding")
	require.NoError(t, err)
	s.Insert(manual)

	events := []msgraph.CalendarEvent{
		makeEvent("ext-1", "Meeting", "2026-02-27T10:00:00", "2026-02-27T12:00:00"),
	}
	_, err = msgraph.SyncEvents(s, events, msgraph.SyncOptions{})
	require.NoError(t, err)

	items := s.Store().Items()
	require.Len(t, items, 2)
	assert.Equal(t, "coding", items[0].Activity)
	end, _ := items[0].End.Time()
	assert.True(t, utc(10, 0).Equal(end))
	assert.Equal(t, "Meeting", items[1].Activity)
}
