package instruction_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/stt/internal/instruction"
	"github.com/Tiliavir/stt/internal/model"
)

var now = time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)

func clock(h, m int) time.Time {
	return time.Date(2024, 3, 5, h, m, 0, 0, time.Local)
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		kind     instruction.Kind
		activity string
		at       time.Time
	}{
		{"coding", instruction.Start, "coding", now},
		{"  coding  ", instruction.Start, "coding", now},
		{"coding since 15m", instruction.Start, "coding", now.Add(-15 * time.Minute)},
		{"coding since 1 hour 30 mins", instruction.Start, "coding", now.Add(-90 * time.Minute)},
		{"coding since 5min", instruction.Start, "coding", now.Add(-5 * time.Minute)},
		{"coding since 10:00", instruction.Start, "coding", clock(10, 0)},
		{"coding at 09:15:30", instruction.Start, "coding", clock(9, 15).Add(30 * time.Second)},
		{"coding at 2024-03-04 09:15", instruction.Start, "coding", time.Date(2024, 3, 4, 9, 15, 0, 0, time.Local)},
		{"coding since 2024.03.04 09:15:00", instruction.Start, "coding", time.Date(2024, 3, 4, 9, 15, 0, 0, time.Local)},
		{"coding 2h ago", instruction.Start, "coding", now.Add(-2 * time.Hour)},
		{"code review SINCE 20m", instruction.Start, "code review", now.Add(-20 * time.Minute)},
		{"argl since 5min but actually not", instruction.Start, "argl since 5min but actually not", now},
		{"finance review", instruction.Start, "finance review", now},
		{"write report\nsection two since 5m", instruction.Start, "write report\nsection two", now.Add(-5 * time.Minute)},
		{"fin", instruction.Fin, "", now},
		{"FIN", instruction.Fin, "", now},
		{"fin at 16:00", instruction.Fin, "", clock(16, 0)},
		{"fin 10m ago", instruction.Fin, "", now.Add(-10 * time.Minute)},
		{"resume", instruction.Resume, "", now},
		{"resume 5 minutes ago", instruction.Resume, "", now.Add(-5 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ins, err := instruction.Parse(tt.input, now)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ins.Kind)
			assert.Equal(t, tt.activity, ins.Activity)
			assert.False(t, ins.When.IsSpan())
			assert.True(t, tt.at.Equal(ins.When.Resolve(now)), "got %v, want %v", ins.When.Resolve(now), tt.at)
		})
	}
}

func TestParseSpan(t *testing.T) {
	ins, err := instruction.Parse("meeting from 09:00 to 10:30", now)
	require.NoError(t, err)
	assert.Equal(t, instruction.Start, ins.Kind)
	assert.Equal(t, "meeting", ins.Activity)

	from, to, ok := ins.When.Bounds()
	require.True(t, ok)
	assert.True(t, clock(9, 0).Equal(from))
	assert.True(t, clock(10, 30).Equal(to))

	iv, err := ins.Interval(now)
	require.NoError(t, err)
	end, closed := iv.End.Time()
	assert.True(t, closed)
	assert.True(t, clock(10, 30).Equal(end))
}

func TestParseSpanOverMidnight(t *testing.T) {
	ins, err := instruction.Parse("night shift from 23:00 until 01:00", now)
	require.NoError(t, err)

	from, to, ok := ins.When.Bounds()
	require.True(t, ok)
	assert.True(t, clock(23, 0).Equal(from))
	assert.True(t, time.Date(2024, 3, 6, 1, 0, 0, 0, time.Local).Equal(to))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"", instruction.ErrEmptyActivity},
		{"   ", instruction.ErrEmptyActivity},
		{"lunch at 25:99", instruction.ErrBadTime},
		{"fin from 10:00 to 11:00", instruction.ErrBadTime},
		{"resume from 10:00 to 11:00", instruction.ErrBadTime},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := instruction.Parse(tt.input, now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"15m":              15 * time.Minute,
		"1h30m":            90 * time.Minute,
		"2d":               48 * time.Hour,
		"1w":               7 * 24 * time.Hour,
		"2 hours":          2 * time.Hour,
		"1 hour 5 mins":    65 * time.Minute,
		"2min 17secs":      2*time.Minute + 17*time.Second,
		"45 seconds":       45 * time.Second,
		"3 Days 2 Minutes": 72*time.Hour + 2*time.Minute,
	}
	for in, want := range tests {
		got, err := instruction.ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "soon", "5 parsecs", "1h but"} {
		_, err := instruction.ParseDuration(in)
		assert.ErrorIs(t, err, instruction.ErrBadTime, in)
	}
}

func TestParseTime(t *testing.T) {
	got, hasDate, err := instruction.ParseTime("7:05", now)
	require.NoError(t, err)
	assert.False(t, hasDate)
	assert.True(t, clock(7, 5).Equal(got))

	got, hasDate, err = instruction.ParseTime("2023-12-31_23:59:59", now)
	require.NoError(t, err)
	assert.True(t, hasDate)
	assert.True(t, time.Date(2023, 12, 31, 23, 59, 59, 0, time.Local).Equal(got))

	_, _, err = instruction.ParseTime("yesterday", now)
	assert.ErrorIs(t, err, instruction.ErrBadTime)
}

func TestInstructionInterval(t *testing.T) {
	ins := instruction.Instruction{Kind: instruction.Start, Activity: "coding", When: instruction.Relative(-time.Hour)}
	iv, err := ins.Interval(now)
	require.NoError(t, err)
	assert.True(t, iv.End.IsOpen())
	assert.True(t, now.Add(-time.Hour).Equal(iv.Start))

	ins.When = instruction.Span(clock(11, 0), clock(10, 0))
	_, err = ins.Interval(now)
	assert.ErrorIs(t, err, model.ErrStartAfterEnd)

	ins.Activity = ""
	_, err = ins.Interval(now)
	assert.ErrorIs(t, err, instruction.ErrEmptyActivity)
}
