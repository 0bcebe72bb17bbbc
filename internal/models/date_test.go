package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("calendar_day", func(t *testing.T) {
		d, err := ParseDate("2024-03-05")
		require.NoError(t, err)
		assert.Equal(t, NewDate(2024, time.March, 5), d)
	})

	t.Run("rfc3339_truncated", func(t *testing.T) {
		d, err := ParseDate("2024-03-05T23:10:00Z")
		require.NoError(t, err)
		assert.Equal(t, "2024-03-05", d.String())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseDate("05/03/2024")
		assert.Error(t, err)
	})
}

func TestAddMonthsClamped(t *testing.T) {
	jan31 := NewDate(2024, time.January, 31)
	assert.Equal(t, "2024-02-29", jan31.AddMonthsClamped(1).String())
	assert.Equal(t, "2024-03-31", jan31.AddMonthsClamped(2).String())
	assert.Equal(t, "2024-04-30", jan31.AddMonthsClamped(3).String())
	assert.Equal(t, "2025-02-28", jan31.AddMonthsClamped(13).String())
	assert.Equal(t, "2023-12-31", jan31.AddMonthsClamped(-1).String())
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		Date Date `json:"date"`
	}

	out, err := json.Marshal(wrapper{Date: NewDate(2024, time.July, 1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-07-01"}`, string(out))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-12-31"}`), &w))
	assert.Equal(t, NewDate(2024, time.December, 31), w.Date)

	assert.Error(t, json.Unmarshal([]byte(`{"date":"not-a-date"}`), &w))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-06", d.String())

	require.NoError(t, d.Scan("2024-05-07 00:00:00+00:00"))
	assert.Equal(t, "2024-05-07", d.String())

	require.NoError(t, d.Scan([]byte("2024-05-08")))
	assert.Equal(t, "2024-05-08", d.String())

	assert.Error(t, d.Scan(42))

	v, err := NewDate(2024, 1, 2).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", v)
}

func TestOwnerMatches(t *testing.T) {
	assert.True(t, Owner("Ana").Matches(""))
	assert.True(t, Owner("Ana").Matches(OwnerBoth))
	assert.True(t, Owner("Ana").Matches("Ana"))
	assert.False(t, Owner("Ana").Matches("Bruno"))
	assert.False(t, OwnerBoth.Matches("Bruno"))
}
