package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "Plain date", input: "2021-12-31", want: true},
		{name: "Leap day", input: "2020-02-29", want: true},
		{name: "Leap day in non-leap year", input: "2021-02-29", want: false},
		{name: "February 30th", input: "2020-02-30", want: false},
		{name: "Month 13", input: "2020-13-01", want: false},
		{name: "Day zero", input: "2020-01-00", want: false},
		{name: "Single digit month", input: "2020-1-01", want: false},
		{name: "Trailing time", input: "2020-01-01T00:00:00", want: false},
		{name: "Empty", input: "", want: false},
		{name: "Garbage", input: "not-a-date", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidDate(tt.input))
		})
	}
}

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := ParseDate("2022-03-15")
	require.NoError(t, err)

	assert.Equal(t, 2022, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 15, d.Day())
	assert.Equal(t, "2022-03-15", d.String())
}

func TestParseDate_InvalidWrapsSentinel(t *testing.T) {
	_, err := ParseDate("2020-02-30")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDate_DaysSinceIgnoresLocalZone(t *testing.T) {
	// DST change in most northern zones happens in late March; day counts must stay whole
	from := MustParseDate("2021-03-27")
	to := MustParseDate("2021-03-29")
	assert.Equal(t, 2, to.DaysSince(from))
	assert.Equal(t, -2, from.DaysSince(to))

	assert.Equal(t, 366, MustParseDate("2021-01-01").DaysSince(MustParseDate("2020-01-01")))
}

func TestDate_Ordering(t *testing.T) {
	a := MustParseDate("2021-12-31")
	b := MustParseDate("2022-01-01")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 0, a.Compare(NewDate(2021, time.December, 31)))
	assert.Equal(t, b, a.AddDays(1))
}

func TestDate_OnOrBefore(t *testing.T) {
	d := MustParseDate("2022-06-30")

	assert.True(t, d.OnOrBefore(Date{}), "zero cutoff admits everything")
	assert.True(t, d.OnOrBefore(d))
	assert.True(t, d.OnOrBefore(MustParseDate("2022-07-01")))
	assert.False(t, d.OnOrBefore(MustParseDate("2022-06-29")))
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		On Date `json:"on"`
	}

	out, err := json.Marshal(wrapper{On: MustParseDate("2020-01-01")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":"2020-01-01"}`, string(out))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"on":null}`), &w))
	assert.True(t, w.On.IsZero())

	err = json.Unmarshal([]byte(`{"on":"2020-02-30"}`), &w)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDate_Scan(t *testing.T) {
	var d Date

	loc := time.FixedZone("UTC-5", -5*3600)
	require.NoError(t, d.Scan(time.Date(2021, 12, 31, 0, 0, 0, 0, loc)))
	assert.Equal(t, "2021-12-31", d.String())

	require.NoError(t, d.Scan([]byte("2020-02-29")))
	assert.Equal(t, "2020-02-29", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
