package period

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstat-dev/finstat/internal/model"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		id   model.PeriodID
		g    model.Granularity
		want string
	}{
		{model.PeriodID{Year: 2023, Quarter: 4}, model.Quarterly, "2023_4"},
		{model.PeriodID{Year: 2024, Quarter: 1}, model.Quarterly, "2024_1"},
		{model.PeriodID{Year: 2022}, model.Annual, "2022"},
		{model.PeriodID{Year: 2022, Quarter: 4}, model.Annual, "2022"},
	}
	for _, tt := range tests {
		got, err := Label(tt.id, tt.g)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Label(%v, %s)", tt.id, tt.g)
	}
}

func TestLabel_MissingYear(t *testing.T) {
	_, err := Label(model.PeriodID{Quarter: 2, Raw: "Q2"}, model.Quarterly)
	require.Error(t, err)

	var me *MalformedError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "Q2", me.Period.Raw)
	assert.Contains(t, err.Error(), "missing year")

	_, err = Label(model.PeriodID{Raw: "n/a"}, model.Annual)
	assert.True(t, errors.As(err, &me))
}

func TestLabel_QuarterlyWithoutQuarter(t *testing.T) {
	_, err := Label(model.PeriodID{Year: 2024}, model.Quarterly)
	var me *MalformedError
	assert.True(t, errors.As(err, &me))
}

func TestParse(t *testing.T) {
	tests := []struct {
		label       string
		year, qtr   int
		expectError bool
	}{
		{"2023_4", 2023, 4, false},
		{"2022", 2022, 0, false},
		{"2023_5", 0, 0, true},
		{"20x3", 0, 0, true},
		{"2023_x", 0, 0, true},
	}
	for _, tt := range tests {
		year, qtr, err := Parse(tt.label)
		if tt.expectError {
			assert.Error(t, err, "Parse(%q)", tt.label)
			continue
		}
		require.NoError(t, err, "Parse(%q)", tt.label)
		assert.Equal(t, tt.year, year)
		assert.Equal(t, tt.qtr, qtr)
	}
}

func TestYear(t *testing.T) {
	y, ok := Year("2022")
	assert.True(t, ok)
	assert.InDelta(t, 2022.0, y, 0)

	_, ok = Year("2024_1")
	assert.False(t, ok, "quarter labels are not coerced")

	_, ok = Year("abc")
	assert.False(t, ok)
}

func TestFromDate(t *testing.T) {
	tests := []struct {
		month   time.Month
		quarter int
	}{
		{time.January, 1}, {time.March, 1}, {time.April, 2},
		{time.June, 2}, {time.September, 3}, {time.December, 4},
	}
	for _, tt := range tests {
		id := FromDate(time.Date(2024, tt.month, 28, 0, 0, 0, 0, time.UTC), "")
		assert.Equal(t, 2024, id.Year)
		assert.Equal(t, tt.quarter, id.Quarter, "month %s", tt.month)
	}
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want model.PeriodID
	}{
		{"2024-03-31", model.PeriodID{Year: 2024, Quarter: 1, Raw: "2024-03-31"}},
		{"2023-12-31", model.PeriodID{Year: 2023, Quarter: 4, Raw: "2023-12-31"}},
		{"2024Q2", model.PeriodID{Year: 2024, Quarter: 2, Raw: "2024Q2"}},
		{"2024q3", model.PeriodID{Year: 2024, Quarter: 3, Raw: "2024q3"}},
		{"2021", model.PeriodID{Year: 2021, Raw: "2021"}},
		{"TTM", model.PeriodID{Raw: "TTM"}},
		{"Q4", model.PeriodID{Raw: "Q4"}},
		{"", model.PeriodID{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseIdentifier(tt.in), "ParseIdentifier(%q)", tt.in)
	}
}
