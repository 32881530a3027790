package dateparse

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnl-dashboard/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_DayMonthYearHyphen(t *testing.T) {
	got, ok := Parse(domain.TextCell("01-02-2023"))
	require.True(t, ok)
	assert.Equal(t, day(2023, time.February, 1), got)
}

func TestParse_DayMonthYearSlash(t *testing.T) {
	got, ok := Parse(domain.TextCell(" 15/08/2022 "))
	require.True(t, ok)
	assert.Equal(t, day(2022, time.August, 15), got)
}

func TestParse_YearMonthDay(t *testing.T) {
	got, ok := Parse(domain.TextCell("2023-03-04"))
	require.True(t, ok)
	assert.Equal(t, day(2023, time.March, 4), got)
}

func TestParse_TwoDigitFirstSegmentIsDayFirst(t *testing.T) {
	// Ambiguous input resolves by first-segment length only.
	got, ok := Parse(domain.TextCell("05-06-2024"))
	require.True(t, ok)
	assert.Equal(t, day(2024, time.June, 5), got)
}

func TestParse_DayOverflowRollsIntoNextMonth(t *testing.T) {
	got, ok := Parse(domain.TextCell("31-02-2023"))
	require.True(t, ok)
	assert.Equal(t, day(2023, time.March, 3), got)
}

func TestParse_SerialNumber(t *testing.T) {
	got, ok := Parse(domain.NumberCell(44927))
	require.True(t, ok)
	assert.Equal(t, day(2023, time.January, 1), got)
}

func TestParse_SerialText(t *testing.T) {
	got, ok := Parse(domain.TextCell("44928"))
	require.True(t, ok)
	assert.Equal(t, day(2023, time.January, 2), got)
}

func TestParse_NativeDate(t *testing.T) {
	in := time.Date(2021, time.July, 9, 10, 30, 0, 0, time.FixedZone("IST", 19800))
	got, ok := Parse(domain.DateCell(in))
	require.True(t, ok)
	assert.True(t, in.Equal(got))
	assert.Equal(t, time.UTC, got.Location())
}

func TestParse_RejectsEmptyAndPlaceholders(t *testing.T) {
	for _, c := range []domain.Cell{
		domain.EmptyCell(),
		domain.TextCell(""),
		domain.TextCell("   "),
		domain.TextCell("undefined"),
		domain.TextCell("null"),
		domain.NumberCell(0),
		domain.DateCell(time.Time{}),
		domain.TextCell("not a date"),
	} {
		_, ok := Parse(c)
		assert.False(t, ok, "cell %q should not parse", c.String())
	}
}

func TestParse_FreeFormFallback(t *testing.T) {
	got, ok := Parse(domain.TextCell("March 7, 2023"))
	require.True(t, ok)
	assert.Equal(t, day(2023, time.March, 7), got)
}

func TestLeadingFloat(t *testing.T) {
	v, ok := LeadingFloat("  -12.5abc")
	require.True(t, ok)
	assert.Equal(t, -12.5, v)

	v, ok = LeadingFloat("1e3")
	require.True(t, ok)
	assert.Equal(t, 1000.0, v)

	v, ok = LeadingFloat(".5")
	require.True(t, ok)
	assert.Equal(t, 0.5, v)

	v, ok = LeadingFloat("Infinity")
	require.True(t, ok)
	assert.True(t, math.IsInf(v, 1))

	_, ok = LeadingFloat("abc")
	assert.False(t, ok)

	_, ok = LeadingFloat("")
	assert.False(t, ok)
}

func TestLeadingInt(t *testing.T) {
	v, ok := LeadingInt("08")
	require.True(t, ok)
	assert.Equal(t, 8, v)

	v, ok = LeadingInt("2023 10:00")
	require.True(t, ok)
	assert.Equal(t, 2023, v)

	_, ok = LeadingInt("x1")
	assert.False(t, ok)
}
