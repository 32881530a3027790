package normalization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnl-dashboard/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeInstrument_SortsAndSkips(t *testing.T) {
	rows := [][]domain.Cell{
		domain.TextRow("Date", "Close"),
		domain.TextRow("03-01-2023", "110"),
		domain.TextRow("bad", "1"),
		domain.TextRow("01-01-2023", "100"),
		domain.TextRow("02-01-2023", "x"),
	}

	points, skipped, err := NormalizeInstrument(rows)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, points, 2)
	assert.Equal(t, date(2023, time.January, 1), points[0].Date)
	assert.Equal(t, 110.0, points[1].Close)
}

func TestNormalizeInstrument_NoValidPoints(t *testing.T) {
	_, _, err := NormalizeInstrument([][]domain.Cell{domain.TextRow("Date", "Close"), domain.TextRow("x", "y")})
	assert.ErrorIs(t, err, ErrNoValidPoints)

	_, _, err = NormalizeInstrument([][]domain.Cell{domain.TextRow("Date", "Close")})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAlignInstrument_NearestPointAndPercent(t *testing.T) {
	points := []domain.PricePoint{
		{Date: date(2022, time.December, 30), Close: 50}, // before range, ignored
		{Date: date(2023, time.January, 2), Close: 100},
		{Date: date(2023, time.January, 5), Close: 120},
		{Date: date(2023, time.January, 9), Close: 90},
	}
	dates := []time.Time{
		date(2023, time.January, 2),
		date(2023, time.January, 6),
		date(2023, time.January, 10),
	}

	out := AlignInstrument(points, dates)
	require.Len(t, out, 3)

	require.NotNil(t, out[0].Value)
	assert.Equal(t, 100.0, *out[0].Value)
	assert.Equal(t, 0.0, *out[0].PercentChange)

	require.NotNil(t, out[1].Value)
	assert.Equal(t, 120.0, *out[1].Value)
	assert.InDelta(t, 20.0, *out[1].PercentChange, 1e-9)

	require.NotNil(t, out[2].Value)
	assert.Equal(t, 90.0, *out[2].Value)
	assert.InDelta(t, -10.0, *out[2].PercentChange, 1e-9)
}

func TestAlignInstrument_NoOverlap(t *testing.T) {
	points := []domain.PricePoint{{Date: date(2020, time.January, 1), Close: 1}}
	assert.Nil(t, AlignInstrument(points, []time.Time{date(2023, time.January, 1)}))
	assert.Nil(t, AlignInstrument(nil, []time.Time{date(2023, time.January, 1)}))
	assert.Nil(t, AlignInstrument(points, nil))
}
