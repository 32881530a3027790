package normalization

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnl-dashboard/internal/domain"
)

func TestReadCSV(t *testing.T) {
	in := "\ufeffDate,P&L,Charges\n01-01-2023, 1000 ,20\n02-01-2023,-400\n"

	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Date", rows[0][0].Text)
	assert.Equal(t, "1000", rows[1][1].Text)
	require.Len(t, rows[2], 2)

	res, err := Normalize(rows, DetectColumns(rows[0]))
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)
	assert.Equal(t, 980.0, res.Trades[0].NetPL)
	assert.Equal(t, -400.0, res.Trades[1].NetPL)
}

func TestReadCSV_BlankFieldsAreEmptyCells(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("a,,c\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.CellEmpty, rows[0][1].Kind)
}
