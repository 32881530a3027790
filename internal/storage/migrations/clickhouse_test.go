package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := `-- comment line
CREATE TABLE a (x UInt8) ENGINE = Memory;

CREATE TABLE b (y String) ENGINE = Memory;
`
	stmts, err := splitStatements(sql)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x UInt8) ENGINE = Memory", stmts[0])
	assert.Equal(t, "CREATE TABLE b (y String) ENGINE = Memory", stmts[1])
}

func TestSplitStatements_SemicolonInString(t *testing.T) {
	stmts, err := splitStatements("INSERT INTO t VALUES ('a;b');\nSELECT 'it''s; fine';")
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, "INSERT INTO t VALUES ('a;b')", stmts[0])
	assert.Equal(t, "SELECT 'it''s; fine'", stmts[1])
}

func TestSplitStatements_Unterminated(t *testing.T) {
	_, err := splitStatements("SELECT 'open;")
	assert.ErrorIs(t, err, ErrUnterminatedString)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`dashboard`", quoteIdent("dashboard"))
	assert.Equal(t, "`a``b`", quoteIdent("a`b"))
}

func TestLoad(t *testing.T) {
	pg, err := Load("postgres")
	require.NoError(t, err)
	require.Len(t, pg, 1)
	assert.Equal(t, "001_kv_store", pg[0].Version)
	assert.Contains(t, pg[0].SQL, "kv_store")

	ch, err := Load("clickhouse")
	require.NoError(t, err)
	require.Len(t, ch, 1)
	assert.Contains(t, ch[0].SQL, "ReplacingMergeTree(version)")

	stmts, err := splitStatements(ch[0].SQL)
	require.NoError(t, err)
	assert.Len(t, stmts, 1)

	_, err = Load("sqlite")
	assert.Error(t, err)
}
