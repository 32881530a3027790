package migrations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	chstore "pnl-dashboard/internal/storage/clickhouse"
)

// ErrUnterminatedString is returned when a migration has an unclosed quote.
var ErrUnterminatedString = errors.New("unterminated string literal")

// RunClickhouseMigrations creates the DSN's database when missing, then applies every
// statement of every migration. ClickHouse DDL is not transactional, so the files must
// be idempotent (CREATE ... IF NOT EXISTS). The returned connection targets the database.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	migrations, err := Load("clickhouse")
	if err != nil {
		return nil, err
	}
	database, err := chstore.DatabaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse admin: %w", err)
	}
	err = admin.Exec(ctx, "CREATE DATABASE IF NOT EXISTS "+quoteIdent(database))
	admin.Close()
	if err != nil {
		return nil, fmt.Errorf("create database %s: %w", database, err)
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, database)
	if err != nil {
		return nil, err
	}
	for _, m := range migrations {
		stmts, err := splitStatements(m.SQL)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("parse migration %s: %w", m.Version, err)
		}
		for _, stmt := range stmts {
			if err := conn.Exec(ctx, stmt); err != nil {
				conn.Close()
				return nil, fmt.Errorf("apply migration %s: %w", m.Version, err)
			}
		}
	}
	return conn, nil
}

// splitStatements breaks a script on semicolons outside single-quoted strings.
// Lines starting with "--" are dropped. The driver executes one statement per Exec.
func splitStatements(script string) ([]string, error) {
	var (
		stmts   []string
		current strings.Builder
		quoted  bool
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			stmts = append(stmts, s)
		}
		current.Reset()
	}

	for _, line := range strings.Split(script, "\n") {
		if !quoted && strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		for i := 0; i < len(line); i++ {
			ch := line[i]
			switch {
			case ch == '\'' && quoted && i+1 < len(line) && line[i+1] == '\'':
				current.WriteString("''")
				i++
			case ch == '\'':
				quoted = !quoted
				current.WriteByte(ch)
			case ch == ';' && !quoted:
				flush()
			default:
				current.WriteByte(ch)
			}
		}
		current.WriteByte('\n')
	}
	if quoted {
		return nil, ErrUnterminatedString
	}
	flush()
	return stmts, nil
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
