package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// tracingConnector opens sqlite3 connections whose statements are logged.
type tracingConnector struct {
	dsn    string
	logger *slog.Logger
}

// NewTracingConnector returns a connector for sql.OpenDB that logs the SQL
// and arguments of every statement at debug level. A nil logger means
// slog.Default().
func NewTracingConnector(dsn string, logger *slog.Logger) driver.Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &tracingConnector{dsn: dsn, logger: logger}
}

func (c *tracingConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := (&sqlite3.SQLiteDriver{}).Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &tracingConn{conn: conn, logger: c.logger}, nil
}

func (c *tracingConnector) Driver() driver.Driver { return noOpenDriver{} }

type noOpenDriver struct{}

func (noOpenDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("sqlite3 tracing: open through sql.OpenDB(NewTracingConnector(...))")
}

type tracingConn struct {
	conn   driver.Conn
	logger *slog.Logger
}

func (c *tracingConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *tracingConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if p, ok := c.conn.(driver.ConnPrepareContext); ok {
		stmt, err = p.PrepareContext(ctx, query)
	} else {
		stmt, err = c.conn.Prepare(query)
	}
	if err != nil {
		return nil, err
	}
	return &tracingStmt{stmt: stmt, query: query, logger: c.logger}, nil
}

func (c *tracingConn) Close() error { return c.conn.Close() }

// ExecContext passes unprepared statements straight to sqlite3 so that
// multi-statement scripts run in full.
func (c *tracingConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	e, ok := c.conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	trace(c.logger, "exec", query, namedToStrings(args))
	return e.ExecContext(ctx, query, args)
}

func (c *tracingConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	q, ok := c.conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	trace(c.logger, "query", query, namedToStrings(args))
	return q.QueryContext(ctx, query, args)
}

func (c *tracingConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *tracingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if b, ok := c.conn.(driver.ConnBeginTx); ok {
		return b.BeginTx(ctx, opts)
	}
	//nolint:staticcheck // SA1019 fallback for drivers without BeginTx
	return c.conn.Begin()
}

type tracingStmt struct {
	stmt   driver.Stmt
	query  string
	logger *slog.Logger
}

func (s *tracingStmt) Close() error { return s.stmt.Close() }

func (s *tracingStmt) NumInput() int { return s.stmt.NumInput() }

func (s *tracingStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.trace("exec", valuesToStrings(args))
	//nolint:staticcheck // SA1019 legacy path
	return s.stmt.Exec(args)
}

func (s *tracingStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	s.trace("exec", namedToStrings(args))
	if e, ok := s.stmt.(driver.StmtExecContext); ok {
		return e.ExecContext(ctx, args)
	}
	//nolint:staticcheck // SA1019 legacy path
	return s.stmt.Exec(namedToValues(args))
}

func (s *tracingStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.trace("query", valuesToStrings(args))
	//nolint:staticcheck // SA1019 legacy path
	return s.stmt.Query(args)
}

func (s *tracingStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	s.trace("query", namedToStrings(args))
	if q, ok := s.stmt.(driver.StmtQueryContext); ok {
		return q.QueryContext(ctx, args)
	}
	//nolint:staticcheck // SA1019 legacy path
	return s.stmt.Query(namedToValues(args))
}

func (s *tracingStmt) trace(op string, args []string) {
	trace(s.logger, op, s.query, args)
}

func trace(logger *slog.Logger, op, query string, args []string) {
	logger.Debug("sql", "op", op, "sql", query, "args", args)
}

func valuesToStrings(args []driver.Value) []string {
	out := make([]string, len(args))
	for i, v := range args {
		out[i] = argString(v)
	}
	return out
}

func namedToStrings(args []driver.NamedValue) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = argString(a.Value)
		if a.Name != "" {
			out[i] = a.Name + "=" + out[i]
		}
	}
	return out
}

func namedToValues(args []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, len(args))
	for i := range args {
		out[i] = args[i].Value
	}
	return out
}

// argString renders blobs as hex so frame payloads stay readable in logs.
func argString(v driver.Value) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("x'%X'", t)
	default:
		return fmt.Sprint(t)
	}
}
