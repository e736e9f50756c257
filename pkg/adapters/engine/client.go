// Package engine wraps query execution against a running tabular analytics
// engine instance. The engine speaks the SQL Server tabular data stream, so
// the adapter rides on database/sql with the go-mssqldb driver.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // engine query driver
	"go.uber.org/zap"

	"github.com/ekaya-inc/metadoc/pkg/apperrors"
	"github.com/ekaya-inc/metadoc/pkg/logging"
)

// Result is one tabular query result. Column names arrive as the engine
// reports them (bracket-qualified for EVALUATE queries); each row is a map
// from column name to scanned value.
type Result struct {
	Columns  []string
	Rows     []map[string]any
	RowCount int
}

// Client executes queries and commands against one engine endpoint.
type Client struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClient opens a connection to the engine's query endpoint. Endpoint
// format is host:port. The connection is verified eagerly so a dead endpoint
// fails here rather than on the first metadata query.
func NewClient(ctx context.Context, endpoint string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	dsn := (&url.URL{
		Scheme:   "sqlserver",
		Host:     net.JoinHostPort(host, port),
		RawQuery: url.Values{"encrypt": {"disable"}}.Encode(),
	}).String()

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("open engine connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connect to %s: %v", apperrors.ErrQueryFailed, endpoint, err)
	}

	logger.Debug("connected to engine",
		zap.String("endpoint", logging.SanitizeConnectionString(dsn)))

	return &Client{db: db, logger: logger}, nil
}

// Query runs queryText once and collects all rows. No retry: a failure is the
// run's failure, wrapped as apperrors.ErrQueryFailed with the driver cause.
func (c *Client) Query(ctx context.Context, queryText string) (*Result, error) {
	c.logger.Debug("executing query", zap.String("query", logging.SanitizeQuery(queryText)))

	rows, err := c.db.QueryContext(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrQueryFailed, err)
	}
	defer rows.Close()

	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: get columns: %v", apperrors.ErrQueryFailed, err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("%w: get column types: %v", apperrors.ErrQueryFailed, err)
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("%w: scan row: %v", apperrors.ErrQueryFailed, err)
		}

		rowMap := make(map[string]any, len(columnNames))
		for i, col := range columnNames {
			val := values[i]
			// Text columns scan as []byte; hand callers strings.
			if b, ok := val.([]byte); ok && isStringType(columnTypes[i].DatabaseTypeName()) {
				val = string(b)
			}
			rowMap[col] = val
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate rows: %v", apperrors.ErrQueryFailed, err)
	}

	return &Result{
		Columns:  columnNames,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// Execute runs a side-effecting engine command (catalog refresh). Single
// attempt, same error contract as Query.
func (c *Client) Execute(ctx context.Context, command string) error {
	c.logger.Debug("executing command", zap.String("command", logging.SanitizeQuery(command)))

	if _, err := c.db.ExecContext(ctx, command); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrQueryFailed, err)
	}
	return nil
}

// Close releases the engine connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

var stringTypes = map[string]struct{}{
	"CHAR": {}, "VARCHAR": {}, "NCHAR": {}, "NVARCHAR": {},
	"TEXT": {}, "NTEXT": {}, "XML": {},
}

func isStringType(dbType string) bool {
	_, ok := stringTypes[strings.ToUpper(dbType)]
	return ok
}
