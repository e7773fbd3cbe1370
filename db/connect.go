// Package db manages Postgres connections and the tables the pipeline writes.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/aynalemL/Facebook-Stock-Market-Analysis/config"
)

// DSN returns a postgres:// connection URL for creds. Both pgx and lib/pq accept it.
func DSN(creds config.PostgresCredential) string {
	port := creds.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(creds.Host, strconv.Itoa(port)),
		Path:   "/" + creds.Database,
	}
	if creds.User != "" {
		u.User = url.UserPassword(creds.User, creds.Password)
	}
	if creds.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {creds.SSLMode}}.Encode()
	}
	return u.String()
}

// Connect opens one connection. Every statement on it commits on its own.
func Connect(ctx context.Context, creds config.PostgresCredential, logger *slog.Logger) (*pgx.Conn, error) {
	logger.Info("Connect to the PostgreSQL database", "host", creds.Host, "database", creds.Database)

	conn, err := pgx.Connect(ctx, DSN(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s on %s: %w", creds.Database, creds.Host, err)
	}
	return conn, nil
}
