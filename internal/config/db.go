package config

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// DSN builds the MySQL connection string. innodb_lock_wait_timeout is set
// to the statement timeout so a blocked FOR UPDATE fails instead of hanging.
func DSN(env Env) string {
	cfg := mysql.NewConfig()
	cfg.User = env.DBUser
	cfg.Passwd = env.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = env.DBAddr
	cfg.DBName = env.DBName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Timeout = 5 * time.Second
	cfg.ReadTimeout = env.StatementTimeout
	cfg.WriteTimeout = env.StatementTimeout

	lockWait := int(env.StatementTimeout / time.Second)
	if lockWait < 1 {
		lockWait = 1
	}
	cfg.Params = map[string]string{
		"charset":                  "utf8mb4",
		"innodb_lock_wait_timeout": strconv.Itoa(lockWait),
		"time_zone":                "'+00:00'",
	}
	return cfg.FormatDSN()
}

// OpenDB opens and pings the shared pool. The caller owns the handle and
// injects it into repositories.
func OpenDB(ctx context.Context, env Env) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(env))
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}

	db.SetMaxOpenConns(env.DBMaxOpenConns)
	db.SetMaxIdleConns(env.DBMaxOpenConns)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping db")
	}
	return db, nil
}
