package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// ParseDurationEnv reads a duration from an environment value. It accepts
// anything time.ParseDuration does ("10s", "1m30s") and, for convenience,
// a bare integer which is taken as a number of seconds.
func ParseDurationEnv(raw string) (time.Duration, error) {
	v := unquote(strings.TrimSpace(raw))
	if v == "" {
		return 0, errors.New("empty duration value")
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (want e.g. 10s, 5m or plain seconds): %w", v, err)
	}
	return d, nil
}

// unquote drops one layer of matching single or double quotes, which some
// env-file loaders leave in place.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first == last && (first == '"' || first == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// ParseRedisURL splits a redis:// or rediss:// URL into the address,
// password and database number expected by the go-redis client options.
func ParseRedisURL(raw string) (addr, password string, db int, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", 0, fmt.Errorf("malformed Redis URL: %w", err)
	}
	switch u.Scheme {
	case "redis", "rediss":
	default:
		return "", "", 0, fmt.Errorf("unsupported Redis URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", "", 0, errors.New("Redis URL has no host")
	}
	if u.User != nil {
		password, _ = u.User.Password()
	}
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		db, _ = strconv.Atoi(p)
	}
	return u.Host, password, db, nil
}

// IsPGUniqueViolation reports whether err is a PostgreSQL duplicate-key
// error, so the store can translate it into the domain duplicate sentinel.
func IsPGUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
