package limiter

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeRow struct{ scan func(dest ...any) error }

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakePool struct {
	blockedUntil *time.Time
	failsRet     int
	qrErr        error

	lastExecSQL string
	execErr     error
}

func (f *fakePool) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.lastExecSQL = sql
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakePool) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "SELECT blocked_until"):
		return fakeRow{scan: func(dest ...any) error {
			if f.qrErr != nil {
				return f.qrErr
			}
			if f.blockedUntil != nil {
				*(dest[0].(*time.Time)) = *f.blockedUntil
			} else {
				*(dest[0].(*time.Time)) = time.Time{} // 'epoch'
			}
			return nil
		}}
	default: // failure upsert with RETURNING fail_count
		return fakeRow{scan: func(dest ...any) error {
			if f.qrErr != nil {
				return f.qrErr
			}
			*(dest[0].(*int)) = f.failsRet
			return nil
		}}
	}
}

func TestPG_Allow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ip := HashIP("10.0.0.1")

	// no row yet: allowed
	l := NewPGWithQuerier(&fakePool{qrErr: pgx.ErrNoRows}, time.Minute, 5, time.Minute)
	ok, _, err := l.Allow(ctx, "ada", ip)
	require.NoError(t, err)
	require.True(t, ok)

	// active block: denied with retry-after
	until := time.Now().Add(30 * time.Second)
	l = NewPGWithQuerier(&fakePool{blockedUntil: &until}, time.Minute, 5, time.Minute)
	ok, retry, err := l.Allow(ctx, "ada", ip)
	require.NoError(t, err)
	require.False(t, ok)
	require.Greater(t, retry, time.Duration(0))

	// expired block: allowed again
	past := time.Now().Add(-time.Minute)
	l = NewPGWithQuerier(&fakePool{blockedUntil: &past}, time.Minute, 5, time.Minute)
	ok, _, err = l.Allow(ctx, "ada", ip)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPG_Failure_BlocksAtThreshold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ip := HashIP("10.0.0.1")

	pool := &fakePool{failsRet: 4}
	l := NewPGWithQuerier(pool, time.Minute, 5, time.Minute)
	blocked, _, err := l.Failure(ctx, "ada", ip)
	require.NoError(t, err)
	require.False(t, blocked)

	pool.failsRet = 5
	blocked, retry, err := l.Failure(ctx, "ada", ip)
	require.NoError(t, err)
	require.True(t, blocked)
	require.Equal(t, time.Minute, retry)
	require.Contains(t, pool.lastExecSQL, "UPDATE login_attempts SET blocked_until")
}

func TestPG_Success_ResetsCounters(t *testing.T) {
	t.Parallel()

	pool := &fakePool{}
	l := NewPGWithQuerier(pool, time.Minute, 5, time.Minute)
	require.NoError(t, l.Success(context.Background(), "ada", HashIP("::1")))
	require.Contains(t, pool.lastExecSQL, "INSERT INTO login_attempts")
}
