package clickhouse

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(ClientConfig{
		Host:         "ch",
		Port:         9000,
		Database:     "feecast",
		User:         "default",
		Password:     "p@ss",
		DialTimeout:  5 * time.Second,
		AsyncInsert:  true,
		WaitForAsync: true,
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "clickhouse", u.Scheme)
	assert.Equal(t, "ch:9000", u.Host)
	assert.Equal(t, "/feecast", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss", pw)
	assert.Equal(t, "5s", u.Query().Get("dial_timeout"))
	assert.Equal(t, "1", u.Query().Get("async_insert"))
	assert.Equal(t, "1", u.Query().Get("wait_for_async_insert"))
	assert.Empty(t, u.Query().Get("read_timeout"))
}

func TestBuildDSN_HTTP(t *testing.T) {
	dsn := BuildDSN(ClientConfig{Host: "ch", Port: 8123, Database: "x", UseHTTP: true})
	assert.True(t, strings.HasPrefix(dsn, "http://"))
}

func TestFeeSchema(t *testing.T) {
	stmts := FeeSchema("feecast")
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[1], "feecast.fee_stats")
	assert.Contains(t, stmts[2], "feecast.pool_stats")
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS feecast.fee_stats (", firstLine(stmts[1]))
}

func TestNewClient_RequiresHost(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}
