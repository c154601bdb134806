package mysql

import (
	"testing"
	"time"

	"storefront/internal/config"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.MySQL{
		User:        "shop",
		Password:    "p@ss:word",
		Host:        "db.internal",
		Port:        "3307",
		Database:    "storefront",
		DialTimeout: 3 * time.Second,
	})

	parsed, err := mysqldriver.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "shop", parsed.User)
	assert.Equal(t, "p@ss:word", parsed.Passwd)
	assert.Equal(t, "db.internal:3307", parsed.Addr)
	assert.Equal(t, "storefront", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.True(t, parsed.ClientFoundRows)
	assert.Equal(t, 3*time.Second, parsed.Timeout)
}
