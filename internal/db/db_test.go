package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

func TestForUpdateEmitsRowLock(t *testing.T) {
	gdb, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)

	var rows []map[string]interface{}
	locked := ForUpdate(gdb.Table("businesses")).Where("id = ?", 1).Find(&rows)
	require.NoError(t, locked.Error)
	assert.Contains(t, locked.Statement.SQL.String(), "FOR UPDATE")

	plain := gdb.Table("businesses").Where("id = ?", 1).Find(&rows)
	require.NoError(t, plain.Error)
	assert.NotContains(t, plain.Statement.SQL.String(), "FOR UPDATE")
}

// The pre-v2 Set("gorm:query_option", ...) route silently drops the lock;
// ForUpdate is the only way callers are allowed to take one.
func TestQueryOptionSetDoesNotLock(t *testing.T) {
	gdb, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)

	var rows []map[string]interface{}
	tx := gdb.Set("gorm:query_option", "FOR UPDATE").Table("businesses").Find(&rows)
	require.NoError(t, tx.Error)
	assert.NotContains(t, tx.Statement.SQL.String(), "FOR UPDATE")
}
