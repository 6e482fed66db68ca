package hostuser

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestUserIDAndWorkspaceID(t *testing.T) {
	db := openTestDB(t)
	svc := New("user-1", "ws-1", "/tmp/app", db)

	assert.Equal(t, "user-1", svc.UserID())
	assert.Equal(t, "ws-1", svc.WorkspaceID())
}

func TestSQLiteConnectionRejectsOtherUsers(t *testing.T) {
	db := openTestDB(t)
	svc := New("user-1", "ws-1", "/tmp/app", db)

	got, err := svc.SQLiteConnection("user-1")
	require.NoError(t, err)
	assert.Same(t, db, got)

	_, err = svc.SQLiteConnection("someone-else")
	assert.Error(t, err)
}

func TestApplicationRootDirRequiresConfiguration(t *testing.T) {
	db := openTestDB(t)

	svc := New("user-1", "ws-1", "", db)
	_, err := svc.ApplicationRootDir()
	assert.Error(t, err)

	svc2 := New("user-1", "ws-1", "/tmp/app", db)
	root, err := svc2.ApplicationRootDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/app", root)
}
