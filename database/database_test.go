package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"

	"taskboard/models"
)

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "", logger.Silent)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrateAndSeedAdmin(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "taskboard.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedAdmin(db, "s3cret"))
	// Seeding twice keeps a single admin.
	require.NoError(t, SeedAdmin(db, "other"))

	var admins []models.Employee
	require.NoError(t, db.Where("username = ?", "admin").Find(&admins).Error)
	require.Len(t, admins, 1)

	admin := admins[0]
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NotEmpty(t, admin.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("s3cret")))
}

func TestTeamRejectsReservedID(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "taskboard.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	err = db.Create(&models.Team{ID: "unassigned", Name: "Nobody"}).Error
	assert.Error(t, err)
}
