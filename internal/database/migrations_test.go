package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/learnflow-api/internal/config"
	"github.com/yukikurage/learnflow-api/internal/database"
	"github.com/yukikurage/learnflow-api/internal/testutil"
)

func TestMigrateDatabase_IsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)

	assert.True(t, db.Migrator().HasIndex("activities", "idx_activities_user_occurred"))
	assert.True(t, db.Migrator().HasIndex("reminders", "idx_reminders_active_next"))

	require.NoError(t, database.MigrateDatabase(db))
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		d, err := database.Dialector(&config.Config{DBDriver: driver, DBName: "learnflow"})
		require.NoError(t, err)
		assert.Equal(t, driver, d.Name())
	}

	_, err := database.Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
