package database

import (
	"fmt"
	"strings"

	applog "github.com/yukikurage/learnflow-api/internal/logger"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes used by listing and scheduling queries
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns []string
	}{
		// Per-user listings
		{"goals", "idx_goals_user_created", []string{"user_id", "created_at"}},
		{"resources", "idx_resources_user_goal", []string{"user_id", "goal_id"}},
		{"activities", "idx_activities_user_occurred", []string{"user_id", "occurred_at"}},
		{"notifications", "idx_notifications_user_read", []string{"user_id", "is_read"}},

		// Scheduler scans
		{"reminders", "idx_reminders_active_next", []string{"is_active", "next_reminder"}},
		{"goals", "idx_goals_target_date", []string{"is_completed", "target_date"}},

		// Refresh token cleanup
		{"refresh_sessions", "idx_refresh_sessions_user_expires", []string{"user_id", "expires_at"}},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			applog.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		applog.Info("created index", "index", idx.name, "table", idx.table)
	}

	return nil
}

// MigrateDatabase creates or updates every table and then adds indexes.
func MigrateDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
