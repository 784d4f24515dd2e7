package database

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/yukikurage/learnflow-api/internal/config"
	applog "github.com/yukikurage/learnflow-api/internal/logger"
	"github.com/yukikurage/learnflow-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Dialector builds the gorm dialector for the configured driver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql", "":
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				cfg.DBUser,
				cfg.DBPassword,
				cfg.DBHost,
				cfg.DBPort,
				cfg.DBName,
			)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				cfg.DBHost,
				cfg.DBUser,
				cfg.DBPassword,
				cfg.DBName,
				cfg.DBPort,
			)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = cfg.DBName + ".db"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

func gormLogger(level string) logger.Interface {
	logLevel := logger.Warn
	if applog.ParseLevel(level) == log.DebugLevel {
		logLevel = logger.Info
	}
	writer := applog.Logger.StandardLog(log.StandardLogOptions{ForceLevel: log.WarnLevel})
	return logger.New(writer, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})
}

func Connect(cfg *config.Config) error {
	dialector, err := Dialector(cfg)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger(cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	applog.Info("database connection established", "driver", cfg.DBDriver)
	return nil
}

// Models lists every table managed by the application, in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RefreshSession{},
		&models.Goal{},
		&models.Milestone{},
		&models.Resource{},
		&models.Activity{},
		&models.Notification{},
		&models.Achievement{},
		&models.Reminder{},
	}
}

func Migrate() error {
	applog.Info("running database migrations")
	if err := MigrateDatabase(DB); err != nil {
		return err
	}
	applog.Info("database migrations completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
