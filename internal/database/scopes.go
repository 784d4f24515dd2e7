package database

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/learnflow-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// OwnedBy restricts a query to rows belonging to userID
func OwnedBy(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// Since restricts a query to rows whose column is at or after t
func Since(column string, t *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if t == nil {
			return db
		}
		return db.Where(column+" >= ?", *t)
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search matches rows where any of columns contains text, ignoring case.
// Wildcards in text match literally. '!' is the escape character because it
// needs no quoting in MySQL, PostgreSQL or SQLite.
func Search(text string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" || len(columns) == 0 {
			return db
		}

		pattern := "%" + likeEscaper.Replace(text) + "%"
		conds := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, column := range columns {
			conds[i] = "LOWER(" + column + ") LIKE ? ESCAPE '!'"
			args[i] = pattern
		}
		return db.Where(strings.Join(conds, " OR "), args...)
	}
}
