// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/newstrnt/admin-authz/internal/config"
)

// Create builds the Data Source Name for the configured gorm engine.
func Create(db config.DB) (string, error) {
	switch db.GormEngine {
	case config.EngineMySQL:
		out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			db.User,
			db.Password,
			db.Host,
			db.Port,
			db.Name,
		)

		if db.Extras != "" {
			out += "?" + db.Extras
		}

		return out, nil
	case config.EnginePostgres:
		parts := []string{
			"host=" + db.Host,
			fmt.Sprintf("port=%d", db.Port),
			"user=" + db.User,
			"password=" + db.Password,
			"dbname=" + db.Name,
		}

		if db.Extras != "" {
			parts = append(parts, strings.Fields(db.Extras)...)
		}

		return strings.Join(parts, " "), nil
	case config.EngineSQLite:
		if db.Name == "" {
			return ":memory:", nil
		}

		return db.Name, nil
	default:
		return "", fmt.Errorf("%w: %q", config.ErrUnknownGormEngine, db.GormEngine)
	}
}
