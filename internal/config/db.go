package config

// Supported gorm engines.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// DB holds the database configuration settings.
type DB struct {
	Extras   string `mapstructure:"extras" toml:"extras" json:"extras"`
	Host     string `mapstructure:"host" toml:"host" json:"host"`
	Port     int    `mapstructure:"port" toml:"port" json:"port"`
	User     string `mapstructure:"user" toml:"user" json:"user"`
	Password string `mapstructure:"password" toml:"password" json:"password"`
	// Name is the database name, or the file path for sqlite.
	Name       string `mapstructure:"name" toml:"name" json:"name"`
	GormEngine string `mapstructure:"gormEngine" toml:"gormEngine" json:"gormEngine"`
}
