package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	UseConsoleWriter bool `mapstructure:"useConsoleWriter" toml:"useConsoleWriter" json:"useConsoleWriter"`
	NoColor          bool `mapstructure:"noColor" toml:"noColor" json:"noColor"`
}

// RollingFile configures one lumberjack rotated file.
type RollingFile struct {
	// Name is the file name below LogFile.Path. Empty disables the file.
	Name       string `mapstructure:"name" toml:"name" json:"name"`
	MaxSize    int    `mapstructure:"maxSize" toml:"maxSize" json:"maxSize"` // megabytes
	MaxBackups int    `mapstructure:"maxBackups" toml:"maxBackups" json:"maxBackups"`
	MaxAge     int    `mapstructure:"maxAge" toml:"maxAge" json:"maxAge"` // days
	Compress   bool   `mapstructure:"compress" toml:"compress" json:"compress"`
}

// LogFile implements a file based logger split by level.
type LogFile struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" toml:"path" json:"path"`

	Access RollingFile `mapstructure:"access" toml:"access" json:"access"`
	Error  RollingFile `mapstructure:"error" toml:"error" json:"error"`
	Warn   RollingFile `mapstructure:"warn" toml:"warn" json:"warn"`
	Info   RollingFile `mapstructure:"info" toml:"info" json:"info"`
	Trace  RollingFile `mapstructure:"trace" toml:"trace" json:"trace"`
	// Audit receives the audit side channel in addition to the level files.
	Audit RollingFile `mapstructure:"audit" toml:"audit" json:"audit"`
}

// Log implements the logger config.
type Log struct {
	LogLevel string `mapstructure:"logLevel" toml:"logLevel" json:"logLevel"` // trace, debug, info, warn, error.
	LogEnv   string `mapstructure:"logEnv" toml:"logEnv" json:"logEnv"`

	// EnableAccessLogToConsole writes the fiber access log to stdout.
	// Console.Enabled must also be set.
	EnableAccessLogToConsole bool `mapstructure:"enableAccessLogToConsole" toml:"enableAccessLogToConsole" json:"enableAccessLogToConsole"`
	ReportCaller             bool `mapstructure:"reportCaller" toml:"reportCaller" json:"reportCaller"`
	// DisableHealthz skips access logging of the health check route.
	DisableHealthz bool `mapstructure:"disableHealthz" toml:"disableHealthz" json:"disableHealthz"`

	AppName     string `mapstructure:"appName" toml:"appName" json:"appName"`
	ServiceName string `mapstructure:"serviceName" toml:"serviceName" json:"serviceName"`

	Console Console `mapstructure:"console" toml:"console" json:"console"`
	File    LogFile `mapstructure:"file" toml:"file" json:"file"`
}
