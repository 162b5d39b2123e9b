package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	AdminKey        string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB int64         `mapstructure:"MAX_UPLOAD_MB"`
	Timezone        string        `mapstructure:"TIMEZONE"`
	WindowsFile     string        `mapstructure:"WINDOWS_FILE"`
	DefaultWindow   string        `mapstructure:"DEFAULT_WINDOW"`
	DuplicatePolicy string        `mapstructure:"DUPLICATE_POLICY"`
	VehicleKeywords string        `mapstructure:"VEHICLE_KEYWORDS"`
	ParseWorkers    int           `mapstructure:"PARSE_WORKERS"`
	ReportOutputDir string        `mapstructure:"REPORT_OUTPUT_DIR"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("REQUEST_TIMEOUT", "60s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 50)
	v.SetDefault("TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("WINDOWS_FILE", "config/windows.yaml")
	v.SetDefault("DEFAULT_WINDOW", WindowMorning)
	v.SetDefault("DUPLICATE_POLICY", "first")
	v.SetDefault("VEHICLE_KEYWORDS", "")
	v.SetDefault("PARSE_WORKERS", 4)
	v.SetDefault("REPORT_OUTPUT_DIR", "./reports")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves TIMEZONE, falling back to the local zone.
func (c Config) Location() *time.Location {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Keywords splits VEHICLE_KEYWORDS; nil means "use the built-in list".
func (c Config) Keywords() []string {
	var out []string
	for _, k := range SplitList(c.VehicleKeywords) {
		out = append(out, strings.ToLower(k))
	}
	return out
}

// SplitList splits a comma separated setting, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
