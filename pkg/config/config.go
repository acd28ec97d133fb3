package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/drogcidade/apptrier/pkg/reconcile"
)

// Config is the run configuration assembled from config.yaml, environment
// variables and flag overrides, in increasing precedence.
type Config struct {
	SpreadsheetID  string `mapstructure:"spreadsheet_id"`
	CredentialsEnv string `mapstructure:"credentials_env"`

	AppWorksheet    string `mapstructure:"app_worksheet"`
	TrierWorksheet  string `mapstructure:"trier_worksheet"`
	OutputWorksheet string `mapstructure:"output_worksheet"`

	ValueTolerance       float64 `mapstructure:"value_tolerance"`
	TimeToleranceMinutes int     `mapstructure:"time_tolerance_minutes"`
	MatchByTime          bool    `mapstructure:"match_by_time"`

	PortalConfig string `mapstructure:"portal_config"`
	DownloadDir  string `mapstructure:"download_dir"`
}

// Build loads configuration. Flags are bound by their underscore names, so
// a flag set built with Bind below overrides the file and environment.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("credentials_env", "GSA_CREDENTIALS")
	v.SetDefault("app_worksheet", "APP")
	v.SetDefault("trier_worksheet", "APP_TRIER")
	v.SetDefault("output_worksheet", "APPXTRIER")
	v.SetDefault("value_tolerance", 0.15)
	v.SetDefault("time_tolerance_minutes", 5)
	v.SetDefault("match_by_time", true)
	v.SetDefault("portal_config", "portal.yaml")
	v.SetDefault("download_dir", ".")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("APPTRIER")
	v.AutomaticEnv()
	// The GitHub Actions workflow exports the spreadsheet as plain sheet_id.
	_ = v.BindEnv("spreadsheet_id", "APPTRIER_SPREADSHEET_ID", "sheet_id")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if flags != nil {
		bindFlag(v, flags, "value_tolerance", "value-tolerance")
		bindFlag(v, flags, "time_tolerance_minutes", "time-tolerance")
		bindFlag(v, flags, "match_by_time", "match-by-time")
		bindFlag(v, flags, "spreadsheet_id", "spreadsheet")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if f := flags.Lookup(name); f != nil && f.Changed {
		_ = v.BindPFlag(key, f)
	}
}

// Validate rejects tolerances that would poison every comparison. This runs
// before any matching, so a bad tolerance fails the whole run up front.
func (c *Config) Validate() error {
	if c.ValueTolerance <= 0 {
		return fmt.Errorf("value_tolerance must be positive, got %v", c.ValueTolerance)
	}
	if c.MatchByTime && c.TimeToleranceMinutes <= 0 {
		return fmt.Errorf("time_tolerance_minutes must be positive, got %d", c.TimeToleranceMinutes)
	}
	return nil
}

// MatchOptions converts the configured tolerances into engine options.
func (c *Config) MatchOptions() reconcile.Options {
	return reconcile.Options{
		ValueTolerance:       decimal.NewFromFloat(c.ValueTolerance),
		TimeToleranceMinutes: c.TimeToleranceMinutes,
		MatchByTime:          c.MatchByTime,
	}
}

// Credentials resolves the service-account JSON from the environment.
func (c *Config) Credentials() ([]byte, error) {
	raw := os.Getenv(c.CredentialsEnv)
	if raw == "" {
		return nil, fmt.Errorf("environment variable %s not set", c.CredentialsEnv)
	}
	return []byte(raw), nil
}
