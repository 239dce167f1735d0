// Package config loads portal options from defaults, an optional
// portal.yaml, a .env file and PORTAL_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PORTAL"

const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Options holds the portal settings. It implements portal.Config.
type Options struct {
	APIBaseURL       string
	APITimeout       time.Duration
	InsecureTLS      bool
	Listen           string
	LoginPath        string
	DefaultRedirect  string
	RejectedRouteKey string
	StorageDriver    string
	StorageDSN       string
	StorageKey       string
	StorageTimeout   time.Duration
	RedisTTL         time.Duration
	PhoneRegion      string
	Debug            bool
	PrettyLogs       bool
	SecureCookies    bool
	CSRFKey          string
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("api_base_url", "https://localhost:7072")
	v.SetDefault("api_timeout", 15*time.Second)
	v.SetDefault("insecure_tls", false)
	v.SetDefault("listen", "127.0.0.1:3000")
	v.SetDefault("login_path", "/login")
	v.SetDefault("default_redirect", "/dashboard")
	v.SetDefault("rejected_route_key", "rejected_route")
	v.SetDefault("storage_driver", DriverFile)
	v.SetDefault("storage_dsn", "")
	v.SetDefault("storage_key", "token")
	v.SetDefault("storage_timeout", 2*time.Second)
	v.SetDefault("redis_ttl", time.Duration(0))
	v.SetDefault("phone_region", "US")
	v.SetDefault("debug", false)
	v.SetDefault("pretty_logs", true)
	v.SetDefault("secure_cookies", false)
	v.SetDefault("csrf_key", "")
}

// Load reads configuration. An empty path looks for portal.{yaml,json,toml}
// in the working directory and tolerates its absence; an explicit path
// must exist.
func Load(path string) (*Options, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("portal")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read portal config: %w", err)
			}
		}
	}

	opts := fromViper(v)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return opts, nil
}

func fromViper(v *viper.Viper) *Options {
	return &Options{
		APIBaseURL:       strings.TrimRight(v.GetString("api_base_url"), "/"),
		APITimeout:       v.GetDuration("api_timeout"),
		InsecureTLS:      v.GetBool("insecure_tls"),
		Listen:           v.GetString("listen"),
		LoginPath:        v.GetString("login_path"),
		DefaultRedirect:  v.GetString("default_redirect"),
		RejectedRouteKey: v.GetString("rejected_route_key"),
		StorageDriver:    strings.ToLower(v.GetString("storage_driver")),
		StorageDSN:       v.GetString("storage_dsn"),
		StorageKey:       v.GetString("storage_key"),
		StorageTimeout:   v.GetDuration("storage_timeout"),
		RedisTTL:         v.GetDuration("redis_ttl"),
		PhoneRegion:      strings.ToUpper(v.GetString("phone_region")),
		Debug:            v.GetBool("debug"),
		PrettyLogs:       v.GetBool("pretty_logs"),
		SecureCookies:    v.GetBool("secure_cookies"),
		CSRFKey:          v.GetString("csrf_key"),
	}
}

// Validate will run validation rules
func (o Options) Validate() error {
	needsDSN := o.StorageDriver == DriverRedis || o.StorageDriver == DriverSQLite

	return validation.ValidateStruct(&o,
		validation.Field(&o.APIBaseURL, validation.Required, is.URL),
		validation.Field(&o.APITimeout, validation.By(positiveDuration)),
		validation.Field(&o.Listen, validation.Required),
		validation.Field(&o.LoginPath, validation.Required, validation.By(localPath)),
		validation.Field(&o.DefaultRedirect, validation.Required, validation.By(localPath)),
		validation.Field(&o.RejectedRouteKey, validation.Required),
		validation.Field(&o.StorageDriver,
			validation.Required,
			validation.In(DriverMemory, DriverFile, DriverRedis, DriverSQLite),
		),
		validation.Field(&o.StorageDSN, validation.By(func(value any) error {
			if s, _ := value.(string); needsDSN && s == "" {
				return fmt.Errorf("is required for the %s driver", o.StorageDriver)
			}
			return nil
		})),
		validation.Field(&o.StorageKey, validation.Required),
		validation.Field(&o.StorageTimeout, validation.By(positiveDuration)),
		validation.Field(&o.PhoneRegion, validation.Length(2, 2)),
		validation.Field(&o.CSRFKey, validation.Length(32, 0)),
	)
}

func positiveDuration(value any) error {
	if d, _ := value.(time.Duration); d <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func localPath(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") {
		return errors.New("must be a local path")
	}
	return nil
}

func (o *Options) GetAPIBaseURL() string {
	return o.APIBaseURL
}

func (o *Options) GetAPITimeout() time.Duration {
	return o.APITimeout
}

func (o *Options) GetLoginPath() string {
	return o.LoginPath
}

func (o *Options) GetDefaultRedirect() string {
	return o.DefaultRedirect
}

func (o *Options) GetRejectedRouteKey() string {
	return o.RejectedRouteKey
}

func (o *Options) GetStorageKey() string {
	return o.StorageKey
}

func (o *Options) GetStorageTimeout() time.Duration {
	return o.StorageTimeout
}

func (o *Options) GetPhoneRegion() string {
	return o.PhoneRegion
}

func (o *Options) GetDebug() bool {
	return o.Debug
}

func (o *Options) GetStorageDriver() string {
	return o.StorageDriver
}

func (o *Options) GetStorageDSN() string {
	return o.StorageDSN
}

func (o *Options) GetListen() string {
	return o.Listen
}
