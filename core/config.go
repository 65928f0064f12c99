package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Auth modes
const (
	AuthModeSimulated = "simulated"
	AuthModeDirectory = "directory"
)

type (
	Config struct {
		Env              string // DEV (default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		RollbarToken     string
		SendgridApiKey   string
		defaultFromEmail string

		Server  ServerConfig
		Session SessionConfig
		Auth    AuthConfig
		UI      UIConfig
		Portal  PortalConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		ShutdownTimeout time.Duration
		CSRF            bool
		DisableReqLogs  bool
	}

	SessionConfig struct {
		CookieName    string
		TokenTTL      time.Duration
		Timeout       time.Duration
		CheckInterval time.Duration
		EvictAfter    time.Duration
	}

	AuthConfig struct {
		Mode    string // simulated | directory
		Latency time.Duration
	}

	UIConfig struct {
		RedirectDelay   time.Duration
		NotificationTTL time.Duration
	}

	PortalConfig struct {
		SeedData bool
	}
)

// DefaultFromEmail parses the configured sender address, falling back to a bare address.
func (conf *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(conf.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: conf.AppName, Address: conf.defaultFromEmail}
	}
	if addr.Name == "" {
		addr.Name = conf.AppName
	}
	return *addr
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Campus Companion")
	v.SetDefault("secretKey", "k2v8-tq9)zmf$+31=ab&uoxh7(p!x)#*c4(#wr2^$cegm9pld")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("configDir", "config")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.csrf", true)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("session.cookieName", "portal_session")
	v.SetDefault("session.tokenTTL", 24*time.Hour)
	v.SetDefault("session.timeout", 30*time.Minute)
	v.SetDefault("session.checkInterval", time.Minute)
	v.SetDefault("session.evictAfter", 2*time.Hour)

	v.SetDefault("auth.mode", AuthModeSimulated)
	v.SetDefault("auth.latency", time.Second)

	v.SetDefault("ui.redirectDelay", time.Second)
	v.SetDefault("ui.notificationTTL", 3*time.Second)

	v.SetDefault("portal.seedData", true)
}

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the upper-cased env name, eg: `DEV_SESSION_TIMEOUT=45m`.
func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
		v.SetDefault("auth.latency", time.Duration(0))
		v.SetDefault("ui.redirectDelay", time.Duration(0))
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(v.GetString("configDir"), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         v.GetString("server.address"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			CSRF:            v.GetBool("server.csrf"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Session: SessionConfig{
			CookieName:    v.GetString("session.cookieName"),
			TokenTTL:      v.GetDuration("session.tokenTTL"),
			Timeout:       v.GetDuration("session.timeout"),
			CheckInterval: v.GetDuration("session.checkInterval"),
			EvictAfter:    v.GetDuration("session.evictAfter"),
		},
		Auth: AuthConfig{
			Mode:    strings.ToLower(v.GetString("auth.mode")),
			Latency: v.GetDuration("auth.latency"),
		},
		UI: UIConfig{
			RedirectDelay:   v.GetDuration("ui.redirectDelay"),
			NotificationTTL: v.GetDuration("ui.notificationTTL"),
		},
		Portal: PortalConfig{
			SeedData: v.GetBool("portal.seedData"),
		},
	}

	switch conf.Auth.Mode {
	case AuthModeSimulated, AuthModeDirectory:
	default:
		return nil, errors.Errorf("unknown auth mode %q", conf.Auth.Mode)
	}
	if conf.Session.Timeout <= 0 {
		return nil, errors.New("session.timeout must be positive")
	}
	return conf, nil
}
