package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (PICKLINE_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Robot     RobotConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
	Seed      SeedConfig
}

// RobotConfig locates the robot controller and bounds its I/O.
type RobotConfig struct {
	Host            string        `default:"127.0.0.1" usage:"Robot controller host"`
	DashboardPort   int           `default:"29999" usage:"Dashboard (control) port" flag:"dashboard-port"`
	ProgramPort     int           `default:"30002" usage:"URScript program port" flag:"program-port"`
	DialTimeout     time.Duration `default:"5s" usage:"TCP dial timeout per connection" flag:"dial-timeout"`
	DispatchTimeout time.Duration `default:"30s" usage:"Deadline for one pick/place dispatch" flag:"dispatch-timeout"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// SeedConfig controls startup catalog seeding. The engine keeps no state
// across restarts, so a fresh process starts from this seed (or empty).
type SeedConfig struct {
	Demo bool `default:"true" usage:"Seed the demo catalog at startup" flag:"seed-demo"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "PICKLINE",
		Files:     []string{"config.yaml", "/etc/pickline/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if port := os.Getenv("PORT"); port != "" && cfg.Addr == "0.0.0.0:8080" {
		cfg.Addr = "0.0.0.0:" + port
	}

	return &cfg, nil
}
