package env

import (
	"context"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/danielwestendorf/faktory-client/faktory"
)

// rawConfig mirrors the environment variables the Faktory ecosystem's
// client libraries conventionally honor: FAKTORY_PROVIDER names another
// env var holding the actual connection string (so a host can swap
// providers without redeploying code that names FAKTORY_URL directly),
// falling back to FAKTORY_URL itself.
type rawConfig struct {
	Provider string `env:"FAKTORY_PROVIDER"`
	URL      string `env:"FAKTORY_URL,default=localhost:7419"`
}

// LoadConfig resolves a *faktory.Config from the process environment. It
// loads an optional .env.local first (missing is not an error), then
// follows FAKTORY_PROVIDER indirection to find the variable actually
// holding the connection string, defaulting to localhost:7419.
func LoadConfig(ctx context.Context) (*faktory.Config, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	raw := rawConfig{}
	if err := envconfig.Process(ctx, &raw); err != nil {
		return nil, err
	}

	addr := raw.URL
	if raw.Provider != "" {
		if v := os.Getenv(raw.Provider); v != "" {
			addr = v
		}
	}

	addr = stripScheme(addr)

	host, password := addr, ""
	if at := strings.LastIndex(host, "@"); at != -1 {
		userinfo := host[:at]
		host = host[at+1:]
		if colon := strings.Index(userinfo, ":"); colon != -1 {
			password = userinfo[colon+1:]
		}
	}

	host, port := splitHostPort(host)

	cfg, err := faktory.NewConfig(host)
	if err != nil {
		return nil, err
	}

	cfg.Password = password
	if port != 0 {
		cfg.Port = port
	}

	return cfg, nil
}

func stripScheme(addr string) string {
	if idx := strings.Index(addr, "://"); idx != -1 {
		return addr[idx+3:]
	}

	return addr
}

func splitHostPort(hostport string) (string, int) {
	host, portStr, found := strings.Cut(hostport, ":")
	if !found {
		return host, 0
	}

	port := 0
	for _, c := range portStr {
		if c < '0' || c > '9' {
			return host, 0
		}
		port = port*10 + int(c-'0')
	}

	return host, port
}
