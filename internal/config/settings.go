package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Setting keys shared by flags, environment variables and Settings
const (
	KeyServerList         = "config"
	KeyLogLevel           = "log-level"
	KeyLogFormat          = "log-format"
	KeyHTTPAddr           = "http-addr"
	KeyMetricsAddr        = "metrics-addr"
	KeyCatalogConcurrency = "catalog-concurrency"
	KeyValidateArgs       = "validate-args"
	KeyAllowedOrigins     = "allowed-origins"
)

// EnvPrefix prefixes every gateway setting read from the environment,
// except the server list location which keeps its historical name.
const EnvPrefix = "NEXUS"

// DefaultCatalogConcurrency bounds how many sessions are queried at once
const DefaultCatalogConcurrency = 4

// Settings holds the gateway's runtime settings
type Settings struct {
	ServerList         string
	LogLevel           string
	LogFormat          string
	HTTPAddr           string
	MetricsAddr        string
	CatalogConcurrency int
	ValidateArgs       bool
	// AllowedOrigins lists the browser origins granted CORS access to the
	// HTTP endpoint. Empty means same-origin only.
	AllowedOrigins []string
}

// RegisterFlags adds the gateway settings flags to flags
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String(KeyServerList, "", "path to the MCP server list file (env "+EnvServerList+")")
	flags.String(KeyLogLevel, "info", "log level: debug, info, warn or error")
	flags.String(KeyLogFormat, "console", "log format: console or json")
	flags.String(KeyHTTPAddr, "", "serve the gateway over streamable HTTP on this address instead of stdio")
	flags.String(KeyMetricsAddr, "", "expose prometheus metrics on this address")
	flags.Int(KeyCatalogConcurrency, DefaultCatalogConcurrency, "maximum number of servers queried concurrently for catalogs")
	flags.Bool(KeyValidateArgs, false, "validate call-tool arguments against the downstream input schema before forwarding")
	flags.StringSlice(KeyAllowedOrigins, nil, "browser origins allowed to call the HTTP endpoint cross-origin (comma separated)")
}

// NewViper returns a viper instance bound to flags and the environment
func NewViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyCatalogConcurrency, DefaultCatalogConcurrency)

	if err := v.BindEnv(KeyServerList, EnvServerList); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", EnvServerList, err)
	}
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	return v, nil
}

// SettingsFrom reads Settings out of v
func SettingsFrom(v *viper.Viper) Settings {
	s := Settings{
		ServerList:         v.GetString(KeyServerList),
		LogLevel:           v.GetString(KeyLogLevel),
		LogFormat:          v.GetString(KeyLogFormat),
		HTTPAddr:           v.GetString(KeyHTTPAddr),
		MetricsAddr:        v.GetString(KeyMetricsAddr),
		CatalogConcurrency: v.GetInt(KeyCatalogConcurrency),
		ValidateArgs:       v.GetBool(KeyValidateArgs),
		AllowedOrigins:     splitList(v.GetStringSlice(KeyAllowedOrigins)),
	}
	if s.CatalogConcurrency <= 0 {
		s.CatalogConcurrency = DefaultCatalogConcurrency
	}
	return s
}

// splitList flattens comma separated entries, as given in the environment,
// and drops blanks
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
