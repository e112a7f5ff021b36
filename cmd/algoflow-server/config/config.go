// Package config loads the grading server configuration.
package config

import (
	"os"
	"runtime"
	"time"

	"github.com/koding/multiconfig"
)

// Config defines grading server configuration
type Config struct {
	// grading
	Parallelism int           `flagUsage:"control the # of concurrent gradings (default equal to number of cpu)"`
	CaseTimeout time.Duration `flagUsage:"specifies wall clock limit of a single test case (0 disables)" default:"2s"`
	CatalogPath string        `flagUsage:"specifies problem catalog yaml (built-in catalog by default)"`

	// file store
	Dir string `flagUsage:"specifies directory to store submissions while grading (temp dir by default)"`

	// server config
	HTTPAddr      string `flagUsage:"specifies the http binding address" default:":5060"`
	MonitorAddr   string `flagUsage:"specifies the metrics binding address" default:":5062"`
	AuthToken     string `flagUsage:"bearer token auth for REST"`
	EnableDebug   bool   `flagUsage:"enable debug endpoint"`
	EnableMetrics bool   `flagUsage:"enable promethus metrics endpoint"`

	// logger config
	Release bool `flagUsage:"release level of logs"`
	Silent  bool `flagUsage:"do not print logs"`

	// show version and exit
	Version bool `flagUsage:"show version and exit"`
}

// Load loads config from flag & environment variables
func (c *Config) Load() error {
	cl := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{
			Prefix:    "AF",
			CamelCase: true,
		},
		&multiconfig.FlagLoader{
			CamelCase: true,
			EnvPrefix: "AF",
		},
	)
	if os.Getpid() == 1 {
		c.Release = true
	}
	if err := cl.Load(c); err != nil {
		return err
	}
	if c.Parallelism <= 0 {
		c.Parallelism = runtime.NumCPU()
	}
	return nil
}
