// Package config loads runner configuration from, in increasing precedence,
// built-in defaults, a wfrun.yml file, WFRUN_ environment variables, and
// command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/wfrun/wfrun/pkg/constants"
	"github.com/wfrun/wfrun/pkg/logger"
)

var configLog = logger.New("config:load")

// Config is the resolved runner configuration shared by the commands.
type Config struct {
	// WorkflowDir is where workflows are discovered when no path is given.
	WorkflowDir string `koanf:"workflow_dir"`

	// Event and Ref describe the simulated repository event.
	Event string `koanf:"event"`
	Ref   string `koanf:"ref"`

	FailFast            bool `koanf:"fail_fast"`
	StrictUses          bool `koanf:"strict_uses"`
	AllowPythonFallback bool `koanf:"allow_python_fallback"`
	NoPTY               bool `koanf:"no_pty"`
	Verbose             bool `koanf:"verbose"`

	// Env is injected into every job, between workflow- and job-level env.
	Env map[string]string `koanf:"env"`

	// FileUsed is the config file that was loaded, empty when none was found.
	FileUsed string `koanf:"-"`
}

// flagConfigKeys lists the config keys command-line flags may override.
var flagConfigKeys = map[string]bool{
	"workflow_dir":          true,
	"event":                 true,
	"ref":                   true,
	"fail_fast":             true,
	"strict_uses":           true,
	"allow_python_fallback": true,
	"no_pty":                true,
	"verbose":               true,
}

// findConfigFile picks the config file to load.
// Priority: explicit path > wfrun.yml > .wfrun.yml in dir.
func findConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{constants.ConfigFileName, constants.ConfigFileNameHidden} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load resolves the configuration. cfgFile is the --config flag value (may
// be empty), dir is where implicit config files are searched (usually the
// working directory), and flags contributes explicitly-set flag values at
// the highest precedence.
func Load(cfgFile, dir string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"workflow_dir":          constants.DefaultWorkflowDir,
		"event":                 constants.DefaultEvent,
		"ref":                   constants.DefaultRef,
		"fail_fast":             true,
		"strict_uses":           false,
		"allow_python_fallback": false,
		"no_pty":                false,
		"verbose":               false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	fileUsed := findConfigFile(cfgFile, dir)
	if fileUsed != "" {
		configLog.Printf("Loading config file: path=%s", fileUsed)
		if err := k.Load(file.Provider(fileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", fileUsed, err)
		}
	}

	// WFRUN_FAIL_FAST -> fail_fast. Env vars that collide with the runner's
	// own step contract (WFRUN_RUN_ID, WFRUN_PYTHON) are not config keys and
	// fall through harmlessly as unknown keys.
	if err := k.Load(env.Provider(constants.EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, constants.EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			// Only flags that mirror a config key override config; the
			// rest (--env, --job, --sha, ...) are read by the command
			// itself and must not collide with config keys.
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !flagConfigKeys[key] {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = fileUsed
	return &cfg, nil
}
