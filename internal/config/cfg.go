// Package config holds musicd's runtime configuration: the flat set of
// CLI flags described in the HTTP/CLI surface, bound through cobra/pflag
// and validated once at startup (§6 CLI surface, §7 configuration
// errors are fatal on startup).
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gitlab.com/go-utilities/file"
)

// LogLevel is one of the accepted --log-level values.
type LogLevel string

// accepted log levels
const (
	LogError LogLevel = "error"
	LogWarn  LogLevel = "warn"
	LogInfo  LogLevel = "info"
	LogDebug LogLevel = "debug"
	LogTrace LogLevel = "trace"
)

func (l LogLevel) valid() bool {
	switch l {
	case LogError, LogWarn, LogInfo, LogDebug, LogTrace:
		return true
	default:
		return false
	}
}

// Root is one virtual root declared with --root name path.
type Root struct {
	Name string
	Path string
}

// Cfg is the fully parsed and validated musicd configuration.
type Cfg struct {
	Bind          string
	Directory     string
	CacheLimit    int64
	DisableCache  bool
	LogLevel      LogLevel
	NoInitialScan bool
	Password      string
	Roots         []Root
	ScanInterval  time.Duration
}

// rootFlag implements pflag.Value to accept a repeatable "name path" pair
// on a single --root flag occurrence.
type rootFlag struct {
	roots *[]Root
}

func (r *rootFlag) String() string { return "" }

func (r *rootFlag) Type() string { return "name path" }

func (r *rootFlag) Set(value string) error {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return errors.Errorf("--root expects 'name path', got '%s'", value)
	}
	*r.roots = append(*r.roots, Root{Name: parts[0], Path: parts[1]})
	return nil
}

// Bind adds musicd's CLI flags to cmd and returns the Cfg they will
// populate once cmd.Execute parses arguments.
func Bind(cmd *cobra.Command) *Cfg {
	cfg := &Cfg{}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Bind, "bind", "127.0.0.1:6801", "HTTP listener address")
	flags.StringVar(&cfg.Directory, "directory", "", "directory holding cache.db, index.db and store.db")
	flags.Int64Var(&cfg.CacheLimit, "cache-limit", 256*1024*1024, "thumbnail cache size limit in bytes")
	flags.BoolVar(&cfg.DisableCache, "disable-cache", false, "disable the thumbnail cache")
	flags.StringVar((*string)(&cfg.LogLevel), "log-level", string(LogInfo), "one of error, warn, info, debug, trace")
	flags.BoolVar(&cfg.NoInitialScan, "no-initial-scan", false, "skip the scan that normally runs at startup")
	flags.StringVar(&cfg.Password, "password", "", "optional gate password; empty disables auth")
	flags.VarP(&rootFlag{roots: &cfg.Roots}, "root", "", "name path: declare a virtual root (repeatable)")
	flags.DurationVar(&cfg.ScanInterval, "scan-interval", time.Hour, "periodic rescan interval; 0 disables periodic rescans")

	return cfg
}

// Validate checks that cfg is complete and internally consistent,
// matching the "configuration errors are fatal on startup" error kind
// (§7). It is called once, after flag parsing and before any other
// subsystem is started.
func (c *Cfg) Validate() error {
	if c.Bind == "" {
		return errors.New("--bind must not be empty")
	}
	if c.Directory == "" {
		return errors.New("--directory must not be empty")
	}
	exists, err := file.Exists(c.Directory)
	if err != nil {
		return errors.Wrapf(err, "cannot check if directory '%s' exists", c.Directory)
	}
	if !exists {
		return errors.Errorf("directory '%s' does not exist", c.Directory)
	}
	if c.CacheLimit < 0 {
		return errors.New("--cache-limit must be >= 0")
	}
	if !c.LogLevel.valid() {
		return errors.Errorf("'%s' is not a valid --log-level", c.LogLevel)
	}
	if c.ScanInterval < 0 {
		return errors.New("--scan-interval must be >= 0")
	}
	if len(c.Roots) == 0 {
		return errors.New("at least one --root must be declared")
	}
	seen := make(map[string]bool, len(c.Roots))
	for _, r := range c.Roots {
		if r.Name == "" {
			return errors.New("a --root name must not be empty")
		}
		if seen[r.Name] {
			return errors.Errorf("root name '%s' declared more than once", r.Name)
		}
		seen[r.Name] = true

		exists, err := file.Exists(r.Path)
		if err != nil {
			return errors.Wrapf(err, "cannot check if root path '%s' exists", r.Path)
		}
		if !exists {
			return errors.Errorf("root '%s': path '%s' does not exist", r.Name, r.Path)
		}
	}

	return nil
}

// CacheDBPath, IndexDBPath and StoreDBPath locate the three databases
// musicd keeps under --directory (§2).
func (c *Cfg) CacheDBPath() string { return filepath.Join(c.Directory, "cache.db") }
func (c *Cfg) IndexDBPath() string { return filepath.Join(c.Directory, "index.db") }
func (c *Cfg) StoreDBPath() string { return filepath.Join(c.Directory, "store.db") }
