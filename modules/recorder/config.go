package recorder

import (
	"flag"
	"time"

	"github.com/zachfi/zkit/pkg/util"
)

// Write buffer sizing guidance (write-buffer-size):
// - Each chunk read from the stream is small (chunk-size); batching avoids one syscall per chunk.
// - Upper bound: config is clamped to 4MiB to limit memory.
const (
	defaultChunkSize       = 1024
	defaultWriteBufferSize = 64 * 1024 // 64 KiB
	defaultConnectTimeout  = 5 * time.Second
)

type Config struct {
	SettingsFile    string        `yaml:"settings-file,omitempty"`
	SpoolDir        string        `yaml:"spool-dir,omitempty"`
	ChunkSize       int           `yaml:"chunk-size,omitempty"`        // bytes read from the stream per iteration
	WriteBufferSize int           `yaml:"write-buffer-size,omitempty"` // bytes to batch before writing to the spool
	UserAgent       string        `yaml:"user-agent,omitempty"`
	ConnectTimeout  time.Duration `yaml:"connect-timeout,omitempty"`
	Verbose         bool          `yaml:"verbose,omitempty"`

	// Request is taken from the command line, never from the config file.
	Request CaptureRequest `yaml:"-"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&cfg.SettingsFile, util.PrefixConfig(prefix, "settings-file"), "", "Path to settings.ini. When empty the platform search path is used.")
	f.StringVar(&cfg.SpoolDir, util.PrefixConfig(prefix, "spool-dir"), "", "Directory for the temporary spool file (default: system temp dir).")
	f.IntVar(&cfg.ChunkSize, util.PrefixConfig(prefix, "chunk-size"), defaultChunkSize, "Bytes read from the stream per iteration.")
	f.IntVar(&cfg.WriteBufferSize, util.PrefixConfig(prefix, "write-buffer-size"), defaultWriteBufferSize,
		"Bytes to buffer in memory before writing to the spool.")
	f.StringVar(&cfg.UserAgent, util.PrefixConfig(prefix, "user-agent"), "", "User-Agent sent to stream and playlist servers.")
	f.DurationVar(&cfg.ConnectTimeout, util.PrefixConfig(prefix, "connect-timeout"), defaultConnectTimeout,
		"Timeout for connecting to a stream server. Reading the stream has no timeout.")
	f.BoolVar(&cfg.Verbose, util.PrefixConfig(prefix, "verbose"), false, "Print progress while recording.")
}
