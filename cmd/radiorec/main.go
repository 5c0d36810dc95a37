package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/grafana/dskit/flagext"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/version"
	"gopkg.in/yaml.v2"

	"github.com/zachfi/zkit/pkg/tracing"

	"github.com/zachfi/radiorec/app"
	"github.com/zachfi/radiorec/modules/recorder"
	"github.com/zachfi/radiorec/pkg/settings"
)

const appName = "radiorec"

// Version is set via build flag -ldflags -X main.Version
var (
	Version  string
	Branch   string
	Revision string
)

const (
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage")

func init() {
	version.Version = Version
	version.Branch = Branch
	version.Revision = Revision
	prometheus.MustRegister(version.NewCollector(appName))
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Error: No argument specified.")
		usage(stderr)
		return exitUsage
	}

	cmd, args := args[0], args[1:]

	cfg, positional, err := loadConfig(cmd, args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			usage(stderr)
			return exitUsage
		}
		return exitFailure
	}

	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	if cfg.Recorder.Verbose {
		level.Set(slog.LevelInfo)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	switch cmd {
	case "list":
		return list(cfg, stdout, stderr)
	case "record":
		req, err := captureRequest(positional)
		if err != nil {
			fmt.Fprintln(stderr, err)
			usage(stderr)
			return exitUsage
		}
		cfg.Recorder.Request = req
		return record(cfg, logger, stderr)
	}

	fmt.Fprintf(stderr, "unknown command %q\n", cmd)
	usage(stderr)
	return exitUsage
}

func list(cfg *app.Config, stdout, stderr io.Writer) int {
	s, err := settings.Find(cfg.Recorder.SettingsFile, settings.DefaultSearchPolicy(settings.CurrentPlatform()))
	if err != nil {
		fmt.Fprintln(stderr, diagnostic(err))
		return exitFailure
	}

	for _, name := range s.StationNames() {
		fmt.Fprintln(stdout, name)
	}
	return 0
}

func record(cfg *app.Config, logger *slog.Logger, stderr io.Writer) int {
	shutdownTracer, err := tracing.InstallOpenTelemetryTracer(&cfg.Tracing, logger, appName, Version)
	if err != nil {
		logger.Error("error initialising tracer", "err", err)
		return exitFailure
	}
	defer shutdownTracer()

	a, err := app.New(*cfg, logger)
	if err != nil {
		logger.Error("failed to create", "app", appName, "err", err)
		return exitFailure
	}

	if err := a.Run(); err != nil {
		fmt.Fprintln(stderr, diagnostic(err))
		return exitFailure
	}
	return 0
}

// diagnostic turns a pipeline error into the one line shown to the user.
func diagnostic(err error) string {
	switch {
	case errors.Is(err, recorder.ErrSettingsNotFound):
		return "Settings file not found: " + err.Error()
	case errors.Is(err, recorder.ErrUnknownStation):
		return "Unknown station name: " + err.Error()
	case errors.Is(err, recorder.ErrUnsupportedContentType):
		return "Sorry, playlists are currently not supported: " + err.Error()
	}
	return "Error: " + err.Error()
}

func captureRequest(positional []string) (recorder.CaptureRequest, error) {
	if len(positional) < 2 || len(positional) > 3 {
		return recorder.CaptureRequest{}, errors.Wrap(errUsage, "record needs <station> <duration> [name]")
	}

	minutes, err := strconv.Atoi(positional[1])
	if err != nil || minutes < 1 {
		return recorder.CaptureRequest{}, errors.Wrap(errUsage, "Duration must be a positive integer.")
	}

	req := recorder.CaptureRequest{Station: positional[0], Minutes: minutes}
	if len(positional) == 3 {
		req.Name = positional[2]
	}
	if err := req.Validate(); err != nil {
		return recorder.CaptureRequest{}, errors.Wrap(errUsage, err.Error())
	}
	return req, nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `This program records internet radio streams and uploads them to webdav

Usage:
  radiorec record <station> <duration> [name] [-v] [-s PATH]
  radiorec list [-s PATH]

Run "radiorec <command> -h" for all flags.`)
}

// loadConfig builds the configuration from defaults, an optional YAML file
// and the command line, in that order. Flags and positional arguments may be
// interleaved; the positional arguments are returned.
func loadConfig(cmd string, args []string, stderr io.Writer) (*app.Config, []string, error) {
	const (
		configFileOption = "config.file"
	)

	var configFile string

	config := &app.Config{}

	// first get the config file
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&configFile, configFileOption, "", "")

	// Try to find -config.file. As Parsing stops on the first error, eg. unknown flag,
	// we simply try remaining parameters until we find config flag, or there are no params left.
	// (ContinueOnError just means that flag.Parse doesn't call panic or os.Exit, but it returns error, which we ignore)
	rest := args
	for len(rest) > 0 {
		_ = fs.Parse(rest)
		rest = rest[1:]
	}

	// load config defaults and register flags
	cmdFlags := flag.NewFlagSet(appName+" "+cmd, flag.ContinueOnError)
	cmdFlags.SetOutput(stderr)
	config.RegisterFlagsAndApplyDefaults("", cmdFlags)
	cmdFlags.StringVar(&config.Recorder.SettingsFile, "s", "", "Alternative path to the settings file.")
	cmdFlags.StringVar(&config.Recorder.SettingsFile, "settings", "", "Alternative path to the settings file.")
	cmdFlags.BoolVar(&config.Recorder.Verbose, "v", false, "Verbose output.")
	cmdFlags.BoolVar(&config.Recorder.Verbose, "verbose", false, "Verbose output.")

	// overlay with config file if provided
	if configFile != "" {
		buff, err := os.ReadFile(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read configFile %s: %w", configFile, err)
		}

		err = yaml.UnmarshalStrict(buff, config)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse configFile %s: %w", configFile, err)
		}
	}

	// overlay with cli
	flagext.IgnoredFlag(cmdFlags, configFileOption, "Configuration file to load")

	var positional []string
	for {
		if err := cmdFlags.Parse(args); err != nil {
			return nil, nil, err
		}
		args = cmdFlags.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}

	return config, positional, nil
}
