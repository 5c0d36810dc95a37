package recorder

import (
	"context"
	"log/slog"

	"github.com/grafana/dskit/modules"
	"github.com/grafana/dskit/services"

	"github.com/zachfi/radiorec/pkg/settings"
	"github.com/zachfi/radiorec/pkg/shoutcast"
	"github.com/zachfi/radiorec/pkg/webdav"
)

// Recorder runs a single recording as a service. It stops the process once
// the recording has finished.
type Recorder struct {
	services.Service
	cfg      *Config
	logger   *slog.Logger
	pipeline *Pipeline

	err error
}

var module = "recorder"

// New creates and returns a new Recorder.
func New(cfg Config, logger *slog.Logger) (*Recorder, error) {
	if err := cfg.Request.Validate(); err != nil {
		return nil, err
	}

	r := &Recorder{
		cfg:    &cfg,
		logger: logger.With("module", module),
	}

	policy := settings.DefaultSearchPolicy(settings.CurrentPlatform())
	load := func() (*settings.Settings, error) {
		return settings.Find(r.cfg.SettingsFile, policy)
	}

	opener := shoutcast.NewClient(shoutcast.Config{
		UserAgent:      cfg.UserAgent,
		ConnectTimeout: cfg.ConnectTimeout,
	}, r.logger)

	newUploader := func(remote settings.Remote) Uploader {
		return webdav.New(remote, r.logger)
	}

	r.pipeline = NewPipeline(r.cfg, r.logger, load, opener, newUploader)
	r.Service = services.NewBasicService(nil, r.running, r.stopping)

	return r, nil
}

func (r *Recorder) running(ctx context.Context) error {
	r.err = r.pipeline.Run(ctx, r.cfg.Request)
	if r.err != nil {
		return r.err
	}

	return modules.ErrStopProcess
}

func (r *Recorder) stopping(_ error) error {
	r.logger.Debug("stopping", "state", r.pipeline.State())
	return nil
}

// Err is the outcome of the recording once the service has terminated.
func (r *Recorder) Err() error {
	return r.err
}
