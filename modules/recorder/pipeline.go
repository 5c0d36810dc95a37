package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zachfi/zkit/pkg/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zachfi/radiorec/pkg/settings"
)

// State is the position of a recording in the pipeline.
type State int

const (
	Idle State = iota
	SettingsLoaded
	StreamResolved
	PathComputed
	Capturing
	Uploading
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SettingsLoaded:
		return "settings_loaded"
	case StreamResolved:
		return "stream_resolved"
	case PathComputed:
		return "path_computed"
	case Capturing:
		return "capturing"
	case Uploading:
		return "uploading"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Uploader is the remote side of a recording.
type Uploader interface {
	Connect() error
	Upload(remotePath, localPath string) error
}

// SettingsLoader returns the settings for one invocation.
type SettingsLoader func() (*settings.Settings, error)

// UploaderFactory builds an Uploader for the configured remote.
type UploaderFactory func(settings.Remote) Uploader

var tracer = otel.Tracer("modules/recorder")

// Pipeline records one station to one remote file. The steps run strictly in
// order and the first failure ends the run.
type Pipeline struct {
	logger   *slog.Logger
	progress *slog.Logger // verbose-mode output, discarded otherwise

	loadSettings SettingsLoader
	opener       StreamOpener
	newUploader  UploaderFactory
	capture      *Capture
	now          func() time.Time

	state State
}

func NewPipeline(cfg *Config, logger *slog.Logger, loadSettings SettingsLoader, opener StreamOpener, newUploader UploaderFactory) *Pipeline {
	progress := slog.New(slog.DiscardHandler)
	if cfg.Verbose {
		progress = logger
	}

	p := &Pipeline{
		logger:       logger,
		progress:     progress,
		loadSettings: loadSettings,
		opener:       opener,
		newUploader:  newUploader,
		capture:      NewCapture(cfg, progress),
		now:          time.Now,
	}
	p.capture.now = func() time.Time { return p.now() }

	return p
}

// State reports where the last run got to.
func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) advance(s State) {
	p.logger.Debug("state", "from", p.state, "to", s)
	p.state = s
}

// Run performs a recording. The spool, if one was created, is gone from disk
// when Run returns.
func (p *Pipeline) Run(ctx context.Context, req CaptureRequest) (err error) {
	id := uuid.New().String()
	logger := p.logger.With("recording", id, "station", req.Station)
	progress := p.progress.With("recording", id)

	ctx, span := tracer.Start(ctx, "Pipeline.Run", trace.WithAttributes(
		attribute.String("recording", id),
		attribute.String("station", req.Station),
		attribute.Int("minutes", req.Minutes),
	))

	p.state = Idle
	defer func() {
		if err != nil {
			metricStageFailures.WithLabelValues(p.state.String()).Inc()
			metricRecordings.WithLabelValues("failure").Inc()
			logger.Debug("recording failed", "state", p.state, "err", err)
			p.advance(Failed)
		} else {
			metricRecordings.WithLabelValues("success").Inc()
		}
		_ = tracing.ErrHandler(span, err, "recording failed", nil)
	}()

	if err := req.Validate(); err != nil {
		return err
	}

	s, err := p.loadSettings()
	if err != nil {
		return err
	}
	p.advance(SettingsLoaded)

	if err := s.Remote.Validate(); err != nil {
		return err
	}
	uploader := p.newUploader(s.Remote)
	if err := uploader.Connect(); err != nil {
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	resolved, err := NewStationResolver(s, p.opener).Resolve(ctx, req.Station)
	if err != nil {
		return err
	}
	defer resolved.Stream.Close()
	progress.Info("stream url: " + resolved.URL)
	p.advance(StreamResolved)

	remote, err := BuildRemotePath(p.now(), req.Station, req.Name, resolved.ContentType, s.Remote.Dir)
	if err != nil {
		return err
	}
	if remote.Guessed {
		logger.Warn("unknown content type, assuming "+remote.Extension, "content_type", resolved.ContentType)
	}
	p.advance(PathComputed)

	progress.Info("recording " + req.Station + "...")
	p.advance(Capturing)
	start := p.now()
	spool, err := p.capture.Record(resolved.Stream, req.Duration())
	metricCaptureSeconds.Set(p.now().Sub(start).Seconds())
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := spool.Remove(); rmErr != nil {
			logger.Error("error removing spool", "err", rmErr, "path", spool.Path())
		}
	}()
	metricCapturedBytes.WithLabelValues(req.Station).Add(float64(spool.Size()))

	p.advance(Uploading)
	progress.Info("uploading file to " + remote.Path)
	if err := uploader.Upload(remote.Path, spool.Path()); err != nil {
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	p.advance(Done)
	return nil
}
