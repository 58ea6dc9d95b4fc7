package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/moku-rest-client/internal/config"
	"github.com/samvad-hq/moku-rest-client/internal/domain"
	"github.com/samvad-hq/moku-rest-client/internal/logger"
	"github.com/samvad-hq/moku-rest-client/internal/storage"
	"github.com/samvad-hq/moku-rest-client/pkg/moku"
	"github.com/samvad-hq/moku-rest-client/pkg/publishers"
)

const relinquishTimeout = 10 * time.Second

// Runner drives one oscilloscope session: claim, identify, configure, capture.
// Captured frames are archived and published when those sinks are configured.
type Runner struct {
	cfg    *config.Config
	client *moku.Client
	store  storage.Store
	fanout *publishers.Fanout
	out    io.Writer
	log    logger.Logger
	newID  func() string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithOutput redirects sequence results (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithIDGenerator overrides how capture IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewRunner builds the device client, frame archive and publishers from config.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r := &Runner{
		cfg:   cfg,
		out:   os.Stdout,
		log:   log,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.client = moku.NewClient(cfg.MokuIP,
		moku.WithTimeout(cfg.RequestTimeout),
		moku.WithLogger(log),
	)

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		CaptureTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	r.store = store
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"capture_ttl_seconds":      int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	r.fanout = fanout

	return r, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run executes the call sequence. The first failing call ends the run and
// its error is returned; no later call is made. Store and publishers are
// released on return, and ownership is relinquished when configured.
func (r *Runner) Run(ctx context.Context) (err error) {
	if r == nil || r.client == nil {
		return fmt.Errorf("runner is not initialized")
	}
	defer r.close()

	start := time.Now()
	key, err := r.client.Claim(ctx, r.cfg.ForceConnect)
	if err != nil {
		return err
	}
	if r.cfg.RelinquishOnExit {
		defer func() {
			if relErr := r.relinquish(ctx); relErr != nil {
				err = errors.Join(err, relErr)
			}
		}()
	}
	r.log.InfoObj("ownership claimed", "session", map[string]any{
		"host":          r.client.Host(),
		"force_connect": r.cfg.ForceConnect,
	})
	fmt.Fprintf(r.out, "Established connection, client key: %s\n", key)

	name, err := r.client.Name(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, name)

	serial, err := r.client.SerialNumber(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, serial)

	osc := r.client.Oscilloscope(r.cfg.MokuSlot)
	settings, err := osc.SetFrontend(ctx, moku.FrontendRequest{
		Channel:   r.cfg.OscChannel,
		Coupling:  r.cfg.OscCoupling,
		Impedance: r.cfg.OscImpedance,
		Range:     r.cfg.OscRange,
	})
	if err != nil {
		return err
	}
	if err := r.printJSON(settings); err != nil {
		return err
	}

	frame, err := osc.GetData(ctx, moku.GetDataRequest{WaitReacquire: r.cfg.WaitReacquire})
	if err != nil {
		return err
	}
	if err := r.printJSON(frame); err != nil {
		return err
	}

	r.archive(ctx, r.captureFrom(name, serial, osc.Slot(), frame))

	r.log.InfoObj("sequence completed", "sequence_meta", map[string]any{
		"device":     name,
		"serial":     serial,
		"slot":       osc.Slot(),
		"frame_len":  len(frame.Time),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (r *Runner) captureFrom(name, serial, slot string, frame *moku.Frame) domain.Capture {
	return domain.Capture{
		ID:           r.newID(),
		DeviceName:   name,
		SerialNumber: serial,
		Slot:         slot,
		CapturedAt:   time.Now().UTC(),
		Time:         frame.Time,
		Channels:     frame.Channels(),
	}
}

// archive stores and publishes a capture. Failures are logged; the capture
// was already printed so the run still counts as successful.
func (r *Runner) archive(ctx context.Context, capture domain.Capture) {
	if err := r.store.SaveCapture(capture); err != nil {
		r.log.ErrorObj("capture archive failed", "storage_error", map[string]any{
			"capture_id": capture.ID,
			"error":      err.Error(),
		})
	}

	if r.fanout.Size() == 0 {
		return
	}
	delivered, err := r.fanout.Publish(ctx, publishers.NewEvent(capture))
	if err != nil {
		r.log.ErrorObj("capture publish failed", "publish_error", map[string]any{
			"capture_id": capture.ID,
			"delivered":  delivered,
			"error":      err.Error(),
		})
		return
	}
	r.log.InfoObj("capture published", "publish_result", map[string]any{
		"capture_id": capture.ID,
		"delivered":  delivered,
	})
}

// relinquish runs on the way out, so it must not inherit a cancelled context.
func (r *Runner) relinquish(ctx context.Context) error {
	timeout := r.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = relinquishTimeout
	}
	relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := r.client.Relinquish(relCtx); err != nil {
		r.log.ErrorObj("relinquish ownership failed", "error", err.Error())
		return err
	}
	r.log.InfoObj("ownership relinquished", "host", r.client.Host())
	return nil
}

func (r *Runner) printJSON(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(r.out, string(raw))
	return err
}

// close releases the archive and publishers, logging any errors encountered.
func (r *Runner) close() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("publishers close failed", "error", err)
	}
}
