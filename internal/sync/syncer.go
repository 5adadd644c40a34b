// Package sync copies contract addresses from a deployment artifact into the
// config. The artifact may be a local file or an http(s) URL.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/logging"
)

// maxArtifactSize bounds a remote artifact download.
const maxArtifactSize = 1 << 20

// DefaultRemoteInterval is how often Watch re-fetches a remote artifact.
const DefaultRemoteInterval = 30 * time.Second

// ErrNoContracts is returned for an artifact without any contract entries.
var ErrNoContracts = errors.New("deployment artifact lists no contracts")

// Result describes one applied artifact.
type Result struct {
	Network string
	Changed []string
}

// Syncer applies deployment artifacts to a config.
type Syncer struct {
	cfg      *config.Config
	client   *http.Client
	clock    clock.Clock
	interval time.Duration
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithHTTPClient replaces the client used for remote artifacts.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Syncer) { s.client = c }
}

// WithClock replaces the clock driving remote polling.
func WithClock(c clock.Clock) Option {
	return func(s *Syncer) { s.clock = c }
}

// WithInterval sets the remote polling interval.
func WithInterval(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// New creates a Syncer writing into cfg.
func New(cfg *config.Config, opts ...Option) *Syncer {
	s := &Syncer{
		cfg:      cfg,
		client:   &http.Client{Timeout: 15 * time.Second},
		clock:    clock.New(),
		interval: DefaultRemoteInterval,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch loads the artifact at source.
func (s *Syncer) Fetch(ctx context.Context, source string) (*config.Deployment, error) {
	if !IsRemote(source) {
		return config.LoadDeployment(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", source, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return config.ParseDeployment(body, source)
}

// Apply stores d's addresses for network and records the sync. An empty
// network falls back to the artifact's own network, then the default.
func (s *Syncer) Apply(network, source string, d *config.Deployment) (Result, error) {
	if len(d.Contracts) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrNoContracts, source)
	}
	if network == "" {
		network = d.Network
	}
	if network == "" {
		network = s.cfg.DefaultNetwork
	}

	changed := s.cfg.ApplyDeployment(network, d)
	if err := s.cfg.Save(); err != nil {
		return Result{}, err
	}
	err := s.cfg.SaveSync(&config.SyncState{
		Source:     source,
		Network:    network,
		LastSynced: s.clock.Now().UTC().Format(time.RFC3339),
		Changed:    changed,
	})
	if err != nil {
		return Result{}, fmt.Errorf("saving sync state: %w", err)
	}
	if len(changed) > 0 {
		logging.Info("deployment synced", logging.Network(network), "source", source, "changed", changed)
	}
	return Result{Network: network, Changed: changed}, nil
}

// Run fetches and applies source once.
func (s *Syncer) Run(ctx context.Context, network, source string) (Result, error) {
	d, err := s.Fetch(ctx, source)
	if err != nil {
		return Result{}, err
	}
	return s.Apply(network, source, d)
}

// Watch re-applies source whenever it changes until ctx is done. Local files
// are watched for writes; remote artifacts are re-fetched every interval.
// Failures after the first run go to onErr and do not stop watching.
func (s *Syncer) Watch(ctx context.Context, network, source string, onResult func(Result), onErr func(error)) error {
	if onErr == nil {
		onErr = func(error) {}
	}
	apply := func(d *config.Deployment) {
		r, err := s.Apply(network, source, d)
		if err != nil {
			onErr(err)
			return
		}
		onResult(r)
	}

	if !IsRemote(source) {
		return config.WatchDeployment(ctx, source, apply, onErr)
	}

	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d, err := s.Fetch(ctx, source)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				onErr(err)
				continue
			}
			apply(d)
		}
	}
}
