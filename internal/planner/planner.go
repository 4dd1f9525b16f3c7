// Package planner owns a planning session: the lever matrix, the known
// offices and the audit log. All matrix mutation goes through a Controller.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iwvelando/lever-planner/internal/baseline"
	"github.com/iwvelando/lever-planner/internal/matrix"
	"github.com/iwvelando/lever-planner/internal/offices"
	"github.com/iwvelando/lever-planner/internal/overrides"
	"github.com/iwvelando/lever-planner/internal/scope"
	"github.com/iwvelando/lever-planner/pkg/constants"
	"github.com/iwvelando/lever-planner/pkg/levers"
)

var (
	// ErrSuperseded is returned by a baseline load whose response arrived
	// after a newer load had started.
	ErrSuperseded = errors.New("baseline load superseded by a newer request")

	// ErrUnknownOffice is returned when editing a cell of an office the
	// session does not know.
	ErrUnknownOffice = errors.New("unknown office")

	// ErrBaselineUnavailable is returned by Bootstrap when the offices loaded
	// but the baseline could not be fetched. The session remains usable.
	ErrBaselineUnavailable = errors.New("baseline unavailable")
)

const resetLine = "All levers reset to defaults."

// BaselineFetcher retrieves a raw baseline payload.
type BaselineFetcher interface {
	FetchBaseline(ctx context.Context) ([]byte, error)
}

// OfficesFetcher retrieves the office configuration.
type OfficesFetcher interface {
	FetchOffices(ctx context.Context) ([]offices.Office, error)
}

// Backend provides everything needed to bootstrap a session.
type Backend interface {
	BaselineFetcher
	OfficesFetcher
}

// AuditEntry records one mutation of the matrix for display.
type AuditEntry struct {
	ID      string            `json:"id" yaml:"id"`
	At      time.Time         `json:"at" yaml:"at"`
	Lines   []string          `json:"lines" yaml:"lines"`
	Changes overrides.Summary `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// Controller serializes access to a session's matrix. HTTP handlers run
// concurrently, so every method takes the session lock.
type Controller struct {
	mu sync.Mutex

	logger     *zap.Logger
	applier    *overrides.Applier
	matrix     *matrix.Matrix
	normalizer baseline.Normalizer
	now        func() time.Time

	offices  []offices.Office
	roles    []string
	seedRole string
	baseline baseline.Baseline
	audit    []AuditEntry

	loadGen    uint64
	cancelLoad context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRoles fixes the leveled roles exported in the overrides payload. By
// default they are taken from the office configuration.
func WithRoles(roles []string) Option {
	return func(c *Controller) {
		c.roles = append([]string(nil), roles...)
	}
}

// WithSeedRole selects the baseline role whose rates seed the matrix.
func WithSeedRole(role string) Option {
	return func(c *Controller) {
		if role != "" {
			c.seedRole = role
		}
	}
}

// WithClock overrides the audit timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController creates a session with an all-defaults matrix.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		logger:   zap.NewNop(),
		matrix:   matrix.New(),
		now:      time.Now,
		seedRole: constants.DefaultSeedRole,
		baseline: baseline.Empty(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.applier = overrides.NewApplier(c.logger)
	c.normalizer = baseline.Normalizer{Levels: levers.AllLevels()}
	return c
}

// SetOffices replaces the known offices. FTE may change between simulation
// runs; journeys are recomputed on every apply.
func (c *Controller) SetOffices(list []offices.Office) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offices = append([]offices.Office(nil), list...)
}

// Offices returns name and total FTE of each known office.
func (c *Controller) Offices() []offices.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return offices.Summaries(c.offices)
}

// Roles returns the leveled roles exported in the overrides payload.
func (c *Controller) Roles() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exportRoles()
}

func (c *Controller) exportRoles() []string {
	if len(c.roles) > 0 {
		return append([]string(nil), c.roles...)
	}
	if roles := offices.LeveledRoles(c.offices); len(roles) > 0 {
		return roles
	}
	return []string{c.seedRole}
}

func (c *Controller) officeNames() []string {
	names := make([]string, 0, len(c.offices))
	for _, o := range c.offices {
		names = append(names, o.Name)
	}
	return names
}

// Apply writes a targeting request into the matrix. When nothing was
// selected the summary is empty and its Lines read "No levers applied.".
func (c *Controller) Apply(req scope.Request) (overrides.Summary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	summary, applied := c.applier.Apply(req, c.matrix, offices.Summaries(c.offices))
	if applied {
		c.record(summary.Lines(), summary)
	}
	return summary, applied
}

// Set overwrites a single cell.
func (c *Controller) Set(office string, level levers.Level, t levers.LeverType, month levers.Month, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.knows(office) {
		return fmt.Errorf("%w: %s", ErrUnknownOffice, office)
	}
	if err := c.matrix.Set(office, level, t, month, value); err != nil {
		return err
	}
	stored, err := c.matrix.Get(office, level, t, month)
	if err != nil {
		return err
	}
	key := levers.LeverKey{Type: t, Month: month}
	c.record([]string{fmt.Sprintf("%s %s %s set to %s", office, level, key, overrides.FormatRate(stored))}, nil)
	return nil
}

// Get reads a single cell, falling back to its default.
func (c *Controller) Get(office string, level levers.Level, t levers.LeverType, month levers.Month) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matrix.Get(office, level, t, month)
}

func (c *Controller) knows(office string) bool {
	if len(c.offices) == 0 {
		return true
	}
	for _, o := range c.offices {
		if o.Name == office {
			return true
		}
	}
	return false
}

// Reset returns the matrix to defaults. The audit log is kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matrix.Reset()
	c.record([]string{resetLine}, nil)
	c.logger.Info("lever matrix reset", zap.String("op", "planner.Reset"))
}

// SeedBaseline normalizes raw and seeds recruitment and churn defaults for
// every known office. User edits are never overwritten. It returns the
// number of seeded cells.
func (c *Controller) SeedBaseline(raw any) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seedLocked(raw)
}

func (c *Controller) seedLocked(raw any) int {
	c.baseline = c.normalizer.Normalize(raw)
	seeded := c.matrix.SeedFromBaseline(c.officeNames(), c.baseline, c.seedRole)
	c.logger.Info("seeded lever matrix from baseline",
		zap.String("op", "planner.SeedBaseline"),
		zap.String("role", c.seedRole),
		zap.Int("cells", seeded),
	)
	return seeded
}

// Baseline returns the most recently normalized baseline.
func (c *Controller) Baseline() baseline.Baseline {
	c.mu.Lock()
	defer c.mu.Unlock()
	return baseline.Normalize(c.baseline)
}

// Overrides walks the full matrix, defaults included, into the
// office_overrides payload for every known office and leveled role.
func (c *Controller) Overrides() matrix.Overrides {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matrix.Export(c.officeNames(), c.exportRoles())
}

// Audit returns a copy of the audit log, oldest first.
func (c *Controller) Audit() []AuditEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]AuditEntry(nil), c.audit...)
}

func (c *Controller) record(lines []string, changes overrides.Summary) {
	c.audit = append(c.audit, AuditEntry{
		ID:      uuid.NewString(),
		At:      c.now(),
		Lines:   lines,
		Changes: changes,
	})
}

// beginLoad cancels any in-flight load and starts a new generation.
func (c *Controller) beginLoad(ctx context.Context) (uint64, context.Context, context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	c.loadGen++
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancelLoad = cancel
	return c.loadGen, loadCtx, cancel
}

// current reports whether gen is still the latest load. Callers hold mu.
func (c *Controller) current(gen uint64) bool {
	if gen != c.loadGen {
		return false
	}
	c.cancelLoad = nil
	return true
}

// LoadBaseline fetches and seeds a baseline. A second call before the first
// resolves cancels the first; a superseded response is discarded with
// ErrSuperseded. On fetch failure the matrix keeps its defaults.
func (c *Controller) LoadBaseline(ctx context.Context, fetcher BaselineFetcher) (int, error) {
	gen, loadCtx, cancel := c.beginLoad(ctx)
	defer cancel()

	raw, err := fetcher.FetchBaseline(loadCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(gen) {
		return 0, ErrSuperseded
	}
	if err != nil {
		c.logger.Warn("baseline fetch failed, keeping defaults",
			zap.String("op", "planner.LoadBaseline"),
			zap.Error(err),
		)
		return 0, err
	}
	return c.seedLocked(raw), nil
}

// Bootstrap fetches the office configuration and the baseline concurrently,
// then installs the offices and seeds the matrix. The offices are required;
// when only the baseline fails the offices are still installed, the matrix
// keeps its defaults and the returned error wraps ErrBaselineUnavailable.
// It shares LoadBaseline's last-response-wins rule.
func (c *Controller) Bootstrap(ctx context.Context, backend Backend) error {
	gen, loadCtx, cancel := c.beginLoad(ctx)
	defer cancel()

	var (
		list        []offices.Office
		raw         []byte
		baselineErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		list, err = backend.FetchOffices(loadCtx)
		return err
	})
	g.Go(func() error {
		raw, baselineErr = backend.FetchBaseline(loadCtx)
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(gen) {
		return ErrSuperseded
	}
	if err != nil {
		c.logger.Warn("office configuration fetch failed",
			zap.String("op", "planner.Bootstrap"),
			zap.Error(err),
		)
		return err
	}
	c.offices = list
	if baselineErr != nil {
		c.logger.Warn("baseline fetch failed, keeping defaults",
			zap.String("op", "planner.Bootstrap"),
			zap.Int("offices", len(list)),
			zap.Error(baselineErr),
		)
		return fmt.Errorf("%w: %w", ErrBaselineUnavailable, baselineErr)
	}
	seeded := c.seedLocked(raw)
	c.logger.Info("session bootstrapped",
		zap.String("op", "planner.Bootstrap"),
		zap.Int("offices", len(list)),
		zap.Int("seeded", seeded),
	)
	return nil
}
