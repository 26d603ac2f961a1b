// Package resize turns window pixel geometry into terminal rows and
// columns and applies it to a session on a fixed cadence.
package resize

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"termcanvas/config"
	"termcanvas/fontmetrics"
)

// Applier receives the computed grid size. *session.Session satisfies it.
type Applier interface {
	Resize(rows, cols int) error
}

// Geometry is a drawing area in pixels.
type Geometry struct {
	Width  float64
	Height float64
}

// CellGeometry converts a pixel area to rows and columns. Columns are
// counted in units of 1/columnFactor cell.
func CellGeometry(g Geometry, m fontmetrics.Metrics, columnFactor int) (rows, cols int) {
	if m.CellWidth <= 0 || m.CellHeight <= 0 || g.Width <= 0 || g.Height <= 0 {
		return 0, 0
	}
	rows = int(math.Round(g.Height / m.CellHeight))
	cols = columnFactor * int(math.Round(g.Width/m.CellWidth))
	return rows, cols
}

type Options struct {
	Interval     time.Duration
	ColumnFactor int
	Initial      Geometry
	Logger       *slog.Logger
}

// Coordinator holds the latest reported geometry and applies it every
// Interval. Reports never postpone the next application: the timer runs on
// its own cadence, and the same geometry is re-applied each tick.
type Coordinator struct {
	target  Applier
	metrics fontmetrics.Metrics
	opts    Options

	updates chan Geometry

	mu   sync.Mutex
	geom Geometry
}

func New(target Applier, m fontmetrics.Metrics, opts Options) *Coordinator {
	if opts.Interval <= 0 {
		opts.Interval = config.DefaultResizeEvery
	}
	if opts.ColumnFactor <= 0 {
		opts.ColumnFactor = config.DefaultColumnFactor
	}
	if opts.Initial == (Geometry{}) {
		opts.Initial = Geometry{Width: config.DefaultWindowWidth, Height: config.DefaultWindowHeight}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{
		target:  target,
		metrics: m,
		opts:    opts,
		updates: make(chan Geometry, 1),
		geom:    opts.Initial,
	}
}

// Report queues a new pixel geometry. It never blocks; an unconsumed older
// report is replaced.
func (c *Coordinator) Report(width, height float64) {
	g := Geometry{Width: width, Height: height}
	for {
		select {
		case c.updates <- g:
			return
		default:
		}
		select {
		case <-c.updates:
		default:
		}
	}
}

// Geometry returns the geometry the coordinator currently holds.
func (c *Coordinator) Geometry() Geometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.geom
}

// SetMetrics changes the cell size used from the next tick on.
func (c *Coordinator) SetMetrics(m fontmetrics.Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

// Run consumes reports and applies the held geometry every tick until ctx
// is done. Only one Run may be active.
func (c *Coordinator) Run(ctx context.Context) error {
	timer := time.NewTimer(c.opts.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case g := <-c.updates:
			c.mu.Lock()
			c.geom = g
			c.mu.Unlock()
		case <-timer.C:
			c.apply()
			timer.Reset(c.opts.Interval)
		}
	}
}

func (c *Coordinator) apply() {
	c.mu.Lock()
	g, m := c.geom, c.metrics
	c.mu.Unlock()

	rows, cols := CellGeometry(g, m, c.opts.ColumnFactor)
	if rows < 1 || cols < 1 {
		c.opts.Logger.Debug("skipping empty geometry", "width", g.Width, "height", g.Height)
		return
	}
	if err := c.target.Resize(rows, cols); err != nil {
		c.opts.Logger.Warn("resize failed", "rows", rows, "cols", cols, "error", err)
	}
}
