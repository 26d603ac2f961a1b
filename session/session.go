// Package session pairs a shell running in a pseudo-terminal with the
// terminal engine that models its screen.
package session

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"termcanvas/config"
	"termcanvas/palette"
	"termcanvas/vt"
)

var (
	// ErrSessionEnded reports that the shell has exited.
	ErrSessionEnded = errors.New("session ended")
	// ErrClosed reports use of a session after Close.
	ErrClosed = errors.New("session closed")
)

// Cell is one painted grid position at the time of a snapshot.
type Cell struct {
	Column        int
	Line          int
	Content       rune
	DisplayOffset int
	FG            color.NRGBA
	BG            color.NRGBA
}

// Frame is a snapshot of the visible grid. Frames are never modified after
// they are built.
type Frame struct {
	Cells []Cell
	Rows  int
	Cols  int
	Title string

	// Cursor position on the live screen; hidden while scrolled back.
	CursorLine    int
	CursorColumn  int
	CursorVisible bool
	DisplayOffset int

	// Seq orders snapshots of one session; a later snapshot has a larger Seq.
	Seq uint64
}

type Options struct {
	Shell   string
	Rows    int
	Cols    int
	Env     []string
	Palette *palette.Palette
	Logger  *slog.Logger
}

// Session owns the pty and the engine. All methods are safe for concurrent
// use: engine state is guarded by one lock and pty input by another, so the
// read side and the write side never contend.
type Session struct {
	mu      sync.Mutex // guards engine, rows, cols, pal, seq, replies
	engine  *vt.Engine
	rows    int
	cols    int
	pal     palette.Palette
	seq     uint64
	replies []byte // engine replies waiting to be written to the shell

	wmu sync.Mutex // serializes writes to the pty input
	pty Pty

	logger *slog.Logger
	closed atomic.Bool
	done   chan struct{}
	err    error
}

// Start spawns opts.Shell in a new pty and pairs it with an engine of the
// same size. Zero rows or cols select the default 50 × 100 geometry.
func Start(ctx context.Context, opts Options) (*Session, error) {
	if opts.Shell == "" {
		return nil, errors.New("no shell configured")
	}
	opts = withDefaults(opts)
	if err := checkSize(opts.Rows, opts.Cols); err != nil {
		return nil, err
	}
	p, err := startPty(ctx, opts.Shell, opts.Rows, opts.Cols, opts.Env)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("session started", "shell", opts.Shell, "rows", opts.Rows, "cols", opts.Cols)
	return New(p, opts), nil
}

// New pairs an already running pty with a fresh engine. opts.Shell and
// opts.Env are ignored.
func New(p Pty, opts Options) *Session {
	opts = withDefaults(opts)
	s := &Session{
		engine: vt.New(opts.Rows, opts.Cols),
		rows:   opts.Rows,
		cols:   opts.Cols,
		pal:    *opts.Palette,
		pty:    p,
		logger: opts.Logger,
		done:   make(chan struct{}),
	}
	s.engine.SetResponder(responder{s})

	go func() {
		s.err = p.Wait()
		s.logger.Info("shell exited", "error", s.err)
		close(s.done)
	}()
	return s
}

func withDefaults(opts Options) Options {
	if opts.Rows <= 0 {
		opts.Rows = config.DefaultRows
	}
	if opts.Cols <= 0 {
		opts.Cols = config.DefaultCols
	}
	if opts.Palette == nil {
		p := palette.Default()
		opts.Palette = &p
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return opts
}

// responder queues engine replies (cursor reports). The engine only writes
// while Feed holds s.mu; Feed sends the queue once the lock is released.
type responder struct{ s *Session }

func (r responder) Write(p []byte) (int, error) {
	r.s.replies = append(r.s.replies, p...)
	return len(p), nil
}

// checkSize rejects geometry the pty cannot represent.
func checkSize(rows, cols int) error {
	if rows < 1 || cols < 1 || rows > math.MaxUint16 || cols > math.MaxUint16 {
		return fmt.Errorf("invalid size %dx%d", rows, cols)
	}
	return nil
}

// Resize applies rows × cols to the pty and then the engine. If the pty
// rejects the size the engine keeps its old geometry, so both always agree.
// Resizing to the current size does nothing.
func (s *Session) Resize(rows, cols int) error {
	if err := checkSize(rows, cols); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rows == s.rows && cols == s.cols {
		return nil
	}
	if err := s.pty.Resize(rows, cols); err != nil {
		return fmt.Errorf("resize pty to %dx%d: %w", rows, cols, err)
	}
	s.engine.Resize(rows, cols)
	s.rows, s.cols = rows, cols
	s.logger.Debug("session resized", "rows", rows, "cols", cols)
	return nil
}

// Size returns the geometry shared by the pty and the engine.
func (s *Session) Size() (rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.cols
}

// Feed runs p through the engine one byte at a time. Replies the engine
// produced are written to the shell after the engine is unlocked.
func (s *Session) Feed(p []byte) {
	s.mu.Lock()
	for _, b := range p {
		s.engine.Advance(b)
	}
	replies := s.replies
	s.replies = nil
	s.mu.Unlock()

	if len(replies) > 0 {
		if err := s.write(replies); err != nil {
			s.logger.Debug("engine reply dropped", "error", err)
		}
	}
}

// WriteInput sends the UTF-8 encoding of r to the shell.
func (s *Session) WriteInput(r rune) error {
	return s.write(utf8.AppendRune(nil, r))
}

func (s *Session) write(p []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if _, err := s.pty.Write(p); err != nil {
		select {
		case <-s.done:
			return fmt.Errorf("write to shell: %w", ErrSessionEnded)
		default:
		}
		return fmt.Errorf("write to shell: %w", err)
	}
	return nil
}

// Snapshot copies the visible grid into a new frame, resolving every cell's
// colors through the current palette.
func (s *Session) Snapshot() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	f := &Frame{
		Cells: make([]Cell, 0, s.rows*s.cols),
		Rows:  s.rows,
		Cols:  s.cols,
		Title: s.engine.Title(),
		Seq:   s.seq,
	}
	f.CursorLine, f.CursorColumn = s.engine.Cursor()
	f.DisplayOffset = s.engine.DisplayOffset()
	f.CursorVisible = s.engine.CursorVisible() && f.DisplayOffset == 0
	for gc := range s.engine.Visible() {
		st := gc.Cell.Style
		fg, bg := s.pal.CellColors(st.FG, st.BG, st.Flags)
		ch := gc.Cell.Ch
		if ch == 0 || st.Flags.Has(vt.FlagHidden) {
			ch = ' '
		}
		f.Cells = append(f.Cells, Cell{
			Column:        gc.Column,
			Line:          gc.Line,
			Content:       ch,
			DisplayOffset: gc.DisplayOffset,
			FG:            fg,
			BG:            bg,
		})
	}
	return f
}

// AcquireReader returns an independent read handle on the shell's output.
// The caller owns it and must close it.
func (s *Session) AcquireReader() (io.ReadCloser, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	return s.pty.DupReader()
}

// Scroll moves the view into the scrollback by delta lines (positive is
// towards older output).
func (s *Session) Scroll(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Scroll(delta)
}

// DisplayOffset is how far the view is scrolled back from the live screen.
func (s *Session) DisplayOffset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.DisplayOffset()
}

// SetPalette changes the colors used by subsequent snapshots.
func (s *Session) SetPalette(p palette.Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pal = p
}

func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Title()
}

// Done is closed once the shell has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the shell's exit status after Done is closed.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Close terminates the shell and releases the pty.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.pty.Close()
}
