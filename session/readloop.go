package session

import (
	"context"
	"log/slog"
	"time"

	"termcanvas/config"
)

type LoopOptions struct {
	BufSize  int
	Interval time.Duration
	Logger   *slog.Logger
}

// ReadLoop drains the shell's output into the session until ctx is done or
// the shell has exited. After every successful read the engine is fed and
// a fresh snapshot is published to store.
//
// A failed read is skipped and retried on the next iteration. Once the
// shell has exited a failed read ends the loop with ErrSessionEnded.
func ReadLoop(ctx context.Context, s *Session, store *Store, opts LoopOptions) error {
	if opts.BufSize <= 0 {
		opts.BufSize = config.DefaultReadBufSize
	}
	if opts.Interval <= 0 {
		opts.Interval = config.DefaultReadInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	r, err := s.AcquireReader()
	if err != nil {
		return err
	}
	defer r.Close()
	// Closing the reader unblocks a pending Read on shutdown.
	stop := context.AfterFunc(ctx, func() { r.Close() })
	defer stop()

	buf := make([]byte, opts.BufSize)
	pause := time.NewTimer(opts.Interval)
	defer pause.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			s.Feed(buf[:n])
			store.Publish(s.Snapshot())
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			select {
			case <-s.Done():
				opts.Logger.Debug("read loop finished", "error", err)
				return ErrSessionEnded
			default:
			}
			opts.Logger.Debug("pty read failed", "error", err)
		}

		pause.Reset(opts.Interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pause.C:
		}
	}
}
