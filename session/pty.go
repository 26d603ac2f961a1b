package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// Pty is the pseudo-terminal a session drives. Write feeds the shell's
// input; DupReader hands out an independent handle on its output.
type Pty interface {
	io.Writer
	Resize(rows, cols int) error
	DupReader() (io.ReadCloser, error)
	// Wait blocks until the child process exits.
	Wait() error
	Close() error
}

type ptyDevice struct {
	f   *os.File
	cmd *exec.Cmd
}

// startPty spawns shell attached to a new pty of the given size.
func startPty(ctx context.Context, shell string, rows, cols int, env []string) (*ptyDevice, error) {
	cmd := exec.CommandContext(ctx, shell)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)
	cmd.Env = append(cmd.Env, env...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", shell, err)
	}
	return &ptyDevice{f: ptmx, cmd: cmd}, nil
}

func (d *ptyDevice) Write(p []byte) (int, error) { return d.f.Write(p) }

func (d *ptyDevice) Resize(rows, cols int) error {
	return pty.Setsize(d.f, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

// DupReader duplicates the master descriptor. The copy shares the open file
// description, so reads on it drain the same output stream.
func (d *ptyDevice) DupReader() (io.ReadCloser, error) {
	raw, err := d.f.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("pty descriptor: %w", err)
	}
	fd := -1
	var dupErr error
	if err := raw.Control(func(ptr uintptr) {
		fd, dupErr = unix.FcntlInt(ptr, unix.F_DUPFD_CLOEXEC, 0)
	}); err != nil {
		return nil, fmt.Errorf("pty descriptor: %w", err)
	}
	if dupErr != nil {
		return nil, fmt.Errorf("dup pty: %w", dupErr)
	}
	return os.NewFile(uintptr(fd), d.f.Name()), nil
}

func (d *ptyDevice) Wait() error { return d.cmd.Wait() }

func (d *ptyDevice) Close() error {
	if d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	return d.f.Close()
}
