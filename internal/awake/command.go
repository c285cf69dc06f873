package awake

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync/atomic"
)

// ErrUnsupported is returned when no keep-awake helper exists for the platform.
var ErrUnsupported = errors.New("keep-awake not supported on this platform")

// CommandInhibitor holds the display awake by running a platform helper for
// as long as the lock is held.
type CommandInhibitor struct {
	// Args overrides the helper command line. Empty means platform default.
	Args []string
}

// DefaultArgs returns the helper command line for goos, or nil.
func DefaultArgs(goos string) []string {
	switch goos {
	case "linux":
		return []string{
			"systemd-inhibit",
			"--what=idle:sleep",
			"--who=studyplan",
			"--why=study timer running",
			"--mode=block",
			"sleep", "infinity",
		}
	case "darwin":
		return []string{"caffeinate", "-d", "-i"}
	default:
		return nil
	}
}

func (c CommandInhibitor) Acquire() (Lock, error) {
	args := c.Args
	if len(args) == 0 {
		args = DefaultArgs(runtime.GOOS)
	}
	if len(args) == 0 {
		return nil, ErrUnsupported
	}
	path, err := exec.LookPath(args[0])
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", args[0], err)
	}

	cmd := exec.Command(path, args[1:]...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", args[0], err)
	}

	l := &commandLock{cmd: cmd, done: make(chan struct{})}
	l.held.Store(true)
	go func() {
		cmd.Wait()
		l.held.Store(false)
		close(l.done)
	}()
	return l, nil
}

type commandLock struct {
	cmd      *exec.Cmd
	held     atomic.Bool
	released atomic.Bool
	done     chan struct{}
}

func (l *commandLock) Held() bool {
	return l.held.Load()
}

func (l *commandLock) Release() error {
	if !l.released.CompareAndSwap(false, true) {
		return nil
	}
	if !l.held.Load() {
		return nil
	}
	if err := l.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("stop keep-awake helper: %w", err)
	}
	<-l.done
	return nil
}
