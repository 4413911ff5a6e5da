// Package tailer follows a growing text file and delivers its lines on a
// channel.
package tailer

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/nxadm/tail"

	"github.com/grokkit/grokkit/internal/safefile"
)

// Config controls how a file is followed.
type Config struct {
	// FromStart reads the existing content before following.
	// When false, only lines appended after New are delivered.
	FromStart bool

	// Poll uses stat polling instead of filesystem notifications.
	Poll bool

	// ReOpen reopens the file when it is truncated, rotated or recreated.
	ReOpen bool
}

// DefaultConfig returns a Config that follows from the end of the file and
// survives rotation.
func DefaultConfig() Config {
	return Config{ReOpen: true}
}

// Tailer follows a single file. Lines are delivered without the trailing
// newline or carriage return.
type Tailer struct {
	t      *tail.Tail
	cancel context.CancelFunc
	lines  chan string
	errs   chan error
	done   chan struct{}

	stopOnce sync.Once
	stopErr  error
}

// New starts following path. The file must exist.
// Following stops when ctx is done or Stop is called; both close Lines and
// Errors.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	var loc *tail.SeekInfo
	if !cfg.FromStart {
		loc = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    cfg.ReOpen,
		Poll:      cfg.Poll,
		Location:  loc,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, safefile.SanitizePathError(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	tr := &Tailer{
		t:      t,
		cancel: cancel,
		lines:  make(chan string),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go tr.run(ctx)
	return tr, nil
}

// Lines returns the channel of followed lines.
func (tr *Tailer) Lines() <-chan string {
	return tr.lines
}

// Errors returns the channel of read errors.
func (tr *Tailer) Errors() <-chan error {
	return tr.errs
}

// Stop stops following and releases the file. It is safe to call more than once.
func (tr *Tailer) Stop() error {
	tr.stopOnce.Do(func() {
		tr.cancel()
		tr.stopErr = tr.t.Stop()
		<-tr.done
		tr.t.Cleanup()
	})
	return tr.stopErr
}

func (tr *Tailer) run(ctx context.Context) {
	defer close(tr.done)
	defer close(tr.errs)
	defer close(tr.lines)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-tr.t.Lines:
			if !ok {
				if err := tr.t.Err(); err != nil {
					tr.sendError(ctx, safefile.SanitizePathError(err))
				}
				return
			}
			if line.Err != nil {
				tr.sendError(ctx, safefile.SanitizePathError(line.Err))
				continue
			}
			select {
			case tr.lines <- strings.TrimRight(line.Text, "\r"):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (tr *Tailer) sendError(ctx context.Context, err error) {
	select {
	case tr.errs <- err:
	case <-ctx.Done():
	}
}
