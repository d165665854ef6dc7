package core

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultHelper is the privilege-elevation helper used when none is configured.
const DefaultHelper = "pkexec"

// privilegedTimeout bounds how long an elevated command may run, including the
// time the user spends in the authentication dialog.
const privilegedTimeout = 10 * time.Minute

// ErrAuthCancelled is returned when the user dismisses the authentication
// prompt or is not authorized to elevate.
var ErrAuthCancelled = errors.New("authentication cancelled or not authorized")

// Runner executes a command with elevated privilege. Implementations block
// until the command exits and return nil only on a zero exit status.
type Runner interface {
	Run(ctx context.Context, argv ...string) error
}

// PrivilegedRunner runs commands through an external elevation helper such
// as pkexec or sudo. Standard output and error of the child are discarded.
type PrivilegedRunner struct {
	Helper string
	Logger *zap.Logger
}

// NewPrivilegedRunner returns a runner using helper, or DefaultHelper when
// helper is empty.
func NewPrivilegedRunner(helper string, logger *zap.Logger) *PrivilegedRunner {
	if helper == "" {
		helper = DefaultHelper
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrivilegedRunner{Helper: helper, Logger: logger}
}

// Run executes argv under the elevation helper.
func (r *PrivilegedRunner) Run(ctx context.Context, argv ...string) error {
	if len(argv) == 0 {
		return errors.New("privileged run: empty command")
	}

	ctx, cancel := context.WithTimeout(ctx, privilegedTimeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, r.Helper, argv...)
	// Stdout/Stderr left nil: the child writes to the null device.
	err := cmd.Run()

	r.Logger.Info("privileged command finished",
		zap.String("helper", r.Helper),
		zap.String("command", strings.Join(argv, " ")),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return handleExitError(r.Helper, err)
	}
	return nil
}

// handleExitError translates helper exit codes into readable errors.
func handleExitError(helper string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %s", helper, privilegedTimeout)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("privilege helper %q not found: %w", helper, err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		switch code := exitErr.ExitCode(); code {
		case 126, 127:
			// pkexec: 126 = dialog dismissed, 127 = not authorized.
			return fmt.Errorf("%s exited with code %d: %w", helper, code, ErrAuthCancelled)
		default:
			return fmt.Errorf("%s exited with code %d", helper, code)
		}
	}

	return fmt.Errorf("%s: %w", helper, err)
}
