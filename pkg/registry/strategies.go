package registry

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/tiller/pkg/domain"
)

// noopInstall marks a target as installed without doing any work.
// Meant for images that ship the agent pre-baked but don't declare it.
func noopInstall(ctx context.Context, target *domain.Target, options map[string]any) (map[string]any, error) {
	return map[string]any{"installed": true, "strategy": "noop"}, nil
}

// ScriptOptions configures the script strategy.
type ScriptOptions struct {
	// Command is the provisioning command to run. The placeholder
	// {{target}} is replaced with the target name before execution.
	Command string `mapstructure:"command"`

	// Shell overrides the shell used to run the command (default "sh").
	Shell string `mapstructure:"shell"`
}

// ScriptStrategy installs the agent by running a host-side provisioning
// command (typically a wrapper invoking an external installer against the
// target). The command's stdout is returned under "output".
type ScriptStrategy struct{}

// ValidateOptions decodes the options so a typoed key or a missing command
// fails the target at resolution time.
func (s *ScriptStrategy) ValidateOptions(options map[string]any) error {
	var opts ScriptOptions
	if err := DecodeOptions(options, &opts); err != nil {
		return err
	}
	if opts.Command == "" {
		return fmt.Errorf("script strategy requires a command")
	}
	return nil
}

func (s *ScriptStrategy) Install(ctx context.Context, target *domain.Target, options map[string]any) (map[string]any, error) {
	if err := s.ValidateOptions(options); err != nil {
		return nil, err
	}
	var opts ScriptOptions
	if err := DecodeOptions(options, &opts); err != nil {
		return nil, err
	}

	shell := opts.Shell
	if shell == "" {
		shell = "sh"
	}
	command := strings.ReplaceAll(opts.Command, "{{target}}", target.Name)

	start := time.Now()
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("install script failed for %s: %s", target.Name, msg)
	}

	return map[string]any{
		"installed":   true,
		"strategy":    "script",
		"output":      strings.TrimSpace(stdout.String()),
		"duration_ms": time.Since(start).Milliseconds(),
	}, nil
}
