package ssh

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/aretw0/tiller/pkg/domain"
	"github.com/aretw0/tiller/pkg/registry"
	"github.com/pkg/sftp"
)

// BinaryOptions configures the binary install strategy.
type BinaryOptions struct {
	// Source is the local path of the agent binary to upload.
	Source string `mapstructure:"source"`

	// Destination is the remote install path (default /usr/local/bin/tiller-agent).
	Destination string `mapstructure:"destination"`

	// Service, when set, is restarted through systemctl after the upload.
	Service string `mapstructure:"service"`
}

// BinaryStrategy installs the agent by uploading a binary over SFTP,
// marking it executable and optionally restarting its service.
type BinaryStrategy struct {
	config Config
}

// NewBinaryStrategy creates the strategy with shared dial settings.
// Register it under "binary" to make it available to inventories.
func NewBinaryStrategy(cfg Config) *BinaryStrategy {
	return &BinaryStrategy{config: cfg.withDefaults()}
}

// ValidateOptions decodes the options so a typoed key or a missing source
// fails the target at resolution time.
func (s *BinaryStrategy) ValidateOptions(options map[string]any) error {
	var opts BinaryOptions
	if err := registry.DecodeOptions(options, &opts); err != nil {
		return err
	}
	if opts.Source == "" {
		return fmt.Errorf("binary strategy requires a source path")
	}
	return nil
}

func (s *BinaryStrategy) Install(ctx context.Context, target *domain.Target, options map[string]any) (map[string]any, error) {
	if err := s.ValidateOptions(options); err != nil {
		return nil, err
	}
	var opts BinaryOptions
	if err := registry.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if opts.Destination == "" {
		opts.Destination = "/usr/local/bin/tiller-agent"
	}

	local, err := os.Open(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("agent binary not found at %s: %w", opts.Source, err)
	}
	defer local.Close()

	stat, err := local.Stat()
	if err != nil {
		return nil, err
	}

	client, err := s.config.dial(ctx, target)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create sftp client: %w", err)
	}
	defer sftpClient.Close()

	// Upload to a staging path, then move into place atomically.
	staging := path.Join("/tmp", path.Base(opts.Destination))
	remote, err := sftpClient.Create(staging)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote file: %w", err)
	}

	written, err := remote.ReadFrom(local)
	if cerr := remote.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upload binary: %w", err)
	}
	if written != stat.Size() {
		return nil, fmt.Errorf("upload incomplete: expected %d bytes, got %d", stat.Size(), written)
	}

	install := fmt.Sprintf("mv %s %s && chmod +x %s", staging, opts.Destination, opts.Destination)
	if _, err := execute(ctx, client, install, nil); err != nil {
		return nil, fmt.Errorf("failed to install binary: %w", err)
	}

	if opts.Service != "" {
		restart := fmt.Sprintf("systemctl restart %s", opts.Service)
		if _, err := execute(ctx, client, restart, nil); err != nil {
			return nil, fmt.Errorf("failed to restart %s: %w", opts.Service, err)
		}
	}

	return map[string]any{
		"installed":   true,
		"strategy":    "binary",
		"destination": opts.Destination,
		"bytes":       written,
	}, nil
}
