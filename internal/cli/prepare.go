package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/aretw0/tiller"
	"github.com/aretw0/tiller/internal/presentation/tui"
	httpadapter "github.com/aretw0/tiller/pkg/adapters/http"
	redisadapter "github.com/aretw0/tiller/pkg/adapters/redis"
	"github.com/aretw0/tiller/pkg/adapters/ssh"
	"github.com/aretw0/tiller/pkg/domain"
	"github.com/aretw0/tiller/pkg/observability"
	"github.com/aretw0/tiller/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
)

// PrepareOptions carries the flag values of the prepare command.
type PrepareOptions struct {
	Inventory   string
	Spec        string
	Workers     int
	LogLevel    string
	Quiet       bool
	Report      bool
	ServeAddr   string
	RedisAddr   string
	SSHUser     string
	SSHKeyPath  string
	SSHPassword string
}

// RunPrepare wires the adapters and runs one preparation pass.
func RunPrepare(opts PrepareOptions) error {
	logger := createLogger(opts.LogLevel, opts.Quiet)
	sc := NewSignalContext(context.Background())
	defer sc.Cancel()

	cfg := ssh.Config{
		User:     opts.SSHUser,
		Password: opts.SSHPassword,
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("TILLER_SSH_PASSWORD")
	}
	if opts.SSHKeyPath != "" {
		key, err := os.ReadFile(opts.SSHKeyPath)
		if err != nil {
			return fmt.Errorf("failed to read private key: %w", err)
		}
		cfg.PrivateKey = string(key)
	}

	runner := ssh.NewRunner(cfg, ssh.WithLogger(logger))

	reg := registry.New()
	reg.Register("binary", ssh.NewBinaryStrategy(cfg))

	rec := NewRecorder()
	hooks := rec.Hooks()

	engineOpts := []tiller.Option{
		tiller.WithTaskRunner(runner),
		tiller.WithRegistry(reg),
		tiller.WithLogger(logger),
	}
	if opts.Workers > 0 {
		engineOpts = append(engineOpts, tiller.WithInstallWorkers(opts.Workers))
	}
	if opts.RedisAddr != "" {
		store := redisadapter.New(opts.RedisAddr, os.Getenv("TILLER_REDIS_PASSWORD"), 0)
		engineOpts = append(engineOpts,
			tiller.WithFeatureStore(store),
			tiller.WithFactStore(store),
		)
	}

	var srv *http.Server
	if opts.ServeAddr != "" {
		promReg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(promReg)
		hooks = mergeHooks(hooks, metrics.Hooks())

		srv = &http.Server{
			Addr:    opts.ServeAddr,
			Handler: httpadapter.NewHandler(rec, promReg),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("ops server stopped", "err", err)
			}
		}()
		defer srv.Close()
	}
	engineOpts = append(engineOpts, tiller.WithLifecycleHooks(hooks))

	engine, err := tiller.New(opts.Inventory, engineOpts...)
	if err != nil {
		return err
	}

	err = engine.Prepare(sc, opts.Spec)
	if err != nil {
		var runErr *domain.RunError
		if errors.As(err, &runErr) && !opts.Quiet {
			for _, name := range runErr.FailedTargets() {
				printSystemMessage("Target '%s' failed during %s.", name, runErr.Phase)
			}
		}
	}

	if opts.Report && !opts.Quiet {
		printReport(rec)
	}

	return handleExecutionError(err, sc.Signal())
}

// printReport renders the run report, through glamour on a TTY and as raw
// markdown otherwise.
func printReport(rec *Recorder) {
	md := rec.Markdown()
	if tui.IsTerminal() {
		if out, err := tui.NewRenderer()(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
