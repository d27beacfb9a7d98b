package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tridentos/bosun/internal/bootstrap"
	"github.com/tridentos/bosun/internal/config"
	"github.com/tridentos/bosun/internal/environ"
	"github.com/tridentos/bosun/internal/logging"
	"github.com/tridentos/bosun/internal/registry"
	"github.com/tridentos/bosun/internal/scheduler"
	"github.com/tridentos/bosun/internal/session"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Bootstrap the host and launch the service fleet",
	Long: `Run the full boot sequence: prepare the host environment, launch the
priority services one at a time in order, wait for them to settle, then
launch the standard services.

Bosun stays in the foreground afterwards. Stopping it does not stop the
services; their sessions are detached and durable.`,
	RunE: runUp,
}

var (
	upSettleSeconds int
	upSkipBootstrap bool
)

func init() {
	rootCmd.AddCommand(upCmd)
	upCmd.Flags().IntVar(&upSettleSeconds, "settle", -1, "override the settle delay between tiers, in seconds")
	upCmd.Flags().BoolVar(&upSkipBootstrap, "skip-bootstrap", false, "skip host preparation (re-run against an already-prepared host)")
}

// bootstrapSteps builds the standard step sequence from configured paths.
func bootstrapSteps(cfg *config.Config) []bootstrap.Step {
	hwid := bootstrap.NewHardwareIDStep(cfg.Bootstrap.ConfigDir)
	return []bootstrap.Step{
		&bootstrap.DockerSocketStep{SocketPath: cfg.Bootstrap.DockerSocket},
		hwid,
		&bootstrap.DNSLinkStep{HostPath: cfg.Bootstrap.HostResolv, LocalPath: cfg.Bootstrap.LocalResolv},
	}
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	reg, err := registry.Load(cfg.Services.ServiceSpecs())
	if err != nil {
		return err
	}

	mgr := session.NewManagerWithSocket(cfg.Session.Socket, session.Options{
		Width:        cfg.Session.Width,
		Height:       cfg.Session.Height,
		HistoryLimit: cfg.Session.HistoryLimit,
	}, logger)

	var boot scheduler.Bootstrapper
	if !upSkipBootstrap {
		boot = bootstrap.NewRunner(bootstrapSteps(cfg), logger)
	}

	settle := cfg.Scheduler.SettleDelay()
	if cmd.Flags().Changed("settle") {
		settle = time.Duration(upSettleSeconds) * time.Second
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(scheduler.Config{
		Registry:    reg,
		Sessions:    mgr,
		Publisher:   environ.NewPublisher(mgr, logger),
		Bootstrap:   boot,
		Environment: os.Environ(),
		EnvPrefix:   cfg.Env.Prefix,
		SettleDelay: settle,
		OnLaunch: func(spec registry.ServiceSpec) {
			fmt.Printf("%s %s %s\n",
				okStyle.Render("↑"),
				nameStyle.Render(spec.Name),
				commandStyle.Render(spec.Command))
		},
		Logger: logger,
	})

	if err := sched.Run(ctx); err != nil {
		return err
	}

	fmt.Printf("\n%s %d services up on socket %q\n",
		okStyle.Render("fleet ready:"), reg.Len(), cfg.Session.Socket)
	fmt.Println(commandStyle.Render("attach with: bosun services attach <name>"))

	// Stay resident: the surrounding environment expects a foreground
	// process. Services run in their own sessions and survive our exit.
	<-ctx.Done()
	logger.Info("supervisor exiting, sessions remain", "services", reg.Len())
	return nil
}
