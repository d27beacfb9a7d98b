package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tridentos/bosun/internal/config"
	"github.com/tridentos/bosun/internal/logging"
	"github.com/tridentos/bosun/internal/registry"
	"github.com/tridentos/bosun/internal/session"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Inspect and attach to supervised services",
	Long:  `Commands for listing the service fleet and attaching to a service's session.`,
}

var servicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all services and their session state",
	RunE:  runServicesList,
}

var servicesAttachCmd = &cobra.Command{
	Use:   "attach <name>",
	Short: "Attach to a service's session",
	Long: `Attach the current terminal to the named service's tmux session.
Detach with the usual tmux prefix (C-b d); the service keeps running.`,
	Args: cobra.ExactArgs(1),
	RunE: runServicesAttach,
}

func init() {
	rootCmd.AddCommand(servicesCmd)
	servicesCmd.AddCommand(servicesListCmd)
	servicesCmd.AddCommand(servicesAttachCmd)
}

// fleetManager builds a session manager from the loaded config.
func fleetManager(cfg *config.Config) *session.Manager {
	return session.NewManagerWithSocket(cfg.Session.Socket, session.Options{
		Width:        cfg.Session.Width,
		Height:       cfg.Session.Height,
		HistoryLimit: cfg.Session.HistoryLimit,
	}, logging.NopLogger())
}

func runServicesList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	reg, err := registry.Load(cfg.Services.ServiceSpecs())
	if err != nil {
		return err
	}

	mgr := fleetManager(cfg)
	ctx := cmd.Context()

	for _, spec := range reg.All() {
		var state string
		if mgr.Exists(ctx, spec.Name) {
			switch mgr.State(ctx, spec.Name) {
			case session.StateRunning:
				state = okStyle.Render("running")
			case session.StateDetached:
				state = okStyle.Render("detached")
			default:
				state = deadStyle.Render("dead")
			}
		} else {
			state = warnStyle.Render("absent")
		}

		fmt.Printf("%-10s %-16s %s  %s\n",
			spec.Tier.String(),
			nameStyle.Render(spec.Name),
			state,
			commandStyle.Render(spec.Command))
	}

	return nil
}

func runServicesAttach(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	name := args[0]
	reg, err := registry.Load(cfg.Services.ServiceSpecs())
	if err != nil {
		return err
	}
	if _, ok := reg.Lookup(name); !ok {
		return fmt.Errorf("unknown service %q", name)
	}

	mgr := fleetManager(cfg)
	if !mgr.Exists(cmd.Context(), name) {
		return fmt.Errorf("service %q has no session; is the fleet up?", name)
	}

	attach := session.CommandWithSocket(cfg.Session.Socket, "attach", "-t", name)
	attach.Stdin = os.Stdin
	attach.Stdout = os.Stdout
	attach.Stderr = os.Stderr
	return attach.Run()
}
