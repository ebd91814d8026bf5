package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/selfhost-kit/stackctl/internal/compose"
	"github.com/selfhost-kit/stackctl/internal/logging"
	"github.com/selfhost-kit/stackctl/internal/stacks"
	"github.com/selfhost-kit/stackctl/internal/sysd"
)

// newDestroyCommand creates the "destroy" subcommand that removes an installed stack.
func newDestroyCommand(opts *Options) *cobra.Command {
	var (
		dir   string
		purge bool
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "destroy <stack>",
		Short: "Stop and remove an installed stack",
		Long:  "destroy stops the stack's containers and removes them. With --purge the named volumes and the work directory are deleted as well; destroying persisted data always asks for confirmation unless --yes is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := LoggerFromContext(cmd.Context())

			stack, err := stacks.Lookup(args[0])
			if err != nil {
				return err
			}

			var envCfg installEnv
			if err := parseEnv(&envCfg); err != nil {
				return err
			}
			if !cmd.Flags().Changed("yes") && envCfg.AssumeYes {
				yes = true
			}

			workDir := dir
			if workDir == "" {
				workDir = filepath.Join(opts.BaseDir, stack.DirName)
			}
			if _, err := os.Stat(filepath.Join(workDir, compose.FileName)); err != nil {
				return fmt.Errorf("no installed stack found in %q: %w", workDir, err)
			}

			client := compose.NewClient(workDir)
			client.Output = logging.NewWriter(logger)

			services, err := client.DefinedServices()
			if err != nil {
				return err
			}
			logger.Info("removing stack", "stack", stack.Name, "dir", workDir, "services", strings.Join(services, ", "))

			if purge && !yes {
				ok, err := confirmPurge(stack.Name)
				if err != nil {
					return err
				}
				if !ok {
					logger.Info("destroy cancelled")
					return nil
				}
			}

			ctx, cancel := cmdTimeout(cmd, 10*time.Minute)
			defer cancel()

			if err := client.Down(ctx, purge); err != nil {
				return err
			}

			// A boot unit is only present when the install created one.
			units := sysd.NewManager()
			unitName := "stackctl-" + stack.Name
			if _, err := os.Stat(units.UnitPath(unitName)); err == nil {
				if err := units.Remove(ctx, unitName); err != nil {
					return err
				}
				logger.Info("boot unit removed", "unit", unitName)
			}

			if purge {
				if err := os.RemoveAll(workDir); err != nil {
					return fmt.Errorf("remove work directory %q: %w", workDir, err)
				}
				logger.Info("work directory removed", "dir", workDir)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Work directory of the stack (defaults under --base-dir)")
	cmd.Flags().BoolVar(&purge, "purge", false, "Also delete named volumes and the work directory")
	cmd.Flags().BoolVar(&yes, "yes", false, "Do not prompt for confirmation")

	return cmd
}

// confirmPurge asks the operator before persisted data is destroyed.
func confirmPurge(stack string) (bool, error) {
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete all data of %q?", stack)).
			Description("Named volumes and the work directory will be removed. This cannot be undone.").
			Value(&ok),
	)).Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
