package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/melih-ucgun/wrtprov/internal/config"
	"github.com/melih-ucgun/wrtprov/internal/prompt"
	"github.com/melih-ucgun/wrtprov/internal/reconcile"
)

var planCmd = &cobra.Command{
	Use:   "plan [manifest]",
	Short: "Preview changes without applying them",
	Long:  `Calculates the difference between the declared manifest and the current router state. Read-only.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := rootCmd.PersistentFlags().GetString("config")
		if len(args) > 0 {
			configPath = args[0]
		}
		hostName, _ := cmd.Flags().GetString("host")

		pterm.DefaultHeader.Println("wrtprov Plan: Dry Run")
		spinner, _ := pterm.DefaultSpinner.Start("Loading manifest & context...")

		m, err := config.Load(configPath)
		if err != nil {
			spinner.Fail("Failed to load manifest: " + err.Error())
			os.Exit(1)
		}

		ctx, err := connect(m, hostName, true)
		if err != nil {
			spinner.Fail(err.Error())
			os.Exit(1)
		}
		defer ctx.Transport.Close()

		// Conflicts are not interactive in plan mode; Defaults resolves
		// them to Skip so nothing blocks a scripted preview.
		rec, err := buildReconciler(ctx, prompt.NewDefaults())
		if err != nil {
			spinner.Fail(err.Error())
			os.Exit(1)
		}

		specs, skipped, err := m.Specs(ctx)
		if err != nil {
			spinner.Fail(err.Error())
			os.Exit(1)
		}
		spinner.Success("Plan calculated")
		pterm.Println()

		changes := 0
		for _, spec := range specs {
			present, perr := rec.Exists(ctx, spec)
			if perr != nil {
				pterm.Error.Printf("  ? %s %q check failed: %v\n", spec.Kind, spec.Name, perr)
				continue
			}
			if present {
				continue
			}
			changes++
			verb := "will be created"
			if spec.Kind == reconcile.KindPackage {
				verb = "will be installed"
			}
			pterm.Printf("  %s %s %s %q\n",
				pterm.FgGreen.Sprint("+"),
				pterm.Bold.Sprint(string(spec.Kind)),
				pterm.FgGreen.Sprint(verb),
				spec.Name)
		}

		for _, name := range skipped {
			pterm.Info.Printf("  - %s skipped, condition not met\n", name)
		}

		if changes == 0 {
			pterm.Info.Println("No changes detected. Router is in sync.")
			return
		}

		pterm.Println()
		pterm.DefaultSection.Println(fmt.Sprintf("Plan: %d to add/change.", changes))
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringP("host", "H", "localhost", "target router (host name from the manifest)")
}
