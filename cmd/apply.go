package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/melih-ucgun/wrtprov/internal/config"
	"github.com/melih-ucgun/wrtprov/internal/prompt"
	"github.com/melih-ucgun/wrtprov/internal/reconcile"
	"github.com/melih-ucgun/wrtprov/internal/state"
)

var applyCmd = &cobra.Command{
	Use:   "apply [manifest]",
	Short: "Reconcile the router against the manifest",
	Long: `Processes every declared resource in order: existence check, conflict
resolution for colliding interfaces and zones, then acquisition or creation.
Already-satisfied resources are left untouched.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := rootCmd.PersistentFlags().GetString("config")
		if len(args) > 0 {
			configPath = args[0]
		}
		hostName, _ := cmd.Flags().GetString("host")
		nonInteractive, _ := cmd.Flags().GetBool("non-interactive")

		spinner, _ := pterm.DefaultSpinner.Start("Loading manifest...")
		m, err := config.Load(configPath)
		if err != nil {
			spinner.Fail("Failed to load manifest: " + err.Error())
			os.Exit(1)
		}
		spinner.UpdateText("Detecting target system...")

		ctx, err := connect(m, hostName, false)
		if err != nil {
			spinner.Fail(err.Error())
			os.Exit(1)
		}
		defer ctx.Transport.Close()

		var prompter reconcile.Prompter = prompt.NewInteractive()
		if nonInteractive {
			prompter = prompt.NewDefaults()
		}

		rec, err := buildReconciler(ctx, prompter)
		if err != nil {
			spinner.Fail(err.Error())
			os.Exit(1)
		}

		specs, skipped, err := m.Specs(ctx)
		if err != nil {
			spinner.Fail(err.Error())
			os.Exit(1)
		}
		spinner.Success(fmt.Sprintf("Detected %s %s (%s)", ctx.Distro, ctx.Release, ctx.Arch))

		for _, name := range skipped {
			pterm.Info.Printf("[%s] skipped, condition not met\n", name)
		}

		runner := &reconcile.Runner{
			Reconciler: rec,
			Policy:     m.Policy(),
			OnOutcome:  printOutcome,
		}

		rep, err := runner.Run(ctx, specs)

		status := "success"
		switch {
		case reconcile.IsAborted(err):
			status = "aborted"
		case err != nil || rep.Failed():
			status = "failed"
		}

		hm := state.NewHistoryManager("")
		if herr := hm.Record(hostOrLocal(hostName), status, rep); herr != nil {
			pterm.Warning.Printf("Failed to record history: %v\n", herr)
		}

		if err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(1)
		}

		pterm.Println()
		pterm.DefaultSection.Printf("Done: %d installed, %d present, %d skipped, %d failed.\n",
			rep.Count(reconcile.StateInstalled),
			rep.Count(reconcile.StateAlreadyPresent),
			rep.Count(reconcile.StateSkipped)+len(skipped),
			rep.Count(reconcile.StateFailed))

		if rep.Failed() {
			os.Exit(1)
		}
	},
}

func printOutcome(o reconcile.Outcome) {
	switch o.FinalState {
	case reconcile.StateAlreadyPresent:
		pterm.Info.Printf("[%s] already present\n", o.Resource)
	case reconcile.StateInstalled:
		if o.MethodUsed != "" {
			pterm.Success.Printf("[%s] installed via %s\n", o.Resource, o.MethodUsed)
		} else {
			pterm.Success.Printf("[%s] created\n", o.Resource)
		}
	case reconcile.StateSkipped:
		pterm.Warning.Printf("[%s] skipped\n", o.Resource)
	case reconcile.StateFailed:
		pterm.Error.Printf("[%s] failed: %s\n", o.Resource, o.ErrorDetail)
	}
}

func hostOrLocal(hostName string) string {
	if hostName == "" {
		return "localhost"
	}
	return hostName
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringP("host", "H", "localhost", "target router (host name from the manifest)")
	applyCmd.Flags().BoolP("non-interactive", "n", false, "answer prompts with defaults (skip conflicts, decline forced installs)")
}
