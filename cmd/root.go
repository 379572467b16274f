package cmd

import (
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wrtprov",
	Short: "Declarative provisioning for OpenWrt routers",
	Long: `wrtprov reconciles a router against a declared manifest: packages to be
installed (with download and forced-install fallbacks), amneziawg network
interfaces, firewall zones and forwardings.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Status lines go to stderr so captured stdout stays clean.
	pterm.SetDefaultOutput(os.Stderr)

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	rootCmd.PersistentFlags().StringP("config", "c", "wrtprov.yaml", "manifest file path")
}
