package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/melih-ucgun/wrtprov/internal/config"
	"github.com/melih-ucgun/wrtprov/internal/core"
	"github.com/melih-ucgun/wrtprov/internal/system"
)

var autoConfirm bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter manifest for this system",
	Long:  `Scans the system and writes a wrtprov.yaml with the amneziawg package set and a tunnel interface, ready to edit and apply.`,
	Run: func(cmd *cobra.Command, args []string) {
		runInit()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&autoConfirm, "yes", "y", false, "Skip interactive prompts and save immediately")
}

func runInit() {
	pterm.DefaultHeader.Println("wrtprov Manifest Initializer")

	spinner, _ := pterm.DefaultSpinner.Start("Scanning system...")
	ctx := core.NewSystemContext(true)
	system.Detect(ctx)
	spinner.Success("System scan complete")
	pterm.Println()

	displaySystemInfo(ctx)

	ifaceName := "awg0"
	if !autoConfirm {
		ifaceName, _ = pterm.DefaultInteractiveTextInput.
			WithDefaultValue(ifaceName).
			Show("Tunnel interface name")
	}

	m := starterManifest(ifaceName)

	configPath, _ := rootCmd.PersistentFlags().GetString("config")
	if _, err := os.Stat(configPath); err == nil && !autoConfirm {
		overwrite, _ := pterm.DefaultInteractiveConfirm.
			Show("'" + configPath + "' already exists. Overwrite?")
		if !overwrite {
			pterm.Info.Println("Initialization cancelled.")
			return
		}
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		pterm.Error.Printf("Failed to render manifest: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		pterm.Error.Printf("Failed to save manifest: %v\n", err)
		os.Exit(1)
	}

	pterm.Success.Printf("Manifest written to %s\n", configPath)
	pterm.Info.Println("Review it, then run: wrtprov apply")
}

func displaySystemInfo(ctx *core.SystemContext) {
	tableData := [][]string{
		{"Distro", ctx.Distro},
		{"Release", ctx.Release},
		{"Arch", ctx.Arch},
		{"Target", ctx.Target + "/" + ctx.Subtarget},
		{"Package Manager", ctx.PkgManager},
	}
	pterm.DefaultTable.WithData(tableData).Render()
	pterm.Println()
}

// starterManifest is the baseline amneziawg setup: kernel module and tools
// from the feeds with a direct-download fallback, the LuCI protocol glue,
// and the tunnel wired into its own firewall zone.
func starterManifest(iface string) *config.Manifest {
	releaseBase := "https://github.com/amnezia-vpn/amneziawg-openwrt/releases/download"

	return &config.Manifest{
		OnFailure: "continue",
		Resources: []config.ResourceConfig{
			{
				Kind: "package",
				Name: "kmod-amneziawg",
				Sources: []config.SourceConfig{
					{Method: "repository"},
					{Method: "download", BaseURL: releaseBase},
				},
			},
			{
				Kind: "package",
				Name: "amneziawg-tools",
				Sources: []config.SourceConfig{
					{Method: "repository"},
					{Method: "download", BaseURL: releaseBase},
				},
			},
			{
				Kind: "package",
				Name: "luci-proto-amneziawg",
				When: `PkgManager == "opkg"`,
				Sources: []config.SourceConfig{
					{Method: "repository"},
					{Method: "download", BaseURL: releaseBase},
				},
			},
			{
				Kind: "interface",
				Name: iface,
				Properties: map[string]string{
					"proto":       "amneziawg",
					"private_key": "${AWG_PRIVATE_KEY}",
					"addresses":   "10.8.1.2/24",
				},
			},
			{
				Kind: "zone",
				Name: iface + "_zone",
				Properties: map[string]string{
					"name":    iface,
					"input":   "REJECT",
					"output":  "ACCEPT",
					"forward": "REJECT",
					"masq":    "1",
					"mtu_fix": "1",
					"network": iface,
				},
			},
			{
				Kind: "forwarding",
				Name: "lan_to_" + iface,
				Properties: map[string]string{
					"src":  "lan",
					"dest": iface,
				},
			},
		},
	}
}
