package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memohai/websearch-mcp/internal/config"
	"github.com/memohai/websearch-mcp/internal/version"
)

type serveFlags struct {
	configPath string
	transport  string
	addr       string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &serveFlags{}
	root := &cobra.Command{
		Use:           "websearch-mcp",
		Short:         "MCP server exposing web_search and get_strategy tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv("CONFIG_PATH"), "path to the TOML config file")
	root.Flags().StringVar(&flags.transport, "transport", "", "transport to serve on: stdio or http")
	root.Flags().StringVar(&flags.addr, "addr", "", "listen address for the http transport")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetInfo())
		},
	})
	return root
}

// loadConfig layers explicitly set flags over the file and environment.
func loadConfig(cmd *cobra.Command, flags *serveFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("transport") {
		cfg.Server.Transport = flags.transport
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = flags.addr
	}
	cfg, err = cfg.Normalize()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
