package cmd

import (
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "synthelix",
		Short:         "Synthelix node bot: keep compute nodes running across many wallets",
		Long:          "synthelix signs in every configured wallet, completes onboarding tasks, claims daily rewards and restarts compute nodes before their run expires.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default: ./synthelix.toml or $HOME/.config/synthelix/synthelix.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(opts),
		newAccountsCmd(opts),
		newStatusCmd(opts),
	)

	return rootCmd
}
