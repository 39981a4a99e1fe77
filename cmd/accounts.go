package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/bnema/synthelix-nodes/internal/adapters/synthelix"
	"github.com/bnema/synthelix-nodes/internal/application"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAccountsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List configured wallets with their derived address and proxy",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, app *app, _ []string) error {
			roster, err := application.LoadRoster(cmd.Context(), app.credentials, app.wallets, zap.NewNop())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, member := range roster.Members {
				proxy := "direct"
				if member.Account.ProxyURL != "" {
					proxy = synthelix.RedactProxy(member.Account.ProxyURL)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", member.Account.Label, member.Account.Address, proxy)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "referral code: %s\n", roster.ReferralCode)
			return err
		}),
	}
}
