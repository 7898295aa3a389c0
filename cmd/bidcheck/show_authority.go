package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cursive-id/browserid"
	"github.com/spf13/cobra"
)

func newShowAuthorityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-authority <host>",
		Short: "Resolve and print an issuer host's authority record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := browserid.LoadConfig()
			if err != nil {
				return err
			}
			ctx, err := browserid.NewContext(cfg)
			if err != nil {
				return err
			}
			defer ctx.Close()

			now := time.Now()
			entry, err := ctx.Resolver().Resolve(context.Background(), args[0], now)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"host":      entry.Host,
				"delegate":  entry.Delegate,
				"expires":   entry.Expires,
				"lastFetch": entry.LastFetch,
			})
		},
	}

	return cmd
}
