package main

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/cursive-id/browserid"
	"github.com/spf13/cobra"
)

func newMintReauthCommand() *cobra.Command {
	var (
		audience        string
		channelBindings string
		subjectHint     string
	)

	cmd := &cobra.Command{
		Use:   "mint-reauth",
		Short: "Mint a fast-reauthentication assertion from a stored ticket",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cb []byte
			if channelBindings != "" {
				var err error
				cb, err = base64.RawURLEncoding.DecodeString(channelBindings)
				if err != nil {
					return fmt.Errorf("decoding --channel-bindings: %w", err)
				}
			}

			cfg, err := browserid.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.TicketCachePath == "" {
				return fmt.Errorf("BID_TICKET_CACHE_PATH must be set so mint-reauth can read tickets persisted by an earlier process")
			}

			ctx, err := browserid.NewContext(cfg)
			if err != nil {
				return err
			}
			defer ctx.Close()

			compact, exp, err := ctx.GetReauthAssertion(audience, cb, subjectHint, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), compact)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires: %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&audience, "audience", "", "audience to mint the authenticator for (required)")
	cmd.MarkFlagRequired("audience")
	cmd.Flags().StringVar(&channelBindings, "channel-bindings", "", "base64url-encoded channel bindings")
	cmd.Flags().StringVar(&subjectHint, "subject", "", "subject email, used to find the ticket if the packed audience alone misses")

	return cmd
}
