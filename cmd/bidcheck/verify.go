package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cursive-id/browserid"
	"github.com/spf13/cobra"
)

func newVerifyCommand() *cobra.Command {
	var (
		audience        string
		channelBindings string
		assertionFile   string
	)

	cmd := &cobra.Command{
		Use:   "verify [assertion]",
		Short: "Verify a backed assertion or reauthentication authenticator",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			compact, err := readAssertion(args, assertionFile)
			if err != nil {
				return err
			}

			var cb []byte
			if channelBindings != "" {
				cb, err = base64.RawURLEncoding.DecodeString(channelBindings)
				if err != nil {
					return fmt.Errorf("decoding --channel-bindings: %w", err)
				}
			}

			cfg, err := browserid.LoadConfig()
			if err != nil {
				return err
			}
			ctx, err := browserid.NewContext(cfg)
			if err != nil {
				return err
			}
			defer ctx.Close()

			id, err := ctx.Verify(context.Background(), compact, audience, cb, time.Now())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"email":    id.Email(),
				"audience": id.Audience(),
				"issuer":   id.Issuer(),
				"expires":  id.Expires(),
			})
		},
	}

	cmd.Flags().StringVar(&audience, "audience", "", "expected audience (required)")
	cmd.MarkFlagRequired("audience")
	cmd.Flags().StringVar(&channelBindings, "channel-bindings", "", "base64url-encoded channel bindings")
	cmd.Flags().StringVar(&assertionFile, "file", "", "read the assertion from this file instead of stdin/argument")

	return cmd
}

func readAssertion(args []string, file string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
