// Command bidcheck is a small command-line tool exercising the
// verification engine end to end: verifying a backed assertion,
// minting a fast-reauthentication assertion from a previously stored
// ticket, or resolving and printing an issuer's authority record.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "bidcheck",
		Short: "Verify BrowserID backed assertions and inspect authority trust",
	}

	root.AddCommand(newVerifyCommand())
	root.AddCommand(newMintReauthCommand())
	root.AddCommand(newShowAuthorityCommand())

	return root
}
