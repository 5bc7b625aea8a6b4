package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/housesplit/internal/auth"
)

func newHashPINCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-pin PIN",
		Short: "Print the bcrypt hash of a PIN for a [[members]] pin_hash entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPIN(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
