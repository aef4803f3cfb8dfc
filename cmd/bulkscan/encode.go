package main

import (
	"fmt"
	"strconv"

	"bulkscan/internal/core/command"

	"github.com/spf13/cobra"
)

func newEncodeCommand(_ *rootOptions) *cobra.Command {
	var (
		flags  requestFlags
		quoted bool
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the scheduler command string for a run",
		Long: `Encode renders a run description as the single argument the scheduler
passes to "bulkscan run". Fields are separated by ASCII EM (0x19).

Example:
  bulkscan encode --mode add --upload-tree 42 --license 7 --text "MIT License" --quoted`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := flags.request(nil)
			if err != nil {
				return badUsage("invalid run", err)
			}
			raw, err := command.Encode(req)
			if err != nil {
				return badUsage("invalid run", err)
			}
			if quoted {
				raw = strconv.Quote(raw)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), raw)
			return err
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&quoted, "quoted", false, "print as a Go quoted string")
	return cmd
}
