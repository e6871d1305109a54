// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geocode-go/geocode/spatial"
)

func newReverseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <lng,lat>",
		Short: "Find the places at a point",
		Long: `Resolves a point given as lng,lat (or [lng,lat]) into places.

$ geocode reverse -p mapbox -- -75.6972,45.4215
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := spatial.ParseLngLat(args[0])
			if err != nil {
				return fmt.Errorf("parsing point: %w", err)
			}

			options, err := c.options(cmd)
			if err != nil {
				return err
			}

			res, err := c.client(cmd.ErrOrStderr()).Reverse(cmd.Context(), c.provider, p, options)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}
