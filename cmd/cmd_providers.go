// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/geocode-go/geocode/geocoder"
)

func newProvidersCmd(_ *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the supported providers and their credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tCREDENTIAL\tREQUIRED\tQUERY")

			for _, name := range geocoder.Providers() {
				p, err := geocoder.ProviderFor(name)
				if err != nil {
					return err
				}

				cred := p.Credential()

				env := cred.Env
				if env == "" {
					env = "-"
				}

				_, querier := p.(geocoder.Querier)
				fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", name, env, cred.Required, querier)
			}

			return w.Flush()
		},
	}
}
