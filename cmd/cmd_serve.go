// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/geocode-go/geocode/server"
)

const defaultAddr = "localhost:8080"

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the geocoding HTTP API",
		Long: `Serves the geocoder over HTTP:

  GET /api/providers
  GET /api/geocode/:provider?q=Ottawa&nearest=-75.7,45.4
  GET /api/reverse/:provider?lnglat=-75.7,45.4
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") && c.cfg.Server.Addr != "" {
				addr = c.cfg.Server.Addr
			}

			if !c.verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			return server.NewServer(c.client(cmd.ErrOrStderr()), c.cfg.ProviderOptions).Run(addr)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")

	return serveCmd
}
