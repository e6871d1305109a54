// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the geocode command line.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/geocode-go/geocode/config"
	"github.com/geocode-go/geocode/geocoder"
	"github.com/geocode-go/geocode/spatial"
	"github.com/geocode-go/geocode/utils/httputils"
)

const defaultProvider = "bing"

// cli holds the state shared by the commands of a single invocation.
type cli struct {
	provider    string
	limit       int
	nearest     string
	radius      float64
	distance    float64
	places      []string
	raw         bool
	short       bool
	sparql      bool
	key         string
	accessToken string
	language    string
	languages   []string
	subclasses  []string

	configPath string
	traceHTTP  bool
	verbose    bool

	cfg *config.Config

	// doer and env replace the network and the process environment in tests
	doer geocoder.Doer
	env  geocoder.Environment
}

func setupLogging(w io.Writer, verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    noColor,
	}).Level(level).With().Timestamp().Logger()
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "geocode [flags] <location>",
		Short: "geocode locations with Bing, Google, Mapbox, Wikidata or Opencage",
		Long: `
geocode resolves a free-form location with one of the supported providers and
prints the results as a GeoJSON FeatureCollection of points.

$ geocode -p wikidata --nearest -75.7,45.4 Ottawa
`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGeocode(cmd, strings.Join(args, " "))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.provider, "provider", "p", defaultProvider, "geocoding provider ("+strings.Join(geocoder.Providers(), ", ")+")")
	flags.IntVar(&c.limit, "limit", 0, "maximum number of features")
	flags.StringVar(&c.nearest, "nearest", "", "keep the feature closest to this lng,lat point")
	flags.Float64Var(&c.radius, "radius", 0, "maximum distance to --nearest in kilometers")
	flags.Float64Var(&c.distance, "distance", 0, "alias of --radius")
	flags.StringSliceVar(&c.places, "places", nil, "keep features of these place types")
	flags.BoolVar(&c.raw, "raw", false, "print the provider response untouched")
	flags.BoolVar(&c.short, "short", false, "use short address components (google)")
	flags.StringVar(&c.key, "key", "", "API key (bing, google, opencage)")
	flags.StringVar(&c.accessToken, "access-token", "", "access token (mapbox)")
	flags.StringVar(&c.language, "language", "", "language of the results")
	flags.StringSliceVar(&c.languages, "languages", nil, "languages used to match labels (wikidata)")
	flags.StringSliceVar(&c.subclasses, "subclasses", nil, "instance of restrictions, like city or Q515 (wikidata)")
	flags.StringVar(&c.configPath, "config", "", "configuration file (default "+config.DefaultPath+" when present)")
	flags.BoolVar(&c.traceHTTP, "trace-http", false, "dump HTTP requests and responses to stderr")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().BoolVar(&c.sparql, "sparql", false, "print the SPARQL query instead of running it (wikidata)")

	rootCmd.AddCommand(newReverseCmd(c), newProvidersCmd(c), newServeCmd(c))

	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command) error {
	setupLogging(cmd.ErrOrStderr(), c.verbose)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	c.cfg = cfg

	if !cmd.Flags().Changed("provider") && cfg.Provider != "" {
		c.provider = cfg.Provider
	}

	return nil
}

// options builds the request options from the flags, completed with the
// configured options of the provider.
func (c *cli) options(cmd *cobra.Command) (geocoder.Options, error) {
	options := geocoder.Options{
		Radius:      c.radius,
		Places:      c.places,
		Limit:       c.limit,
		Short:       c.short,
		Raw:         c.raw,
		Key:         c.key,
		AccessToken: c.accessToken,
		Language:    c.language,
		Languages:   c.languages,
		Subclasses:  c.subclasses,
	}

	if c.limit < 0 {
		return options, fmt.Errorf("--limit must not be negative: %d", c.limit)
	}

	if c.nearest != "" {
		p, err := spatial.ParseLngLat(c.nearest)
		if err != nil {
			return options, fmt.Errorf("--nearest: %w", err)
		}

		options.Nearest = &p
	}

	if !cmd.Flags().Changed("radius") && cmd.Flags().Changed("distance") {
		options.Radius = c.distance
	}

	return geocoder.MergeOptions(options, c.cfg.ProviderOptions(c.provider)), nil
}

func (c *cli) client(stderr io.Writer) *geocoder.Client {
	doer := c.doer
	if doer == nil {
		clientOptions := httputils.ClientOptions{
			UserAgent: c.cfg.UserAgent,
			Timeout:   c.cfg.Timeout,
		}
		if c.traceHTTP {
			clientOptions.Trace = stderr
			clientOptions.TraceBody = c.verbose
		}

		doer = httputils.NewClient(clientOptions)
	}

	var opts []geocoder.ClientOption
	if c.env != nil {
		opts = append(opts, geocoder.WithEnvironment(c.env))
	}

	if c.cfg.Google.ADC {
		opts = append(opts, geocoder.WithKeySource(geocoder.NewADCKeySource(c.cfg.Google.ProjectID, c.cfg.Google.KeyName)))
	}

	return geocoder.NewClient(doer, opts...)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func (c *cli) runGeocode(cmd *cobra.Command, address string) error {
	options, err := c.options(cmd)
	if err != nil {
		return err
	}

	client := c.client(cmd.ErrOrStderr())

	if c.sparql {
		query, err := client.Query(c.provider, address, options)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), query)

		return err
	}

	res, err := client.Geocode(cmd.Context(), c.provider, address, options)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), res)
}

var Version = "dev"

func Execute(version string) {
	Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd(&cli{})
	rootCmd.Version = version

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
