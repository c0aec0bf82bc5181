package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/hupe1980/segmenter"
	"github.com/hupe1980/segmenter/internal/config"
	"github.com/hupe1980/segmenter/report"
)

type clusterFlags struct {
	configFile    string
	failOnCap     bool
	seed          uint64
	k             int
	epsilon       float64
	maxIterations int
	init          string
	workers       int
	input         string
	store         string
	bucket        string
	prefix        string
	format        string
	schema        string
	compression   string
	output        string
	maxPoints     int
	logLevel      string
	logFormat     string
}

func newClusterCmd() *cobra.Command {
	f := &clusterFlags{}

	cmd := &cobra.Command{
		Use:   "cluster [input]",
		Short: "Cluster a customer dataset",
		Long: `Cluster reads a dataset and prints its segments.

Settings come from the optional --config YAML file; flags override it.
The input may also be given as the single positional argument. A local
directory, or an object key ending in "/", loads every file under it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.input = args[0]
				if err := cmd.Flags().Set("input", args[0]); err != nil {
					return err
				}
			}
			return runCluster(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "YAML configuration file")
	fl.IntVarP(&f.k, "k", "k", 0, "number of clusters")
	fl.Float64Var(&f.epsilon, "epsilon", 0, "convergence threshold")
	fl.IntVar(&f.maxIterations, "max-iterations", 0, "iteration cap")
	fl.StringVar(&f.init, "init", "", "seeding strategy: random, random-distinct, kmeans++")
	fl.Uint64Var(&f.seed, "seed", 0, "random seed (random when unset)")
	fl.IntVar(&f.workers, "workers", 0, "goroutines per step (default GOMAXPROCS)")
	fl.StringVarP(&f.input, "input", "i", "", "dataset path, directory or object key (prefix when ending in /)")
	fl.StringVar(&f.store, "store", "", "input store: local, s3, minio")
	fl.StringVar(&f.bucket, "bucket", "", "bucket for s3 and minio stores")
	fl.StringVar(&f.prefix, "prefix", "", "key prefix for s3 and minio stores")
	fl.StringVar(&f.format, "format", "", "input format: auto, text, csv")
	fl.StringVar(&f.schema, "schema", "", "feature schema: purchase, demographic")
	fl.StringVar(&f.compression, "compression", "", "input compression: auto, none, gzip, zstd, lz4")
	fl.StringVarP(&f.output, "output", "o", "", "report format: text, json")
	fl.IntVar(&f.maxPoints, "max-points", 0, "points listed in the text report (-1 for none)")
	fl.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fl.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
	fl.BoolVar(&f.failOnCap, "fail-on-nonconvergence", false, "exit with an error when the iteration cap is hit")

	return cmd
}

// resolveConfig loads the file configuration and applies explicitly set flags.
func resolveConfig(cmd *cobra.Command, f *clusterFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		var err error
		if cfg, err = config.Load(f.configFile); err != nil {
			return nil, err
		}
	}

	set := cmd.Flags().Changed
	if set("k") {
		cfg.K = f.k
	}
	if set("epsilon") {
		cfg.Epsilon = f.epsilon
	}
	if set("max-iterations") {
		cfg.MaxIterations = f.maxIterations
	}
	if set("init") {
		cfg.Init = f.init
	}
	if set("seed") {
		seed := f.seed
		cfg.Seed = &seed
	}
	if set("workers") {
		cfg.Workers = f.workers
	}
	if set("input") {
		cfg.Input.Path = f.input
	}
	if set("store") {
		cfg.Input.Store = f.store
	}
	if set("bucket") {
		cfg.Input.Bucket = f.bucket
	}
	if set("prefix") {
		cfg.Input.Prefix = f.prefix
	}
	if set("format") {
		cfg.Input.Format = f.format
	}
	if set("schema") {
		cfg.Input.Schema = f.schema
	}
	if set("compression") {
		cfg.Input.Compression = f.compression
	}
	if set("output") {
		cfg.Output.Format = f.output
	}
	if set("max-points") {
		cfg.Output.MaxPoints = f.maxPoints
	}
	if set("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if set("log-format") {
		cfg.Log.Format = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCluster(cmd *cobra.Command, f *clusterFlags) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := segmenter.NewTextLogger(level)
	if cfg.Log.Format == "json" {
		logger = segmenter.NewJSONLogger(level)
	}

	runCfg, seeded, err := cfg.SegmenterConfig()
	if err != nil {
		return err
	}
	if !seeded {
		runCfg.Seed = rand.Uint64()
	}
	logger.InfoContext(ctx, "starting", "seed", runCfg.Seed, "k", runCfg.K, "init", runCfg.Init)

	s, err := segmenter.New(runCfg,
		segmenter.WithLogger(logger),
		segmenter.WithResourceController(cfg.ResourceController()),
	)
	if err != nil {
		return err
	}

	store, name, err := openStore(ctx, cfg.Input)
	if err != nil {
		return err
	}

	opts, err := cfg.DatasetOptions()
	if err != nil {
		return err
	}

	ds, err := s.Load(ctx, store, name, opts)
	if err != nil {
		return err
	}

	res, err := s.Fit(ctx, ds)
	if err != nil {
		return err
	}

	rep := report.New(res, ds, opts.Schema)
	out := cmd.OutOrStdout()
	switch cfg.Output.Format {
	case "json":
		err = rep.WriteJSON(out)
	default:
		err = rep.WriteText(out, report.TextOptions{
			MaxPoints: cfg.Output.MaxPoints,
			Precision: cfg.Output.Precision,
		})
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if f.failOnCap {
		return res.Err()
	}
	return nil
}
