// Command trainerrand randomizes the trainer rosters of a dataset file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/MJE43/trainerrand/internal/config"
	"github.com/MJE43/trainerrand/internal/gamedata"
	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/runner"
	"github.com/MJE43/trainerrand/internal/scan"
	"github.com/MJE43/trainerrand/internal/store"
	"github.com/MJE43/trainerrand/internal/subrand"
	"github.com/MJE43/trainerrand/internal/trainer"
)

// Set via -ldflags.
var engineVersion = "dev"

type options struct {
	data          string
	sample        bool
	settings      string
	version       string
	seed          int64
	seedSet       bool
	out           string
	filter        string
	db            string
	legality      string
	envFile       string
	species       subrand.SpeciesOptions
	writeSample   string
	writeSettings string
	quiet         bool
	scanTo        int64
	metric        string
	targetOp      string
	target        float64
	target2       float64
	targetSpecies int
	limit         int
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("trainerrand", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.data, "data", "", "dataset JSON file to randomize")
	fs.BoolVar(&o.sample, "sample", false, "use the built-in sample dataset instead of -data")
	fs.StringVar(&o.settings, "settings", "", "settings file (.yaml, .yml or .json); defaults when empty")
	fs.StringVar(&o.version, "version", "", "game version override (e.g. usum, sm, oras)")
	fs.Int64Var(&o.seed, "seed", 0, "seed for a reproducible run (random when omitted)")
	fs.StringVar(&o.out, "out", "", "write the randomized dataset to this file")
	fs.StringVar(&o.filter, "filter", "", "JavaScript filter defining allowSpecies and/or allowMove")
	fs.StringVar(&o.db, "db", "", "SQLite database to record the run in")
	fs.StringVar(&o.legality, "legality", "", "YAML legality tables replacing the embedded ones")
	fs.StringVar(&o.envFile, "env", ".env", "dotenv file read before the environment")
	fs.IntVar(&o.species.MaxSpecies, "max-species", 0, "highest species id a replacement may use (0 = all)")
	fs.BoolVar(&o.species.SimilarBST, "similar-bst", false, "keep replacements near the replaced species' stat total")
	fs.IntVar(&o.species.BSTTolerance, "bst-tolerance", 10, "stat total window in percent for -similar-bst")
	fs.StringVar(&o.writeSample, "write-sample", "", "write the sample dataset to this file and exit")
	fs.StringVar(&o.writeSettings, "write-settings", "", "write the default settings as YAML to this file and exit")
	fs.BoolVar(&o.quiet, "q", false, "suppress the per-trainer report")
	fs.Int64Var(&o.scanTo, "scan-to", 0, "scan seeds from -seed to this seed instead of running once")
	fs.StringVar(&o.metric, "metric", string(scan.MetricMegaSwaps), "scan metric")
	fs.StringVar(&o.targetOp, "op", string(scan.OpGreaterEqual), "scan comparison (eq, gt, ge, lt, le, between, outside)")
	fs.Float64Var(&o.target, "target", 1, "scan target value")
	fs.Float64Var(&o.target2, "target2", 0, "upper bound for between and outside")
	fs.IntVar(&o.targetSpecies, "target-species", 0, "species counted by the species_count metric")
	fs.IntVar(&o.limit, "limit", 20, "maximum scan hits to print (0 = all)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if t := o.species.BSTTolerance; t < 0 || t > 100 {
		return nil, fmt.Errorf("-bst-tolerance %d outside [0, 100]", t)
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			o.seedSet = true
		}
	})
	return &o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	logger := log.New(stderr, "[CLI] ", log.LstdFlags)

	version := legal.Unknown
	if o.version != "" {
		if version, err = legal.ParseVersion(o.version); err != nil {
			return err
		}
	}

	if o.writeSample != "" {
		v := version
		if v == legal.Unknown {
			v = legal.USUM
		}
		if err := gamedata.Sample(v).Save(o.writeSample); err != nil {
			return err
		}
		logger.Printf("wrote sample dataset to %s", o.writeSample)
		return nil
	}
	if o.writeSettings != "" {
		if err := config.WriteSettings(o.writeSettings, trainer.DefaultSettings()); err != nil {
			return err
		}
		logger.Printf("wrote default settings to %s", o.writeSettings)
		return nil
	}

	cfg, err := config.Load(o.envFile)
	if err != nil {
		return err
	}
	if o.legality != "" {
		cfg.LegalityPath = o.legality
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	req, err := buildRequest(o, version)
	if err != nil {
		return err
	}

	if o.scanTo != 0 {
		return runScan(o, req, catalog, stdout)
	}

	var db store.DB
	if o.db != "" {
		sqlite, err := store.NewSQLiteDB(o.db)
		if err != nil {
			return err
		}
		defer sqlite.Close()
		if err := sqlite.Migrate(); err != nil {
			return err
		}
		db = sqlite
	}

	svc := runner.NewService(runner.New(catalog, logger), db, engineVersion)
	res, err := svc.Randomize(context.Background(), req)
	if err != nil {
		return err
	}

	if o.out != "" {
		out := *req.Data
		out.Version = res.Version
		out.Trainers = res.Trainers
		if err := out.Save(o.out); err != nil {
			return err
		}
		logger.Printf("wrote randomized dataset to %s", o.out)
	}

	table, err := req.Data.Personal()
	if err != nil {
		return err
	}
	return writeReport(stdout, res, table, !o.quiet)
}

func runScan(o *options, req runner.Request, catalog *legal.Catalog, stdout io.Writer) error {
	if !o.seedSet {
		return errors.New("-scan-to needs -seed as the first seed")
	}
	result, err := scan.NewScanner(runner.New(catalog, nil), 0).Scan(context.Background(), scan.Request{
		Base:       req,
		SeedStart:  o.seed,
		SeedEnd:    o.scanTo,
		Metric:     scan.Metric(o.metric),
		Species:    o.targetSpecies,
		TargetOp:   scan.TargetOp(o.targetOp),
		TargetVal:  o.target,
		TargetVal2: o.target2,
		Limit:      o.limit,
	})
	if err != nil {
		return err
	}
	return writeScanReport(stdout, o.metric, result)
}

func buildRequest(o *options, version legal.GameVersion) (runner.Request, error) {
	req := runner.Request{
		Version: version,
		Species: o.species,
	}

	switch {
	case o.data != "":
		ds, err := gamedata.Load(o.data)
		if err != nil {
			return req, err
		}
		req.Data = ds
	case o.sample:
		v := version
		if v == legal.Unknown {
			v = legal.USUM
		}
		req.Data = gamedata.Sample(v)
	default:
		return req, errors.New("one of -data or -sample is required")
	}

	req.Settings = trainer.DefaultSettings()
	if o.settings != "" {
		s, err := config.LoadSettings(o.settings)
		if err != nil {
			return req, err
		}
		req.Settings = s
	}

	if o.filter != "" {
		src, err := os.ReadFile(o.filter)
		if err != nil {
			return req, fmt.Errorf("read filter: %w", err)
		}
		if strings.TrimSpace(string(src)) != "" {
			req.FilterScript = string(src)
		}
	}

	if o.seedSet {
		seed := o.seed
		req.Seed = &seed
	}
	return req, nil
}
