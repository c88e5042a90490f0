package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/Azhovan/getconfig"
	"github.com/Azhovan/getconfig/internal/logging"
	"github.com/Azhovan/getconfig/sourceenv"
	"github.com/Azhovan/getconfig/sourcefile"
)

type options struct {
	dir         string
	start       string
	profile     string
	profileVar  string
	format      string
	sources     bool
	redact      []string
	envFiles    []string
	envOverride bool
	snapshot    string
	exclude     []string
	logLevel    string
}

func newApp() (*kingpin.Application, *options) {
	opts := &options{}
	app := kingpin.New("getconfig", "Resolve layered configuration files and print the effective result")
	app.Flag("dir", "Config directory to read (default: discovered from --start)").StringVar(&opts.dir)
	app.Flag("start", "Directory to start config directory discovery from").StringVar(&opts.start)
	app.Flag("profile", "Profile to load (overrides the profile environment variable)").StringVar(&opts.profile)
	app.Flag("profile-var", "Environment variable holding the profile").Default(getconfig.EnvProfile).StringVar(&opts.profileVar)
	app.Flag("format", "Output format").Default("text").EnumVar(&opts.format, "text", "json", "yaml")
	app.Flag("sources", "Show the layer behind each value (text format only)").BoolVar(&opts.sources)
	app.Flag("redact", "Dotted path whose value is hidden in the output (repeatable)").StringsVar(&opts.redact)
	app.Flag("env-file", ".env file consulted for placeholders (repeatable)").StringsVar(&opts.envFiles)
	app.Flag("env-override", "Let .env files take precedence over the process environment").BoolVar(&opts.envOverride)
	app.Flag("snapshot", "Write a JSON snapshot to this path ({{timestamp}} is expanded)").StringVar(&opts.snapshot)
	app.Flag("exclude", "Dotted path left out of the snapshot (repeatable)").StringsVar(&opts.exclude)
	app.Flag("log-level", "Log level").Default("warn").EnumVar(&opts.logLevel, "debug", "info", "warn", "error")
	return app, opts
}

func main() {
	app, opts := newApp()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := logging.New(opts.logLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(context.Background(), opts, os.Stdout, logger); err != nil {
		logger.Fatal("failed to resolve configuration",
			zap.String("code", getconfig.ErrorCode(err)),
			zap.Error(err))
	}
}

func run(ctx context.Context, opts *options, out io.Writer, logger *zap.Logger) error {
	env, err := sourceenv.New(sourceenv.Options{
		Files:    opts.envFiles,
		Override: opts.envOverride,
	})
	if err != nil {
		return err
	}

	var src getconfig.LayerSource
	if opts.dir != "" {
		src = sourcefile.New(opts.dir, sourcefile.Options{})
	} else {
		src, err = sourcefile.Discover(env, opts.start)
		if err != nil {
			return err
		}
	}
	logger.Debug("using config source", zap.String("source", src.Name()))

	loader := getconfig.NewLoader().
		WithSource(src).
		WithEnv(env).
		WithLogger(logger)
	if opts.profileVar != "" {
		loader = loader.WithProfileVar(opts.profileVar)
	}
	if opts.profile != "" {
		loader = loader.WithProfile(opts.profile)
	}

	cfg, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	if opts.snapshot != "" {
		snap, err := getconfig.CreateSnapshot(cfg, getconfig.WithExcludeFields(opts.exclude...))
		if err != nil {
			return err
		}
		if err := getconfig.WriteSnapshot(snap, opts.snapshot); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		logger.Info("snapshot written",
			zap.String("path", getconfig.ExpandPathWithTime(opts.snapshot, snap.Timestamp)))
	}

	var dumpOpts []getconfig.DumpOption
	switch opts.format {
	case "json":
		dumpOpts = append(dumpOpts, getconfig.AsJSON())
	case "yaml":
		dumpOpts = append(dumpOpts, getconfig.AsYAML())
	}
	if opts.sources {
		dumpOpts = append(dumpOpts, getconfig.WithSources())
	}
	if len(opts.redact) > 0 {
		dumpOpts = append(dumpOpts, getconfig.WithRedacted(opts.redact...))
	}
	return getconfig.DumpEffective(out, cfg, dumpOpts...)
}
