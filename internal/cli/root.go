// Package cli provides the kysely-codegen command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rowan-gud/kysely-codegen/internal/config"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
	"github.com/rowan-gud/kysely-codegen/internal/generator"
	"github.com/rowan-gud/kysely-codegen/internal/logger"
	"github.com/rowan-gud/kysely-codegen/internal/transformer"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitDrift = 1
	ExitError = 2
)

// NewRootCmd creates the root command. Output goes to stdout, diagnostics
// to stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "kysely-codegen",
		Short: "Generate Kysely type definitions from a live database",
		Long: `kysely-codegen introspects a PostgreSQL, MySQL, SQL Server or SQLite
database and writes a TypeScript declaration file describing every table
and view for use with Kysely.

Options are read from kysely-codegen.yaml, KYSELY_CODEGEN_* environment
variables and flags, in increasing order of precedence.`,
		Version: Version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfgFile, cmd.Flags(), stdout, stderr)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}} (" + GitCommit + ")\n")

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultConfigFile+" when present)")
	bindFlags(rootCmd.Flags())

	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"postgres", "mysql", "mssql", "sqlite"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("runtime-enums-style", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		styles := make([]string, len(transformer.EnumStyles))
		for i, s := range transformer.EnumStyles {
			styles[i] = string(s)
		}
		return styles, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return logger.Levels, cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}

// bindFlags registers one flag per configuration key. Defaults live in the
// config package; a flag only takes effect when it is set.
func bindFlags(fs *pflag.FlagSet) {
	fs.String("url", "", `connection string, or env(NAME) to read it from an environment variable (default "`+config.DefaultURL+`")`)
	fs.String("env-file", "", "dotenv file consulted when resolving env(NAME) in --url")
	fs.String("dialect", "", "database dialect: postgres, mysql, mssql or sqlite (default: inferred from --url)")
	fs.String("out-file", "", `artifact path or object key (default "`+config.DefaultOutFile+`")`)
	fs.Bool("print", false, "print the output instead of writing it")
	fs.Bool("verify", false, "compare the output with the existing artifact and exit 1 on drift")

	fs.Bool("camel-case", false, "camelCase column and table keys")
	fs.Bool("singular", false, "singularize table type names")
	fs.StringSlice("schemas", nil, "only introspect these schemas")
	fs.String("include-pattern", "", "only include tables whose qualified name matches this regexp")
	fs.String("exclude-pattern", "", "exclude tables whose qualified name matches this regexp")
	fs.Bool("partitions", false, "include partition tables")
	fs.Bool("domains", true, "resolve PostgreSQL domains to their base types")

	fs.Bool("runtime-enums", false, "emit enums as runtime const objects")
	fs.String("runtime-enums-style", "", `member naming for runtime enums (default "`+config.DefaultRuntimeEnumsStyle+`")`)
	fs.Bool("type-only-imports", true, "use import type for kysely imports")

	fs.String("date-parser", "", "TypeScript type for date columns: timestamp or string")
	fs.String("timestamp-parser", "", "TypeScript type for timestamp columns: timestamp or string")
	fs.String("numeric-parser", "", "TypeScript type for numeric columns: number, string or number-or-string")
	fs.String("overrides", "", `column or type overrides as YAML or JSON, e.g. '{"public.users.meta": "Meta"}'`)

	fs.String("log-level", "", `log level: `+strings.Join(logger.Levels, ", ")+` (default "`+config.DefaultLogLevel+`")`)
	fs.String("log-format", "", `log format: console or json (default "`+config.DefaultLogFormat+`")`)

	fs.String("store-provider", "", `artifact store: local or minio (default "`+config.DefaultStoreProvider+`")`)
	fs.String("store-root", "", "directory (local) or key prefix (minio) for artifacts")
	fs.String("store-endpoint", "", "MinIO endpoint, host:port")
	fs.String("store-access-key", "", "MinIO access key")
	fs.String("store-secret-key", "", "MinIO secret key")
	fs.String("store-bucket", "", "MinIO bucket")
	fs.String("store-region", "", "MinIO region")
	fs.Bool("store-use-ssl", false, "use TLS for MinIO")
}

func run(ctx context.Context, cfgFile string, flags *pflag.FlagSet, stdout, stderr io.Writer) error {
	cfg, err := config.Load(cfgFile, flags)
	if err != nil {
		return err
	}
	runs, err := cfg.Compile()
	if err != nil {
		return err
	}

	logCfg, err := cfg.LoggerConfig()
	if err != nil {
		return err
	}
	logCfg.Output = stderr
	log := logger.New(logCfg)
	ctx = log.WithContext(ctx)

	storeCfg, err := cfg.StoreConfig()
	if err != nil {
		return err
	}
	store, err := generator.OpenStore(ctx, storeCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Debugf("generating %d run(s)", len(runs))
	_, err = generator.New(store, stdout, log).RunAll(ctx, runs)
	return err
}

// ExitCode maps err to the process exit status: 0 on success, 1 when
// verify found drift, 2 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errs.IsDrift(err):
		return ExitDrift
	}
	return ExitError
}

// Execute runs the root command with os.Args and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitCode(err)
	}
	return ExitOK
}
