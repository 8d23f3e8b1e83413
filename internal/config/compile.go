package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rowan-gud/kysely-codegen/internal/adapter"
	"github.com/rowan-gud/kysely-codegen/internal/database"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
	"github.com/rowan-gud/kysely-codegen/internal/filestore"
	"github.com/rowan-gud/kysely-codegen/internal/logger"
	"github.com/rowan-gud/kysely-codegen/internal/schema"
	"github.com/rowan-gud/kysely-codegen/internal/serializer"
	"github.com/rowan-gud/kysely-codegen/internal/transformer"
)

// Run is one fully validated generation: what to read, how to transform
// it, and where the artifact goes.
type Run struct {
	// Name identifies the run in logs: the target name, or the out file.
	Name    string
	OutFile string
	Print   bool
	Verify  bool

	Dialect    adapter.Dialect
	Policies   adapter.Policies
	Connection *database.Config

	Introspect schema.Options
	Transform  transformer.Options
	Serialize  serializer.Options
}

// Compile validates c and expands it into the main run followed by one run
// per target. It fails with a config error naming the offending flag before
// anything touches the database.
func (c *Config) Compile() ([]*Run, error) {
	if c.Print && c.Verify {
		return nil, errs.New(errs.ErrKindConfig, "--print and --verify are mutually exclusive")
	}
	if !slices.Contains(transformer.EnumStyles, transformer.EnumStyle(c.RuntimeEnumsStyle)) {
		return nil, errs.Newf(errs.ErrKindConfig, "--runtime-enums-style: unknown value %q (expected one of %s)",
			c.RuntimeEnumsStyle, joinStyles())
	}
	if _, err := c.LoggerConfig(); err != nil {
		return nil, err
	}
	if _, err := c.StoreConfig(); err != nil {
		return nil, err
	}

	fileEnv, err := c.readEnvFile()
	if err != nil {
		return nil, err
	}

	base, err := c.compileRun(Target{}, fileEnv)
	if err != nil {
		return nil, err
	}
	runs := []*Run{base}

	seen := map[string]bool{base.OutFile: true}
	for i, t := range c.Targets {
		run, err := c.compileRun(t, fileEnv)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindConfig, fmt.Sprintf("targets[%d]", i), err)
		}
		if seen[run.OutFile] && !c.Print {
			return nil, errs.Newf(errs.ErrKindConfig, "targets[%d]: out_file %s is already written by another run", i, run.OutFile)
		}
		seen[run.OutFile] = true
		runs = append(runs, run)
	}
	return runs, nil
}

func (c *Config) compileRun(t Target, fileEnv map[string]string) (*Run, error) {
	url, err := ResolveURL(firstNonEmpty(t.URL, c.URL), fileEnv)
	if err != nil {
		return nil, err
	}

	var dialect adapter.Dialect
	if name := firstNonEmpty(t.Dialect, c.Dialect); name != "" {
		if dialect, err = adapter.ParseDialect(name); err != nil {
			return nil, errs.Wrap(errs.ErrKindConfig, "--dialect", err)
		}
	} else if dialect, err = InferDialect(url); err != nil {
		return nil, err
	}

	policies, err := c.policies()
	if err != nil {
		return nil, err
	}
	// Building the adapter validates the policies against the dialect.
	if _, err := adapter.New(dialect, policies); err != nil {
		return nil, err
	}

	include, err := compilePattern("--include-pattern", firstNonEmpty(t.IncludePattern, c.IncludePattern))
	if err != nil {
		return nil, err
	}
	exclude, err := compilePattern("--exclude-pattern", firstNonEmpty(t.ExcludePattern, c.ExcludePattern))
	if err != nil {
		return nil, err
	}

	overrides, err := parseOverrides(c.Overrides)
	if err != nil {
		return nil, err
	}
	if t.Overrides != nil {
		extra, err := parseOverrides(t.Overrides)
		if err != nil {
			return nil, err
		}
		overrides = mergeOverrides(overrides, extra)
	}

	schemas := c.Schemas
	if len(t.Schemas) > 0 {
		schemas = t.Schemas
	}

	outFile := firstNonEmpty(t.OutFile, c.OutFile)
	if outFile == "" {
		return nil, errs.New(errs.ErrKindConfig, "--out-file must not be empty")
	}

	return &Run{
		Name:       firstNonEmpty(t.Name, outFile),
		OutFile:    outFile,
		Print:      c.Print,
		Verify:     c.Verify,
		Dialect:    dialect,
		Policies:   policies,
		Connection: database.DefaultConfig(database.Driver(dialect), url),
		Introspect: schema.Options{
			Schemas:    slices.Clone(schemas),
			Partitions: c.Partitions,
			Domains:    c.Domains,
		},
		Transform: transformer.Options{
			CamelCase:         c.CamelCase,
			Singular:          c.Singular,
			Schemas:           slices.Clone(schemas),
			Include:           include,
			Exclude:           exclude,
			Partitions:        c.Partitions,
			RuntimeEnums:      c.RuntimeEnums,
			RuntimeEnumsStyle: transformer.EnumStyle(c.RuntimeEnumsStyle),
			Overrides:         overrides,
		},
		Serialize: serializer.Options{TypeOnlyImports: c.TypeOnlyImports},
	}, nil
}

func (c *Config) policies() (adapter.Policies, error) {
	date, err := parsePolicy("--date-parser", c.DateParser)
	if err != nil {
		return adapter.Policies{}, err
	}
	timestamp, err := parsePolicy("--timestamp-parser", c.TimestampParser)
	if err != nil {
		return adapter.Policies{}, err
	}
	numeric, err := parsePolicy("--numeric-parser", c.NumericParser)
	if err != nil {
		return adapter.Policies{}, err
	}
	return adapter.Policies{Date: date, Timestamp: timestamp, Numeric: numeric}, nil
}

// LoggerConfig validates the log options and returns the logger settings.
// Logs go to stderr.
func (c *Config) LoggerConfig() (*logger.Config, error) {
	if !logger.ValidLevel(c.LogLevel) {
		return nil, errs.Newf(errs.ErrKindConfig, "--log-level: unknown value %q (expected one of %s)",
			c.LogLevel, strings.Join(logger.Levels, ", "))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return nil, errs.Newf(errs.ErrKindConfig, "--log-format: unknown value %q (expected console or json)", c.LogFormat)
	}

	lc := logger.DefaultConfig()
	lc.Level = c.LogLevel
	lc.Format = c.LogFormat
	lc.Output = os.Stderr
	return lc, nil
}

// StoreConfig validates the artifact store options.
func (c *Config) StoreConfig() (*filestore.Config, error) {
	provider := filestore.Provider(strings.ToLower(c.Store.Provider))
	if !slices.Contains(filestore.Providers, provider) {
		return nil, errs.Newf(errs.ErrKindConfig, "--store-provider: unknown value %q (expected local or minio)", c.Store.Provider)
	}
	if provider == filestore.ProviderMinIO && (c.Store.Endpoint == "" || c.Store.Bucket == "") {
		return nil, errs.New(errs.ErrKindConfig, "--store-endpoint and --store-bucket are required for the minio store")
	}

	return &filestore.Config{
		Provider:  provider,
		Root:      c.Store.Root,
		Endpoint:  c.Store.Endpoint,
		AccessKey: c.Store.AccessKey,
		SecretKey: c.Store.SecretKey,
		Bucket:    c.Store.Bucket,
		Region:    c.Store.Region,
		UseSSL:    c.Store.UseSSL,
	}, nil
}

var envURLPattern = regexp.MustCompile(`^env\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*\)$`)

// readEnvFile parses the dotenv file named by env_file, if any.
func (c *Config) readEnvFile() (map[string]string, error) {
	if c.EnvFile == "" {
		return nil, nil
	}
	vars, err := godotenv.Read(c.EnvFile)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "--env-file: cannot read "+c.EnvFile, err)
	}
	return vars, nil
}

// ResolveURL expands env(NAME) to the value of environment variable NAME,
// falling back to fileEnv when the process environment does not set it.
// Other values are returned unchanged.
func ResolveURL(raw string, fileEnv map[string]string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errs.New(errs.ErrKindConfig, "--url must not be empty")
	}

	m := envURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return raw, nil
	}
	val, ok := os.LookupEnv(m[1])
	if !ok {
		val, ok = fileEnv[m[1]]
	}
	if !ok || strings.TrimSpace(val) == "" {
		return "", errs.Newf(errs.ErrKindConfig, "--url: environment variable %s is not set", m[1])
	}
	return strings.TrimSpace(val), nil
}

// InferDialect derives the dialect from a connection URL's scheme, or from
// a SQLite file name.
func InferDialect(url string) (adapter.Dialect, error) {
	lower := strings.ToLower(url)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return adapter.DialectPostgres, nil
	case strings.HasPrefix(lower, "mysql://"):
		return adapter.DialectMySQL, nil
	case strings.HasPrefix(lower, "mssql://"), strings.HasPrefix(lower, "sqlserver://"):
		return adapter.DialectMSSQL, nil
	case strings.HasPrefix(lower, "sqlite:"), strings.HasPrefix(lower, "file:"), lower == ":memory:":
		return adapter.DialectSQLite, nil
	}

	switch filepath.Ext(lower) {
	case ".db", ".sqlite", ".sqlite3":
		return adapter.DialectSQLite, nil
	}
	return "", errs.New(errs.ErrKindConfig, "--dialect: cannot infer the dialect from the connection url, set it explicitly")
}

func compilePattern(flag, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, flag+": invalid regular expression", err)
	}
	return re, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinStyles() string {
	parts := make([]string, len(transformer.EnumStyles))
	for i, s := range transformer.EnumStyles {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
