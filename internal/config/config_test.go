package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowan-gud/kysely-codegen/internal/adapter"
	"github.com/rowan-gud/kysely-codegen/internal/ast"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
	"github.com/rowan-gud/kysely-codegen/internal/filestore"
	"github.com/rowan-gud/kysely-codegen/internal/transformer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kysely-codegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("url", "", "")
	fs.String("out-file", "", "")
	fs.Bool("camel-case", false, "")
	fs.StringSlice("schemas", nil, "")
	fs.String("store-bucket", "", "")
	return fs
}

func validConfig() *Config {
	return &Config{
		URL:               "postgres://localhost/app",
		OutFile:           "db.d.ts",
		Domains:           true,
		TypeOnlyImports:   true,
		RuntimeEnumsStyle: DefaultRuntimeEnumsStyle,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		Store:             StoreConfig{Provider: DefaultStoreProvider},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultURL, cfg.URL)
	assert.Equal(t, DefaultOutFile, cfg.OutFile)
	assert.True(t, cfg.Domains)
	assert.True(t, cfg.TypeOnlyImports)
	assert.False(t, cfg.CamelCase)
	assert.Equal(t, DefaultRuntimeEnumsStyle, cfg.RuntimeEnumsStyle)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultStoreProvider, cfg.Store.Provider)
}

func TestLoad_DefaultFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("singular: true\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.True(t, cfg.Singular)
}

func TestLoad_Precedence(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
url: postgres://file/app
out_file: from-file.d.ts
camel_case: true
schemas: [public, auth]
store:
  provider: minio
  endpoint: localhost:9000
  bucket: from-file
`)
	t.Setenv("KYSELY_CODEGEN_OUT_FILE", "from-env.d.ts")
	t.Setenv("KYSELY_CODEGEN_STORE__ENDPOINT", "minio:9000")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--url", "postgres://flag/app", "--store-bucket", "from-flag"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "postgres://flag/app", cfg.URL)
	assert.Equal(t, "from-env.d.ts", cfg.OutFile)
	assert.True(t, cfg.CamelCase)
	assert.Equal(t, []string{"public", "auth"}, cfg.Schemas)
	assert.Equal(t, "minio", cfg.Store.Provider)
	assert.Equal(t, "minio:9000", cfg.Store.Endpoint)
	assert.Equal(t, "from-flag", cfg.Store.Bucket)
}

func TestLoad_EnvSlice(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KYSELY_CODEGEN_SCHEMAS", "public,audit")
	t.Setenv("KYSELY_CODEGEN_SINGULAR", "true")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"public", "audit"}, cfg.Schemas)
	assert.True(t, cfg.Singular)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
	assert.Contains(t, err.Error(), "--config")
}

func TestLoad_OverridesFromFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
url: postgres://localhost/app
overrides:
  public.users.email: "` + "`${string}@${string}`" + `"
  users.meta:
    select: Meta
    insert: string
  timestamptz: Date
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	runs, err := cfg.Compile()
	require.NoError(t, err)

	assert.Equal(t, []transformer.Override{
		{Key: "public.users.email", Type: ast.RawExpr("`${string}@${string}`")},
		{Key: "timestamptz", Type: ast.RawExpr("Date")},
		{Key: "users.meta", Type: ast.Columns(ast.RawExpr("Meta"), ast.RawExpr("string"), nil)},
	}, runs[0].Transform.Overrides)
}

func TestCompile_Run(t *testing.T) {
	t.Setenv("TEST_DATABASE_URL", "mysql://root@localhost/app")

	cfg := validConfig()
	cfg.URL = "env(TEST_DATABASE_URL)"
	cfg.CamelCase = true
	cfg.Singular = true
	cfg.Schemas = []string{"app"}
	cfg.IncludePattern = `^users$`
	cfg.RuntimeEnums = true
	cfg.RuntimeEnumsStyle = "pascal-case"
	cfg.TypeOnlyImports = false
	cfg.DateParser = "string"
	cfg.NumericParser = map[string]any{"decimal": "number-or-string"}

	runs, err := cfg.Compile()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]

	assert.Equal(t, "db.d.ts", run.Name)
	assert.Equal(t, adapter.DialectMySQL, run.Dialect)
	assert.Equal(t, "mysql://root@localhost/app", run.Connection.DSN)
	assert.EqualValues(t, "mysql", run.Connection.Driver)
	assert.Equal(t, adapter.Single(adapter.PolicyString), run.Policies.Date)
	assert.Equal(t, adapter.PerType(map[string]adapter.Policy{"decimal": adapter.PolicyNumberOrString}), run.Policies.Numeric)

	assert.Equal(t, []string{"app"}, run.Introspect.Schemas)
	assert.True(t, run.Introspect.Domains)
	assert.True(t, run.Transform.CamelCase)
	assert.True(t, run.Transform.Singular)
	assert.True(t, run.Transform.Include.MatchString("users"))
	assert.Nil(t, run.Transform.Exclude)
	assert.Equal(t, transformer.EnumStylePascal, run.Transform.RuntimeEnumsStyle)
	assert.False(t, run.Serialize.TypeOnlyImports)
}

func TestCompile_Errors(t *testing.T) {
	t.Setenv("KYSELY_CODEGEN_TEST_UNSET", "")

	tests := []struct {
		name   string
		mutate func(c *Config)
		substr string
	}{
		{"print and verify", func(c *Config) { c.Print, c.Verify = true, true }, "mutually exclusive"},
		{"enum style", func(c *Config) { c.RuntimeEnumsStyle = "kebab" }, "--runtime-enums-style"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "--log-level"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "--log-format"},
		{"store provider", func(c *Config) { c.Store.Provider = "s3" }, "--store-provider"},
		{"minio without bucket", func(c *Config) { c.Store = StoreConfig{Provider: "minio", Endpoint: "x:9000"} }, "--store-bucket"},
		{"empty url", func(c *Config) { c.URL = "" }, "--url"},
		{"unset env url", func(c *Config) { c.URL = "env(KYSELY_CODEGEN_TEST_UNSET)" }, "KYSELY_CODEGEN_TEST_UNSET is not set"},
		{"uninferable dialect", func(c *Config) { c.URL = "oracle://x" }, "--dialect"},
		{"unknown dialect", func(c *Config) { c.Dialect = "oracle" }, "--dialect"},
		{"include pattern", func(c *Config) { c.IncludePattern = "(" }, "--include-pattern"},
		{"exclude pattern", func(c *Config) { c.ExcludePattern = "[" }, "--exclude-pattern"},
		{"date parser value", func(c *Config) { c.DateParser = "float" }, "--date-parser"},
		{"numeric parser key", func(c *Config) { c.NumericParser = `{"money": "number"}` }, "--numeric-parser"},
		{"parser type", func(c *Config) { c.TimestampParser = 3 }, "--timestamp-parser"},
		{"override key", func(c *Config) { c.Overrides = map[string]any{"a.b.c.d": "string"} }, "more than three parts"},
		{"override type", func(c *Config) { c.Overrides = `{"users.id": 3}` }, "--overrides"},
		{"empty out file", func(c *Config) { c.OutFile = "" }, "--out-file"},
		{"missing env file", func(c *Config) { c.EnvFile = "does-not-exist.env" }, "--env-file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			_, err := cfg.Compile()
			require.Error(t, err)
			assert.True(t, errs.IsConfig(err), "expected a config error, got %v", err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestCompile_Targets(t *testing.T) {
	cfg := validConfig()
	cfg.Schemas = []string{"public"}
	cfg.Overrides = map[string]any{"users.id": "string", "users.name": "string"}
	cfg.Targets = []Target{
		{Name: "analytics", URL: "sqlite://./analytics.db", OutFile: "analytics.d.ts", Overrides: map[string]any{"users.id": "number"}},
		{OutFile: "auth.d.ts", Schemas: []string{"auth"}},
	}

	runs, err := cfg.Compile()
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.Equal(t, "analytics", runs[1].Name)
	assert.Equal(t, adapter.DialectSQLite, runs[1].Dialect)
	assert.Equal(t, []string{"public"}, runs[1].Transform.Schemas)
	assert.Equal(t, []transformer.Override{
		{Key: "users.name", Type: ast.RawExpr("string")},
		{Key: "users.id", Type: ast.RawExpr("number")},
	}, runs[1].Transform.Overrides)

	assert.Equal(t, "auth.d.ts", runs[2].Name)
	assert.Equal(t, adapter.DialectPostgres, runs[2].Dialect)
	assert.Equal(t, []string{"auth"}, runs[2].Introspect.Schemas)

	cfg.Targets = []Target{{OutFile: "db.d.ts"}}
	_, err = cfg.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already written")
}

func TestResolveURL(t *testing.T) {
	t.Setenv("KYSELY_CODEGEN_TEST_URL", " postgres://u@h/db ")

	url, err := ResolveURL("env(KYSELY_CODEGEN_TEST_URL)", nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u@h/db", url)

	url, err = ResolveURL("mysql://root@localhost/app", nil)
	require.NoError(t, err)
	assert.Equal(t, "mysql://root@localhost/app", url)
}

func TestResolveURL_FileEnv(t *testing.T) {
	fileEnv := map[string]string{
		"KYSELY_CODEGEN_TEST_FILE_URL":  "sqlite://app.db",
		"KYSELY_CODEGEN_TEST_SHADOWED": "postgres://file/db",
	}
	t.Setenv("KYSELY_CODEGEN_TEST_SHADOWED", "postgres://process/db")

	url, err := ResolveURL("env(KYSELY_CODEGEN_TEST_FILE_URL)", fileEnv)
	require.NoError(t, err)
	assert.Equal(t, "sqlite://app.db", url)

	url, err = ResolveURL("env(KYSELY_CODEGEN_TEST_SHADOWED)", fileEnv)
	require.NoError(t, err)
	assert.Equal(t, "postgres://process/db", url, "the process environment wins over the file")

	_, err = ResolveURL("env(KYSELY_CODEGEN_TEST_NOWHERE)", fileEnv)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestCompile_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# local\nKYSELY_CODEGEN_TEST_DOTENV_URL=mysql://root@localhost/shop\n"), 0o644))

	cfg := validConfig()
	cfg.URL = "env(KYSELY_CODEGEN_TEST_DOTENV_URL)"
	cfg.EnvFile = path

	runs, err := cfg.Compile()
	require.NoError(t, err)
	assert.Equal(t, "mysql://root@localhost/shop", runs[0].Connection.DSN)
	assert.Equal(t, adapter.DialectMySQL, runs[0].Dialect)

	_, set := os.LookupEnv("KYSELY_CODEGEN_TEST_DOTENV_URL")
	assert.False(t, set, "the env file must not leak into the process environment")
}

func TestLoad_EnvFileFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	fs := newFlags()
	fs.String("env-file", "", "")
	require.NoError(t, fs.Parse([]string{"--env-file", "prod.env"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "prod.env", cfg.EnvFile)
}

func TestInferDialect(t *testing.T) {
	tests := []struct {
		url      string
		expected adapter.Dialect
	}{
		{"postgres://localhost/app", adapter.DialectPostgres},
		{"postgresql://localhost/app", adapter.DialectPostgres},
		{"MYSQL://root@localhost/app", adapter.DialectMySQL},
		{"mssql://sa@localhost/app", adapter.DialectMSSQL},
		{"sqlserver://sa@localhost?database=app", adapter.DialectMSSQL},
		{"sqlite://./app.db", adapter.DialectSQLite},
		{"file:app.db?mode=ro", adapter.DialectSQLite},
		{"./data/app.sqlite3", adapter.DialectSQLite},
		{":memory:", adapter.DialectSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			d, err := InferDialect(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}

	_, err := InferDialect("localhost:5432")
	assert.True(t, errs.IsConfig(err))
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		expected adapter.PolicySpec
	}{
		{"nil", nil, adapter.PolicySpec{}},
		{"empty", "  ", adapter.PolicySpec{}},
		{"single", "Timestamp", adapter.Single(adapter.PolicyTimestamp)},
		{"json map", `{"timestamptz": "string"}`, adapter.PerType(map[string]adapter.Policy{"timestamptz": adapter.PolicyString})},
		{"yaml map", "date: string", adapter.PerType(map[string]adapter.Policy{"date": adapter.PolicyString})},
		{"map", map[string]any{"Numeric": "number"}, adapter.PerType(map[string]adapter.Policy{"numeric": adapter.PolicyNumber})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePolicy("--x", tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := parsePolicy("--x", map[string]any{"date": 1})
	assert.True(t, errs.IsConfig(err))
}

func TestParseOverrides(t *testing.T) {
	t.Run("yaml string keeps order", func(t *testing.T) {
		out, err := parseOverrides(`{"z.col": "string", "a.col": {"select": "Date", "update": "never"}}`)
		require.NoError(t, err)
		assert.Equal(t, []transformer.Override{
			{Key: "z.col", Type: ast.RawExpr("string")},
			{Key: "a.col", Type: ast.Columns(ast.RawExpr("Date"), nil, ast.RawExpr("never"))},
		}, out)
	})

	t.Run("list", func(t *testing.T) {
		out, err := parseOverrides([]any{
			map[string]any{"key": "users.id", "type": "string"},
			map[string]any{"key": "users.at", "select": "Date", "insert": "string"},
		})
		require.NoError(t, err)
		assert.Equal(t, []transformer.Override{
			{Key: "users.id", Type: ast.RawExpr("string")},
			{Key: "users.at", Type: ast.Columns(ast.RawExpr("Date"), ast.RawExpr("string"), nil)},
		}, out)
	})

	t.Run("nested map is rejoined", func(t *testing.T) {
		out, err := parseOverrides(map[string]any{
			"public": map[string]any{"users": map[string]any{"email": "string"}},
			"int8":   "bigint",
		})
		require.NoError(t, err)
		assert.Equal(t, []transformer.Override{
			{Key: "int8", Type: ast.RawExpr("bigint")},
			{Key: "public.users.email", Type: ast.RawExpr("string")},
		}, out)
	})

	t.Run("errors", func(t *testing.T) {
		for _, in := range []any{
			`- not a map`,
			`{"users.id": ""}`,
			`{"users.id": {"select": "string", "other": "x"}}`,
			`{"users.id": {"insert": "string"}}`,
			[]any{map[string]any{"type": "string"}},
			[]any{"users.id"},
			map[string]any{"users..id": "string"},
			42,
		} {
			_, err := parseOverrides(in)
			assert.True(t, errs.IsConfig(err), "input %v", in)
		}
	})
}

func TestConfig_StoreAndLogger(t *testing.T) {
	cfg := validConfig()
	cfg.Store = StoreConfig{Provider: "MinIO", Endpoint: "localhost:9000", Bucket: "codegen", Root: "generated"}

	sc, err := cfg.StoreConfig()
	require.NoError(t, err)
	assert.Equal(t, filestore.ProviderMinIO, sc.Provider)
	assert.Equal(t, "generated", sc.Root)

	cfg.LogLevel = "silent"
	lc, err := cfg.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, "silent", lc.Level)
	assert.Equal(t, os.Stderr, lc.Output)
}
