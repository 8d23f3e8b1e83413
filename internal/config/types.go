// Package config loads kysely-codegen settings from defaults, a YAML file,
// KYSELY_CODEGEN_* environment variables and command-line flags, and
// compiles them into validated runs.
package config

// Config holds every user-facing option.
type Config struct {
	URL     string `koanf:"url"`
	// EnvFile is a dotenv file consulted when resolving env(NAME) urls.
	EnvFile string `koanf:"env_file"`
	Dialect string `koanf:"dialect"`
	OutFile string `koanf:"out_file"`
	Print   bool   `koanf:"print"`
	Verify  bool   `koanf:"verify"`

	CamelCase bool `koanf:"camel_case"`
	Singular  bool `koanf:"singular"`

	Schemas        []string `koanf:"schemas"`
	IncludePattern string   `koanf:"include_pattern"`
	ExcludePattern string   `koanf:"exclude_pattern"`
	Partitions     bool     `koanf:"partitions"`
	Domains        bool     `koanf:"domains"`

	RuntimeEnums      bool   `koanf:"runtime_enums"`
	RuntimeEnumsStyle string `koanf:"runtime_enums_style"`
	TypeOnlyImports   bool   `koanf:"type_only_imports"`

	// The parser options take either a single policy or a map of native
	// type to policy, given inline or as a YAML/JSON string.
	DateParser      any `koanf:"date_parser"`
	TimestampParser any `koanf:"timestamp_parser"`
	NumericParser   any `koanf:"numeric_parser"`

	// Overrides maps a column or native type to a TypeScript type. See
	// parseOverrides for the accepted shapes.
	Overrides any `koanf:"overrides"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	Store   StoreConfig `koanf:"store"`
	Targets []Target    `koanf:"targets"`
}

// StoreConfig selects where artifacts are read and written.
type StoreConfig struct {
	Provider  string `koanf:"provider"`
	Root      string `koanf:"root"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// Target is an additional run generated alongside the main one. Empty
// fields inherit the top-level value.
type Target struct {
	Name           string   `koanf:"name"`
	URL            string   `koanf:"url"`
	Dialect        string   `koanf:"dialect"`
	OutFile        string   `koanf:"out_file"`
	Schemas        []string `koanf:"schemas"`
	IncludePattern string   `koanf:"include_pattern"`
	ExcludePattern string   `koanf:"exclude_pattern"`
	Overrides      any      `koanf:"overrides"`
}

// Default configuration values
const (
	DefaultURL               = "env(DATABASE_URL)"
	DefaultOutFile           = "./node_modules/kysely-codegen/dist/db.d.ts"
	DefaultLogLevel          = "warn"
	DefaultLogFormat         = "console"
	DefaultRuntimeEnumsStyle = "screaming-snake-case"
	DefaultStoreProvider     = "local"
	DefaultConfigFile        = "kysely-codegen.yaml"
	EnvPrefix                = "KYSELY_CODEGEN_"
)
