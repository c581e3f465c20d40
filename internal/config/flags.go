package config

import "flag"

// Flags holds the command-line overrides shared by the subcommands.
type Flags struct {
	Config        *string
	Debug         *bool
	OutputDir     *string
	FormatVersion *int
	Policy        *string
	NoUVs         *bool
	LogFile       *string
}

// RegisterFlags defines the config flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:        fs.String("config", "", "Path to config file (.yaml or .toml)"),
		Debug:         fs.Bool("debug", false, "Enable debug logging"),
		OutputDir:     fs.String("out", "", "Directory for exported mesh files"),
		FormatVersion: fs.Int("format", 0, "Mesh format version (1 or 2)"),
		Policy:        fs.String("policy", "", "Vertex merge policy (dedup or flat)"),
		NoUVs:         fs.Bool("no-uvs", false, "Export without UV channels"),
		LogFile:       fs.String("log-file", "", "Write logs to this file"),
	}
}

// ConfigPath returns the explicit config path if provided via --config flag.
func (f *Flags) ConfigPath() string {
	if f == nil || f.Config == nil {
		return ""
	}
	return *f.Config
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug != nil && *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.OutputDir != nil && *f.OutputDir != "" {
		cfg.Export.OutputDir = *f.OutputDir
	}
	if f.FormatVersion != nil && *f.FormatVersion > 0 {
		cfg.Export.FormatVersion = *f.FormatVersion
	}
	if f.Policy != nil && *f.Policy != "" {
		cfg.Export.Policy = *f.Policy
	}
	if f.NoUVs != nil && *f.NoUVs {
		cfg.Export.IncludeUVs = false
	}
	if f.LogFile != nil && *f.LogFile != "" {
		cfg.Logging.LogFile = *f.LogFile
	}
}
