package config

import "github.com/Alia5/markergen/internal/cmd"

// Log configures the process-wide logger and the unit dump.
type Log struct {
	Level    string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"MARKERGEN_LOG_LEVEL"`
	File     string `help:"Also write logs to this file" env:"MARKERGEN_LOG_FILE"`
	Format   string `help:"Log output format" enum:"text,json" default:"text" env:"MARKERGEN_LOG_FORMAT"`
	DumpFile string `help:"Write every generated unit to this file (trace level dumps to stdout)" env:"MARKERGEN_LOG_DUMP_FILE"`
}

// CLI is the root command line of markergen.
type CLI struct {
	ConfigFile string `name:"config" help:"Path to a configuration file (json, yaml or toml)" env:"MARKERGEN_CONFIG" type:"path"`
	Log        Log    `embed:"" prefix:"log."`

	Generate cmd.Generate      `cmd:"" help:"Generate source units from a declaration model"`
	Check    cmd.Check         `cmd:"" help:"Verify generated units are up to date"`
	Watch    cmd.Watch         `cmd:"" help:"Regenerate whenever the model changes"`
	Config   cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
	Version  cmd.Version       `cmd:"" help:"Print version information"`
}
