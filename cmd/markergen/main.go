package main

import (
	"os"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/joho/godotenv"

	"github.com/Alia5/markergen/internal/config"
	"github.com/Alia5/markergen/internal/configpaths"
	"github.com/Alia5/markergen/internal/log"
)

func main() {
	// A .env in the working directory may supply MARKERGEN_* settings.
	_ = godotenv.Load()

	userCfg := configpaths.FindUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("markergen"),
		kong.Description("Marker-driven C# source generator"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File, cli.Log.Format)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	var dumper log.UnitDumper
	if cli.Log.DumpFile != "" {
		f, err := os.OpenFile(cli.Log.DumpFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open unit dump file", "file", cli.Log.DumpFile, "error", err)
			dumper = log.NewUnitDumper(nil)
		} else {
			dumper = log.NewUnitDumper(f)
			closeFiles = append(closeFiles, f)
		}
	} else if cli.Log.Level == "trace" {
		dumper = log.NewUnitDumper(os.Stdout)
	} else {
		dumper = log.NewUnitDumper(nil)
	}

	ctx.Bind(logger)
	ctx.BindTo(dumper, (*log.UnitDumper)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
