package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/markergen/internal/codegen/output"
	"github.com/Alia5/markergen/internal/log"
	gentest "github.com/Alia5/markergen/internal/testing"
)

const viewModel = "../codegen/model/testdata/viewmodel.yaml"

func passOptions(t *testing.T) PassOptions {
	t.Helper()
	return PassOptions{
		Model:  viewModel,
		Output: t.TempDir(),
		Jobs:   2,
		Color:  "never",
	}
}

func TestGenerateWritesUnits(t *testing.T) {
	gen := Generate{PassOptions: passOptions(t)}
	var dump bytes.Buffer
	err := gen.Generate(context.Background(), gentest.Logger(), log.NewUnitDumper(&dump))
	require.NoError(t, err)

	for _, name := range []string{
		"AutoNotifyAttribute.cs",
		"JsonElementWrapper.cs",
		"ExampleViewModel_autoNotify.cs",
		output.ManifestName,
	} {
		assert.FileExists(t, filepath.Join(gen.Output, name))
	}
	text, err := os.ReadFile(filepath.Join(gen.Output, "ExampleViewModel_autoNotify.cs"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "public virtual int Count")
	assert.Contains(t, dump.String(), "unit ExampleViewModel_autoNotify.cs:")

	m, err := output.ReadManifest(gen.Output)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"AutoNotifyAttribute.cs",
		"ExampleViewModel_autoNotify.cs",
		"JsonElementWrapper.cs",
	}, m.Names())
}

func TestGenerateSelectedVariant(t *testing.T) {
	gen := Generate{PassOptions: passOptions(t)}
	gen.Variants = []string{"jsonwrapper"}
	require.NoError(t, gen.Generate(context.Background(), gentest.Logger(), log.NewUnitDumper(nil)))

	assert.FileExists(t, filepath.Join(gen.Output, "JsonElementWrapper.cs"))
	assert.NoFileExists(t, filepath.Join(gen.Output, "AutoNotifyAttribute.cs"))
}

func TestGenerateReportsDiagnostics(t *testing.T) {
	model := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(model, []byte(`
types:
  - name: VM
    namespace: Demo
    fields:
      - name: _
        type: int
        attributes:
          - type: AutoNotify.AutoNotifyAttribute
`), 0o644))

	gen := Generate{PassOptions: passOptions(t)}
	gen.Model = model
	var diags bytes.Buffer
	_, err := gen.passTo(context.Background(), gentest.Logger(), log.NewUnitDumper(nil), &diags)
	require.NoError(t, err)
	assert.Contains(t, diags.String(), "NSG001")

	err = gen.Generate(context.Background(), gentest.Logger(), log.NewUnitDumper(nil))
	assert.ErrorIs(t, err, errDiagnostics)
	// The marker units are still written.
	assert.FileExists(t, filepath.Join(gen.Output, "AutoNotifyAttribute.cs"))
}

func TestGenerateMissingModel(t *testing.T) {
	gen := Generate{PassOptions: passOptions(t)}
	gen.Model = filepath.Join(t.TempDir(), "nope.yaml")
	err := gen.Generate(context.Background(), gentest.Logger(), log.NewUnitDumper(nil))
	assert.Error(t, err)
}

func TestGenerateUnknownVariant(t *testing.T) {
	gen := Generate{PassOptions: passOptions(t)}
	gen.Variants = []string{"protobuf"}
	err := gen.Generate(context.Background(), gentest.Logger(), log.NewUnitDumper(nil))
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "autonotify")
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := Generate{PassOptions: passOptions(t)}
	err := gen.Generate(ctx, gentest.Logger(), log.NewUnitDumper(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interrupted")
	assert.NoFileExists(t, filepath.Join(gen.Output, output.ManifestName))
}

func TestCheck(t *testing.T) {
	opts := passOptions(t)
	ctx := context.Background()
	dumper := log.NewUnitDumper(nil)

	check := Check{PassOptions: opts}
	var out bytes.Buffer
	err := check.Check(ctx, gentest.Logger(), dumper, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "missing  ExampleViewModel_autoNotify.cs")
	assert.Contains(t, errors.FlattenHints(err), "markergen generate")

	gen := Generate{PassOptions: opts}
	require.NoError(t, gen.Generate(ctx, gentest.Logger(), dumper))

	out.Reset()
	require.NoError(t, check.Check(ctx, gentest.Logger(), dumper, &out))
	assert.Contains(t, out.String(), "is up to date (3 units)")

	unit := filepath.Join(opts.Output, "ExampleViewModel_autoNotify.cs")
	require.NoError(t, os.WriteFile(unit, []byte("// edited\n"), 0o644))
	out.Reset()
	require.Error(t, check.Check(ctx, gentest.Logger(), dumper, &out))
	assert.Contains(t, out.String(), "stale    ExampleViewModel_autoNotify.cs")
}

func TestCheckExtraUnit(t *testing.T) {
	opts := passOptions(t)
	ctx := context.Background()
	dumper := log.NewUnitDumper(nil)

	gen := Generate{PassOptions: opts}
	require.NoError(t, gen.Generate(ctx, gentest.Logger(), dumper))

	check := Check{PassOptions: opts}
	check.Variants = []string{"jsonwrapper"}
	var out bytes.Buffer
	require.Error(t, check.Check(ctx, gentest.Logger(), dumper, &out))
	assert.Contains(t, out.String(), "extra    AutoNotifyAttribute.cs")
	assert.Contains(t, out.String(), "extra    ExampleViewModel_autoNotify.cs")
}

func TestConfigInit(t *testing.T) {
	tests := []struct {
		command string
		format  string
		decode  func([]byte, any) error
		keys    []string
	}{
		{"generate", "json", json.Unmarshal, []string{"model", "output", "variants", "jobs", "color"}},
		{"check", "yaml", yaml.Unmarshal, []string{"model", "output", "variants", "jobs", "color"}},
		{"watch", "toml", toml.Unmarshal, []string{"model", "output", "variants", "jobs", "color", "debounce"}},
	}
	for _, tt := range tests {
		t.Run(tt.command+"/"+tt.format, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "cfg", "markergen."+tt.format)
			c := ConfigInit{Command: tt.command, Format: tt.format, Output: dest}
			require.NoError(t, c.Run())

			data, err := os.ReadFile(dest)
			require.NoError(t, err)
			got := map[string]any{}
			require.NoError(t, tt.decode(data, &got))
			for _, k := range tt.keys {
				assert.Contains(t, got, k)
			}
			assert.Len(t, got, len(tt.keys))
			assert.Equal(t, "./generated", got["output"])
			assert.Equal(t, "auto", got["color"])
			assert.Empty(t, got["variants"])
			if tt.command == "watch" {
				assert.Equal(t, "200ms", got["debounce"])
			}
		})
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "markergen.json")
	require.NoError(t, os.WriteFile(dest, []byte("{}"), 0o644))

	c := ConfigInit{Command: "generate", Format: "json", Output: dest}
	err := c.Run()
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--force")

	c.Force = true
	require.NoError(t, c.Run())
}

func TestConfigInitUnknown(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "markergen.json")
	assert.Error(t, (&ConfigInit{Command: "serve", Format: "json", Output: dest}).Run())
	assert.Error(t, (&ConfigInit{Command: "generate", Format: "ini", Output: dest}).Run())
	assert.NoFileExists(t, dest)
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, (&PassOptions{Color: "always"}).useColor(&buf))
	assert.False(t, (&PassOptions{Color: "never"}).useColor(&buf))
	assert.False(t, (&PassOptions{Color: "auto"}).useColor(&buf))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, (&PassOptions{Color: "auto"}).useColor(os.Stdout))
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&Version{}).print(&out))
	assert.Regexp(t, `^markergen \S+ \(go`, out.String())

	out.Reset()
	require.NoError(t, (&Version{JSON: true}).print(&out))
	var info versionInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, []string{"autonotify", "jsonwrapper"}, info.Variants)
	assert.NotEmpty(t, info.Version)
}

func TestConfigInitGlobal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("AppData", home)

	c := ConfigInit{Command: "generate", Format: "yaml", Global: true}
	require.NoError(t, c.Run())
	assert.FileExists(t, filepath.Join(home, "markergen", "config.yaml"))
}

func TestDefaultValueForSlice(t *testing.T) {
	assert.Equal(t, []string{}, defaultValueForField(reflect.TypeOf([]string(nil)), ""))
	assert.Equal(t, []string{"autonotify", "jsonwrapper"}, defaultValueForField(reflect.TypeOf([]string(nil)), "autonotify,jsonwrapper"))
}
