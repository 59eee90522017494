package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/Alia5/markergen/internal/codegen/common"
	"github.com/Alia5/markergen/internal/codegen/generator"
)

type Version struct {
	JSON bool `help:"Print version information as JSON"`
}

type versionInfo struct {
	Version  string   `json:"version"`
	Major    int      `json:"major"`
	Minor    int      `json:"minor"`
	Patch    int      `json:"patch"`
	Go       string   `json:"go"`
	Variants []string `json:"variants"`
}

func (c *Version) Run() error {
	return c.print(os.Stdout)
}

func (c *Version) print(w io.Writer) error {
	v, err := common.GetVersion()
	if err != nil {
		return err
	}
	if !c.JSON {
		_, err = fmt.Fprintf(w, "markergen %s (%s)\n", v, runtime.Version())
		return err
	}
	major, minor, patch := common.ParseVersion(v)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(versionInfo{
		Version:  v,
		Major:    major,
		Minor:    minor,
		Patch:    patch,
		Go:       runtime.Version(),
		Variants: generator.Variants(),
	})
}
