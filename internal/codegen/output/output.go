// Package output writes emission units to a directory and checks an existing
// directory against a fresh pass.
//
// Every write leaves a manifest next to the units recording each unit's
// BLAKE2b-256 digest. The manifest lets the next write remove units that are
// no longer produced, without touching files markergen did not create.
package output

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/Alia5/markergen/internal/codegen/emit"
)

// ManifestName is the manifest file written into every output directory.
const ManifestName = "markergen.manifest.json"

type Manifest struct {
	Version string            `json:"version"`
	Units   map[string]string `json:"units"`
}

// Digest is the hex BLAKE2b-256 digest of a unit's text.
func Digest(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// NewManifest records units under version.
func NewManifest(version string, units []emit.Unit) *Manifest {
	m := &Manifest{Version: version, Units: make(map[string]string, len(units))}
	for _, u := range units {
		m.Units[u.Name] = Digest(u.Text)
	}
	return m
}

// Names returns the recorded unit names, sorted.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Units))
	for n := range m.Units {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ReadManifest loads dir's manifest. A missing manifest is an empty one.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{Units: map[string]string{}}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "parse manifest in %s", dir),
			"delete the manifest to regenerate the directory from scratch")
	}
	if m.Units == nil {
		m.Units = map[string]string{}
	}
	return &m, nil
}

func writeManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode manifest")
	}
	data = append(data, '\n')
	return errors.Wrap(os.WriteFile(filepath.Join(dir, ManifestName), data, 0o644), "write manifest")
}

func validName(name string) error {
	if name == "" || name == ManifestName || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.AssertionFailedf("invalid unit name %q", name)
	}
	return nil
}

// WriteResult summarizes what Write changed.
type WriteResult struct {
	Written   []string
	Unchanged []string
	Removed   []string
}

// Write stores units in dir. Files whose content already matches are left
// alone; units listed in the previous manifest but no longer produced are
// removed.
func Write(dir, version string, units []emit.Unit) (*WriteResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", dir)
	}
	prev, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	res := &WriteResult{}
	current := make(map[string]bool, len(units))
	for _, u := range units {
		if err := validName(u.Name); err != nil {
			return nil, err
		}
		current[u.Name] = true

		path := filepath.Join(dir, u.Name)
		existing, err := os.ReadFile(path)
		if err == nil && bytes.Equal(existing, []byte(u.Text)) {
			res.Unchanged = append(res.Unchanged, u.Name)
			continue
		}
		if err := os.WriteFile(path, []byte(u.Text), 0o644); err != nil {
			return nil, errors.Wrapf(err, "write unit %s", u.Name)
		}
		res.Written = append(res.Written, u.Name)
	}

	for _, name := range prev.Names() {
		if current[name] || validName(name) != nil {
			continue
		}
		err := os.Remove(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(err, "remove stale unit %s", name)
		}
		res.Removed = append(res.Removed, name)
	}

	if err := writeManifest(dir, NewManifest(version, units)); err != nil {
		return nil, err
	}
	return res, nil
}

// CheckResult lists how dir differs from a fresh pass.
type CheckResult struct {
	Missing []string
	Stale   []string
	// Extra holds units a previous write recorded that are no longer produced.
	Extra []string
}

// UpToDate reports whether dir matches the pass exactly.
func (r *CheckResult) UpToDate() bool {
	return len(r.Missing) == 0 && len(r.Stale) == 0 && len(r.Extra) == 0
}

// Check compares dir with units without writing anything.
func Check(dir string, units []emit.Unit) (*CheckResult, error) {
	prev, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	res := &CheckResult{}
	current := make(map[string]bool, len(units))
	for _, u := range units {
		if err := validName(u.Name); err != nil {
			return nil, err
		}
		current[u.Name] = true

		existing, err := os.ReadFile(filepath.Join(dir, u.Name))
		switch {
		case errors.Is(err, os.ErrNotExist):
			res.Missing = append(res.Missing, u.Name)
		case err != nil:
			return nil, errors.Wrapf(err, "read unit %s", u.Name)
		case !bytes.Equal(existing, []byte(u.Text)):
			res.Stale = append(res.Stale, u.Name)
		}
	}

	for _, name := range prev.Names() {
		if current[name] {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			res.Extra = append(res.Extra, name)
		}
	}

	sort.Strings(res.Missing)
	sort.Strings(res.Stale)
	return res, nil
}
