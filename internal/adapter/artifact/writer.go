// Package artifact reads and writes the generated data file consumed by the
// globe dashboard.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orbis-globe/data-engine/internal/config"
	"github.com/orbis-globe/data-engine/internal/domain"
)

const (
	headerTitle   = "AUTO-GENERATED BY ORBIS DATA ENGINE"
	headerStamp   = "Generated at "
	headerWarning = "DO NOT EDIT MANUALLY"

	jsIndent = "    "
)

// Export names in the JS module.
const (
	exportCountries = "countryData"
	exportEvents    = "globalEvents"
	exportSeismic   = "seismicData"
)

// Encode renders a in the given format. Nil event slices are written as
// empty arrays.
func Encode(a domain.Artifact, format string) ([]byte, error) {
	if a.GlobalEvents == nil {
		a.GlobalEvents = []domain.HazardEvent{}
	}
	if a.SeismicData == nil {
		a.SeismicData = []domain.HazardEvent{}
	}
	a.GeneratedAt = a.GeneratedAt.UTC().Truncate(time.Second)

	switch format {
	case config.FormatJS, "":
		return encodeJS(a)
	case config.FormatJSON:
		return encodeJSON(a)
	case config.FormatYAML:
		return encodeYAML(a)
	default:
		return nil, fmt.Errorf("unknown artifact format %q", format)
	}
}

func encodeJS(a domain.Artifact) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// %s\n// %s%s\n// %s\n",
		headerTitle, headerStamp, a.GeneratedAt.Format(time.RFC3339), headerWarning)

	exports := []struct {
		name  string
		value any
	}{
		{exportCountries, a.Countries},
		{exportEvents, a.GlobalEvents},
		{exportSeismic, a.SeismicData},
	}
	for _, e := range exports {
		body, err := indentJSON(e.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", e.name, err)
		}
		fmt.Fprintf(&buf, "\nexport const %s = %s;\n", e.name, body)
	}
	return buf.Bytes(), nil
}

func encodeJSON(a domain.Artifact) ([]byte, error) {
	body, err := indentJSON(a)
	if err != nil {
		return nil, err
	}
	return append(body, '\n'), nil
}

func encodeYAML(a domain.Artifact) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n# %s%s\n# %s\n",
		headerTitle, headerStamp, a.GeneratedAt.Format(time.RFC3339), headerWarning)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func indentJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsIndent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Write encodes a and atomically replaces path with the result. It returns
// the number of bytes written.
func Write(path string, a domain.Artifact, format string) (int, error) {
	data, err := Encode(a, format)
	if err != nil {
		return 0, err
	}
	if err := writeAtomic(path, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// writeAtomic writes to a temporary file in the target directory and renames
// it over path, so readers never observe a partial artifact.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp artifact: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp artifact: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}
