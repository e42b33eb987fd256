package artifact

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orbis-globe/data-engine/internal/config"
	"github.com/orbis-globe/data-engine/internal/domain"
)

// ErrNotFound is returned by Read when no artifact exists yet.
var ErrNotFound = errors.New("artifact not found")

// Read loads the artifact at path. The format is detected from the content
// so that a file written under a different ARTIFACT_FORMAT is still usable.
func Read(path string) (domain.Artifact, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Artifact{}, ErrNotFound
	}
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("read artifact: %w", err)
	}
	a, err := Decode(data)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	return a, nil
}

// Decode parses an artifact in any supported format.
func Decode(data []byte) (domain.Artifact, error) {
	switch DetectFormat(data) {
	case config.FormatJS:
		return decodeJS(data)
	case config.FormatJSON:
		return decodeJSON(data)
	default:
		return decodeYAML(data)
	}
}

// DetectFormat guesses the format from the first line that is not blank or
// a comment.
func DetectFormat(data []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "", strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "//"):
			return config.FormatJS
		case strings.HasPrefix(line, "export "):
			return config.FormatJS
		case strings.HasPrefix(line, "{"):
			return config.FormatJSON
		default:
			return config.FormatYAML
		}
	}
	return config.FormatYAML
}

func decodeJS(data []byte) (domain.Artifact, error) {
	a := domain.Artifact{GeneratedAt: headerTime(data, "//")}

	targets := []struct {
		name string
		dst  any
	}{
		{exportCountries, &a.Countries},
		{exportEvents, &a.GlobalEvents},
		{exportSeismic, &a.SeismicData},
	}
	for _, t := range targets {
		marker := []byte("export const " + t.name + " =")
		idx := bytes.Index(data, marker)
		if idx < 0 {
			return domain.Artifact{}, fmt.Errorf("missing export %s", t.name)
		}
		dec := json.NewDecoder(bytes.NewReader(data[idx+len(marker):]))
		if err := dec.Decode(t.dst); err != nil {
			return domain.Artifact{}, fmt.Errorf("decode %s: %w", t.name, err)
		}
	}
	return a, nil
}

func decodeJSON(data []byte) (domain.Artifact, error) {
	var a domain.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return domain.Artifact{}, err
	}
	return a, nil
}

func decodeYAML(data []byte) (domain.Artifact, error) {
	var a domain.Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return domain.Artifact{}, err
	}
	// An empty or scalar document decodes without error but is not an artifact.
	var top map[string]any
	if err := yaml.Unmarshal(data, &top); err != nil || top == nil {
		return domain.Artifact{}, errors.New("document is not a mapping")
	}
	if _, ok := top[exportCountries]; !ok {
		return domain.Artifact{}, fmt.Errorf("missing %s", exportCountries)
	}
	a.GeneratedAt = headerTime(data, "#")
	return a, nil
}

// headerTime extracts the generation stamp from the comment header. A missing
// or unparsable stamp yields the zero time.
func headerTime(data []byte, prefix string) time.Time {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, prefix) {
			if line == "" {
				continue
			}
			break
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, prefix))
		if stamp, ok := strings.CutPrefix(rest, headerStamp); ok {
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(stamp))
			if err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}
