package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Risk is the three-way heuristic classification shown on the dashboard.
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// Valid reports whether r is one of the three known classifications.
func (r Risk) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	default:
		return false
	}
}

// Segment is one economic sector share in percent.
type Segment struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// CountryRecord is the display record for one country, keyed by its
// Natural Earth name in the artifact.
type CountryRecord struct {
	Name        string    `json:"name" yaml:"name"`
	Code        string    `json:"code" yaml:"code"`
	GDP         string    `json:"gdp" yaml:"gdp"`
	Population  string    `json:"population" yaml:"population"`
	Growth      string    `json:"growth" yaml:"growth"`
	Segments    []Segment `json:"segments" yaml:"segments"`
	ActiveUsers string    `json:"activeUsers" yaml:"activeUsers"`
	Risk        Risk      `json:"risk" yaml:"risk"`

	// Hand-curated fields, copied as written from earlier artifacts.
	Demographics RawValue `json:"demographics,omitempty" yaml:"demographics,omitempty"`
	DataYear     RawValue `json:"dataYear,omitempty" yaml:"dataYear,omitempty"`
}

// Curated fields present in a prior record, used when decoding one that does
// not match the schema.
type curatedFields struct {
	Demographics RawValue `json:"demographics"`
	DataYear     RawValue `json:"dataYear"`
}

// Countries is an insertion-ordered table of country records keyed by name.
// Encoding preserves the order so that identical inputs produce identical
// artifacts. Records decoded from an artifact also keep their document form,
// which is what gets encoded again, so fields this job does not know about
// survive. The zero value is ready to use.
type Countries struct {
	names   []string
	records map[string]CountryRecord
	raw     map[string]RawValue
	errs    map[string]error
}

// Set inserts or replaces the record stored under name. Replacing keeps the
// original position and discards any decoded document form.
func (c *Countries) Set(name string, rec CountryRecord) {
	c.put(name, rec, nil, nil)
}

func (c *Countries) put(name string, rec CountryRecord, raw RawValue, decodeErr error) {
	if c.records == nil {
		c.records = make(map[string]CountryRecord)
	}
	if _, ok := c.records[name]; !ok {
		c.names = append(c.names, name)
	}
	c.records[name] = rec

	if raw == nil {
		delete(c.raw, name)
	} else {
		if c.raw == nil {
			c.raw = make(map[string]RawValue)
		}
		c.raw[name] = raw
	}
	if decodeErr == nil {
		delete(c.errs, name)
	} else {
		if c.errs == nil {
			c.errs = make(map[string]error)
		}
		c.errs[name] = decodeErr
	}
}

// carry copies the entry for name from src, document form included.
func (c *Countries) carry(src Countries, name string) {
	c.put(name, src.records[name], src.raw[name], src.errs[name])
}

// Get returns the record stored under name.
func (c Countries) Get(name string) (CountryRecord, bool) {
	rec, ok := c.records[name]
	return rec, ok
}

// DecodeErr returns why the decoded record under name did not match the
// record schema, or nil. Such a record is still encoded as it was read; Get
// returns only its curated fields.
func (c Countries) DecodeErr(name string) error {
	return c.errs[name]
}

// Len returns the number of records.
func (c Countries) Len() int { return len(c.names) }

// Names returns the keys in insertion order.
func (c Countries) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Records returns the records in insertion order.
func (c Countries) Records() []CountryRecord {
	out := make([]CountryRecord, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.records[name])
	}
	return out
}

// MarshalJSON encodes the table as a JSON object in insertion order.
func (c Countries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(name)
		if err != nil {
			return nil, err
		}
		val, ok := c.raw[name]
		if !ok {
			if val, err = marshalNoEscape(c.records[name]); err != nil {
				return nil, fmt.Errorf("encode country %q: %w", name, err)
			}
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the document.
// A record that does not fit CountryRecord is kept in document form with its
// error available from DecodeErr; only invalid JSON fails the whole table.
func (c *Countries) UnmarshalJSON(data []byte) error {
	*c = Countries{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("country table must be a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected country key %v", tok)
		}
		var raw RawValue
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode country %q: %w", name, err)
		}
		c.putDecoded(name, raw)
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML encodes the table as an ordered YAML mapping.
func (c Countries) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range c.names {
		var val yaml.Node
		var err error
		if raw, ok := c.raw[name]; ok {
			err = val.Encode(raw)
		} else {
			err = val.Encode(c.records[name])
		}
		if err != nil {
			return nil, fmt.Errorf("encode country %q: %w", name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&val,
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping, keeping the key order of the document.
// Records are handled as in UnmarshalJSON.
func (c *Countries) UnmarshalYAML(value *yaml.Node) error {
	*c = Countries{}
	if value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("country table must be a mapping, line %d", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		name := value.Content[i].Value
		raw, err := nodeJSON(value.Content[i+1])
		if err != nil {
			return fmt.Errorf("decode country %q: %w", name, err)
		}
		c.putDecoded(name, raw)
	}
	return nil
}

// putDecoded stores a record read from an artifact along with its document
// form.
func (c *Countries) putDecoded(name string, raw RawValue) {
	if raw == nil {
		raw = RawValue("null")
	}
	var rec CountryRecord
	err := json.Unmarshal(raw, &rec)
	if err != nil {
		rec = CountryRecord{}
		var cur curatedFields
		if json.Unmarshal(raw, &cur) == nil {
			rec.Demographics = cur.Demographics
			rec.DataYear = cur.DataYear
		}
	}
	c.put(name, rec, raw, err)
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
