package factors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"footprint/internal/core"
)

var errNotAList = errors.New("source is not a list of factor records")

// record mirrors one entry of the static source. Pointers tell a missing
// field apart from a zero value.
type record struct {
	Type    *string  `json:"type" yaml:"type"`
	Subtype *string  `json:"subtype" yaml:"subtype"`
	Factor  *float64 `json:"factor" yaml:"factor"`
	Unit    *string  `json:"unit" yaml:"unit"`
}

// parse decodes data into factors, failing on the first bad record so a
// malformed source never yields a partial table.
func parse(src Source, data []byte) ([]core.EmissionFactor, error) {
	if err := src.Format.validate(); err != nil {
		return nil, &core.LoadError{Source: src.Name, Index: -1, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &core.LoadError{Source: src.Name, Index: -1, Err: errors.New("source is empty")}
	}

	var records []record
	var err error
	switch src.Format {
	case FormatYAML:
		records, err = decodeYAML(src.Name, data)
	default:
		records, err = decodeJSON(src.Name, data)
	}
	if err != nil {
		return nil, err
	}

	out := make([]core.EmissionFactor, 0, len(records))
	for i, rec := range records {
		f, err := rec.toFactor()
		if err != nil {
			return nil, &core.LoadError{Source: src.Name, Index: i, Err: err}
		}
		out = append(out, f)
	}
	return out, nil
}

func decodeJSON(name string, data []byte) ([]record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &core.LoadError{Source: name, Index: -1, Err: fmt.Errorf("%w: %v", errNotAList, err)}
	}
	if raw == nil {
		return nil, &core.LoadError{Source: name, Index: -1, Err: errNotAList}
	}
	records := make([]record, len(raw))
	for i, msg := range raw {
		if err := json.Unmarshal(msg, &records[i]); err != nil {
			return nil, &core.LoadError{Source: name, Index: i, Err: err}
		}
	}
	return records, nil
}

func decodeYAML(name string, data []byte) ([]record, error) {
	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, &core.LoadError{Source: name, Index: -1, Err: fmt.Errorf("%w: %v", errNotAList, err)}
	}
	if nodes == nil {
		return nil, &core.LoadError{Source: name, Index: -1, Err: errNotAList}
	}
	records := make([]record, len(nodes))
	for i := range nodes {
		if nodes[i].Kind != yaml.MappingNode {
			return nil, &core.LoadError{Source: name, Index: i, Err: errors.New("record is not a mapping")}
		}
		if err := checkYAMLStrings(&nodes[i]); err != nil {
			return nil, &core.LoadError{Source: name, Index: i, Err: err}
		}
		if err := nodes[i].Decode(&records[i]); err != nil {
			return nil, &core.LoadError{Source: name, Index: i, Err: err}
		}
	}
	return records, nil
}

// checkYAMLStrings rejects untagged numbers and booleans in text fields,
// which yaml.v3 would otherwise decode into strings.
func checkYAMLStrings(n *yaml.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch k.Value {
		case "type", "subtype", "unit":
		default:
			continue
		}
		if v.Tag == "!!null" {
			continue
		}
		if v.Kind != yaml.ScalarNode || v.Tag != "!!str" {
			return fmt.Errorf("field %q must be a string, got %s", k.Value, v.Tag)
		}
	}
	return nil
}

func (r record) toFactor() (core.EmissionFactor, error) {
	switch {
	case r.Type == nil:
		return core.EmissionFactor{}, errors.New(`missing field "type"`)
	case r.Subtype == nil:
		return core.EmissionFactor{}, errors.New(`missing field "subtype"`)
	case r.Factor == nil:
		return core.EmissionFactor{}, errors.New(`missing field "factor"`)
	case r.Unit == nil:
		return core.EmissionFactor{}, errors.New(`missing field "unit"`)
	}
	if math.IsNaN(*r.Factor) || math.IsInf(*r.Factor, 0) || *r.Factor < 0 {
		return core.EmissionFactor{}, fmt.Errorf("factor %v is not a non-negative number", *r.Factor)
	}
	return core.EmissionFactor{
		Category: *r.Type,
		Subtype:  *r.Subtype,
		Factor:   *r.Factor,
		Unit:     *r.Unit,
	}, nil
}
