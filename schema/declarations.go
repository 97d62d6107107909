package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/syssam/rowmap/schema/field"
)

// TableSpec is the file form of a Mapping, keyed by Go type name in a
// declarations document:
//
//	tables:
//	  User:
//	    table: users
//	    schema: main
//	    keys: [ID]
//	    columns:
//	      Name: {name: full_name, type: string}
//	      Nickname: {nullable: true}
//	      Secret: {skip: true}
type TableSpec struct {
	Table   string                `yaml:"table"`
	Schema  string                `yaml:"schema"`
	Keys    []string              `yaml:"keys"`
	Columns map[string]ColumnSpec `yaml:"-"`
}

type declarationsFile struct {
	Tables map[string]tableSpecFile `yaml:"tables"`
}

type tableSpecFile struct {
	Table   string                    `yaml:"table"`
	Schema  string                    `yaml:"schema"`
	Keys    []string                  `yaml:"keys"`
	Columns map[string]columnSpecFile `yaml:"columns"`
}

type columnSpecFile struct {
	ColumnSpec `yaml:",inline"`
	Type       string `yaml:"type"`
}

// ParseDeclarations parses a YAML declarations document into table specs
// keyed by Go type name.
func ParseDeclarations(data []byte) (map[string]TableSpec, error) {
	var f declarationsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("schema: parse declarations: %w", err)
	}
	specs := make(map[string]TableSpec, len(f.Tables))
	for name, tf := range f.Tables {
		spec := TableSpec{
			Table:   tf.Table,
			Schema:  tf.Schema,
			Keys:    tf.Keys,
			Columns: make(map[string]ColumnSpec, len(tf.Columns)),
		}
		for fname, cf := range tf.Columns {
			cs := cf.ColumnSpec
			if cf.Type != "" {
				t, err := field.ParseType(cf.Type)
				if err != nil {
					return nil, fmt.Errorf("schema: parse declarations: %s.%s: %w", name, fname, err)
				}
				cs.Type = t
			}
			spec.Columns[fname] = cs
		}
		specs[name] = spec
	}
	return specs, nil
}
