package schema

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlDoc is the on-disk form of a set of record type definitions:
//
//	models:
//	  - name: User
//	    fields:
//	      name: {type: string, required: true, max_len: 150}
//	      password: {type: password}
//	    associations:
//	      - {kind: to_many, name: Tasks, target: Task}
type yamlDoc struct {
	Models []yamlModel `yaml:"models"`
}

type yamlModel struct {
	Name         string               `yaml:"name"`
	Table        string               `yaml:"table"`
	PrimaryKey   string               `yaml:"primary_key"`
	Fields       map[string]yamlField `yaml:"fields"`
	Associations []yamlAssociation    `yaml:"associations"`
}

type yamlField struct {
	Type        string      `yaml:"type"`
	Description string      `yaml:"description"`
	Required    bool        `yaml:"required"`
	ReadOnly    bool        `yaml:"read_only"`
	Hidden      bool        `yaml:"hidden"`
	Default     interface{} `yaml:"default"`
	MinLen      int         `yaml:"min_len"`
	MaxLen      int         `yaml:"max_len"`
	Regexp      string      `yaml:"regexp"`
	Allowed     []string    `yaml:"allowed"`
}

type yamlAssociation struct {
	Kind       string `yaml:"kind"`
	Name       string `yaml:"name"`
	Target     string `yaml:"target"`
	ForeignKey string `yaml:"foreign_key"`
	Through    string `yaml:"through"`
	SourceKey  string `yaml:"source_key"`
	TargetKey  string `yaml:"target_key"`
}

// LoadYAML reads record type definitions from r. Association targets are
// returned unresolved (as Name); add the models to an Index and compile it.
func LoadYAML(r io.Reader) ([]*Model, error) {
	var doc yamlDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode models: %w", err)
	}
	models := make([]*Model, 0, len(doc.Models))
	for _, ym := range doc.Models {
		m := &Model{
			Name:       ym.Name,
			Table:      ym.Table,
			PrimaryKey: ym.PrimaryKey,
			Fields:     Fields{},
		}
		for name, yf := range ym.Fields {
			f, err := yf.field()
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", ym.Name, name, err)
			}
			m.Fields[name] = f
		}
		for _, ya := range ym.Associations {
			kind, err := ParseKind(ya.Kind)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", ym.Name, ya.Name, err)
			}
			a := &Association{
				Kind:       kind,
				Name:       ya.Name,
				Target:     Name(ya.Target),
				ForeignKey: ya.ForeignKey,
			}
			if ya.Through != "" {
				a.Through = &Through{
					Model:     Name(ya.Through),
					SourceKey: ya.SourceKey,
					TargetKey: ya.TargetKey,
				}
			}
			m.Associations = append(m.Associations, a)
		}
		models = append(models, m)
	}
	return models, nil
}

func (yf yamlField) field() (Field, error) {
	var f Field
	switch yf.Type {
	case "id":
		f = IDField
	case "uuid":
		f = UUIDField
	case "serial":
		f = SerialField
	case "created":
		f = CreatedField
	case "updated":
		f = UpdatedField
	case "password":
		f = PasswordField
		f.Validator = &Password{MinLen: yf.MinLen, MaxLen: yf.MaxLen}
	case "string", "":
		f.Validator = &String{MinLen: yf.MinLen, MaxLen: yf.MaxLen, Regexp: yf.Regexp, Allowed: yf.Allowed}
	case "integer":
		f.Validator = &Integer{}
	case "float":
		f.Validator = &Float{}
	case "bool":
		f.Validator = &Bool{}
	case "time":
		f.Validator = &Time{}
	default:
		return f, fmt.Errorf("unknown field type %q", yf.Type)
	}
	if yf.Description != "" {
		f.Description = yf.Description
	}
	f.Required = f.Required || yf.Required
	f.ReadOnly = f.ReadOnly || yf.ReadOnly
	f.Hidden = f.Hidden || yf.Hidden
	if yf.Default != nil {
		f.Default = yf.Default
	}
	return f, nil
}
