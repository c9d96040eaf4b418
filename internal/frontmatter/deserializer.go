package frontmatter

import (
	"bytes"
	"reflect"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Deserializer turns the raw text of a metadata block into out, which is
// always a non-nil pointer.
type Deserializer interface {
	Deserialize(raw []byte, out any) error
}

// DeserializerFunc adapts a function to Deserializer.
type DeserializerFunc func(raw []byte, out any) error

func (f DeserializerFunc) Deserialize(raw []byte, out any) error { return f(raw, out) }

// YAML decodes YAML metadata with gopkg.in/yaml.v3.
type YAML struct {
	// Naming maps Go field names to document keys. Empty uses the yaml tags.
	Naming NamingConvention
	// KnownFields rejects keys that have no destination field.
	KnownFields bool
}

func (d YAML) Deserialize(raw []byte, out any) error {
	if d.Naming == NamingNone && !d.KnownFields {
		return yaml.Unmarshal(raw, out)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc.Kind == 0 {
		return nil
	}
	if d.Naming != NamingNone {
		d.Naming.renameKeys(&doc, reflect.TypeOf(out))
	}
	if !d.KnownFields {
		return doc.Decode(out)
	}

	buf, err := yaml.Marshal(&doc)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// TOML decodes TOML metadata with github.com/BurntSushi/toml. Keys match
// field names case-insensitively, so no naming convention is needed.
type TOML struct{}

func (TOML) Deserialize(raw []byte, out any) error {
	return toml.Unmarshal(raw, out)
}

// DefaultDeserializer is used for YAML blocks when neither the Extractor nor
// the call names one.
var DefaultDeserializer Deserializer = YAML{}
