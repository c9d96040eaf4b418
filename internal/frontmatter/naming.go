package frontmatter

import (
	"reflect"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/postbuilder/internal/foundation/normalization"
)

// NamingConvention maps Go field names to metadata keys.
// The empty convention leaves key matching to the struct tags.
type NamingConvention string

const (
	NamingNone   NamingConvention = ""
	NamingCamel  NamingConvention = "camel"
	NamingPascal NamingConvention = "pascal"
	NamingSnake  NamingConvention = "snake"
	NamingKebab  NamingConvention = "kebab"
	NamingLower  NamingConvention = "lower"
)

var namingNormalizer = normalization.NewNormalizer(map[string]NamingConvention{
	"none":       NamingNone,
	"tags":       NamingNone,
	"camel":      NamingCamel,
	"camelcase":  NamingCamel,
	"pascal":     NamingPascal,
	"pascalcase": NamingPascal,
	"snake":      NamingSnake,
	"snake_case": NamingSnake,
	"kebab":      NamingKebab,
	"kebab-case": NamingKebab,
	"lower":      NamingLower,
	"lowercase":  NamingLower,
}, NamingNone)

// ParseNamingConvention normalizes a configured convention name.
func ParseNamingConvention(raw string) (NamingConvention, error) {
	return namingNormalizer.NormalizeWithError(raw)
}

// NamingConventions lists the accepted convention names.
func NamingConventions() []string { return namingNormalizer.ValidKeys() }

// Apply converts a Go field name to the key a document is expected to use.
func (n NamingConvention) Apply(field string) string {
	switch n {
	case NamingCamel:
		return strcase.ToCamel(field)
	case NamingPascal:
		return strcase.ToPascal(field)
	case NamingSnake:
		return strcase.ToSnake(field)
	case NamingKebab:
		return strcase.ToKebab(field)
	case NamingLower:
		return strings.ToLower(field)
	default:
		return field
	}
}

type fieldKey struct {
	key string
	typ reflect.Type
}

// renameKeys rewrites mapping keys in n so that keys written in the
// convention match the yaml keys the decoder expects for t.
func (n NamingConvention) renameKeys(node *yaml.Node, t reflect.Type) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch node.Kind {
	case yaml.DocumentNode:
		for _, c := range node.Content {
			n.renameKeys(c, t)
		}
	case yaml.MappingNode:
		switch t.Kind() {
		case reflect.Struct:
			fields := make(map[string]fieldKey)
			n.collectFields(t, fields)
			for i := 0; i+1 < len(node.Content); i += 2 {
				k, v := node.Content[i], node.Content[i+1]
				f, ok := fields[k.Value]
				if !ok {
					continue
				}
				k.Value = f.key
				n.renameKeys(v, f.typ)
			}
		case reflect.Map:
			for i := 1; i < len(node.Content); i += 2 {
				n.renameKeys(node.Content[i], t.Elem())
			}
		}
	case yaml.SequenceNode:
		if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
			for _, c := range node.Content {
				n.renameKeys(c, t.Elem())
			}
		}
	}
}

func (n NamingConvention) collectFields(t reflect.Type, out map[string]fieldKey) {
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("yaml")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if f.Anonymous && strings.Contains(opts, "inline") {
			ft := f.Type
			for ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				n.collectFields(ft, out)
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		out[n.Apply(f.Name)] = fieldKey{key: name, typ: f.Type}
	}
}
