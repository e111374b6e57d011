package config

import (
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "https://srcfmt.invalid/config.schema.json"

const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "clang-format": { "$ref": "#/$defs/tool" },
    "yapf": { "$ref": "#/$defs/tool" }
  },
  "$defs": {
    "nonEmptyString": { "type": "string", "minLength": 1 },
    "tool": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "binary": { "$ref": "#/$defs/nonEmptyString" },
        "style": { "$ref": "#/$defs/nonEmptyString" },
        "folders": { "type": "array", "items": { "$ref": "#/$defs/nonEmptyString" } },
        "patterns": { "type": "array", "items": { "$ref": "#/$defs/nonEmptyString" } },
        "install": { "type": "array", "items": { "$ref": "#/$defs/nonEmptyString" } },
        "skip": { "type": "boolean" }
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := unmarshalJSON(strings.NewReader(configSchema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err = c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

func unmarshalJSON(r io.Reader) (any, error) {
	return jsonschema.UnmarshalJSON(r)
}

// validateDocument checks a decoded YAML document against the config schema.
func validateDocument(doc any) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	inst, err := toJSONDocument(doc)
	if err != nil {
		return err
	}
	return sch.Validate(inst)
}
