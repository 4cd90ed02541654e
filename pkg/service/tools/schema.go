package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// reflectSchema turns a typed argument struct into the tool's input
// schema map. DoNotReference keeps the schema self-contained; required
// fields come from the jsonschema struct tags.
func reflectSchema(prototype interface{}) map[string]interface{} {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(prototype)
	schema.Version = "" // drop $schema

	return sanitizeSchema(schema)
}

// sanitizeSchema converts the reflected schema to a plain map and
// strips the meta-schema keywords strict Draft-07 validators choke on.
func sanitizeSchema(raw *jsonschema.Schema) map[string]interface{} {
	b, err := json.Marshal(raw)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]interface{}{}
	}

	removeIncompatible(m)
	addMissingArrayItems(m)
	return m
}

func removeIncompatible(node map[string]interface{}) {
	delete(node, "$schema")
	delete(node, "$id")
	delete(node, "$dynamicRef")
	delete(node, "$dynamicAnchor")
	delete(node, "unevaluatedProperties")

	for _, v := range node {
		switch child := v.(type) {
		case map[string]interface{}:
			removeIncompatible(child)
		case []interface{}:
			for _, elem := range child {
				if m, ok := elem.(map[string]interface{}); ok {
					removeIncompatible(m)
				}
			}
		}
	}
}

// addMissingArrayItems gives every items-less array schema a string
// items entry, which MCP validation requires.
func addMissingArrayItems(schema map[string]interface{}) {
	for _, value := range schema {
		switch v := value.(type) {
		case map[string]interface{}:
			if v["type"] == "array" {
				if _, hasItems := v["items"]; !hasItems {
					v["items"] = map[string]interface{}{"type": "string"}
				}
			}
			addMissingArrayItems(v)
		case []interface{}:
			for _, elem := range v {
				if m, ok := elem.(map[string]interface{}); ok {
					addMissingArrayItems(m)
				}
			}
		}
	}
}
