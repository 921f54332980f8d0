// Package graphschema validates the neutral JSON projection of a CallGraph
// against the serialization contract of spec.md §6: top-level keys
// metadata, nodes, edges, entryPointId; required per-node and per-edge
// fields.
//
// No teacher file validates JSON schema anywhere in the pack; this is a
// supplemented feature wired to give github.com/google/jsonschema-go — a
// dependency present in the teacher's go.mod but otherwise unexercised by
// the code paths reviewed — a concrete home, per the "wire it or delete it"
// rule.
package graphschema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	once     sync.Once
	resolved *jsonschema.Resolved
	resolveErr error
)

func graphSchema() *jsonschema.Schema {
	nodeSchema := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"id", "name", "type", "filePath", "line", "async"},
		Properties: map[string]*jsonschema.Schema{
			"id":          {Type: "string"},
			"name":        {Type: "string"},
			"type":        {Type: "string", Enum: []any{"function", "method", "arrow", "function-expression", "constructor", "getter", "setter"}},
			"filePath":    {Type: "string"},
			"line":        {Type: "integer"},
			"column":      {Type: "integer"},
			"async":       {Type: "boolean"},
			"static":      {Type: "boolean"},
			"visibility":  {Type: "string", Enum: []any{"public", "private", "protected"}},
			"owningClass": {Type: "string"},
			"returnType":  {Type: "string"},
			"parameters": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"name", "type"},
					Properties: map[string]*jsonschema.Schema{
						"name":     {Type: "string"},
						"type":     {Type: "string"},
						"optional": {Type: "boolean"},
						"default":  {Type: "string"},
					},
				},
			},
		},
	}

	edgeSchema := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"id", "source", "target", "type", "line"},
		Properties: map[string]*jsonschema.Schema{
			"id":       {Type: "string"},
			"source":   {Type: "string"},
			"target":   {Type: "string"},
			"type":     {Type: "string", Enum: []any{"sync", "async", "callback", "constructor"}},
			"line":     {Type: "integer"},
			"column":   {Type: "integer"},
			"argTypes": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
	}

	metadataSchema := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"generatedAt", "entryPoint", "maxDepth", "projectRoot"},
		Properties: map[string]*jsonschema.Schema{
			"generatedAt":    {Type: "string"},
			"entryPoint":     {Type: "string"},
			"maxDepth":       {Type: "integer"},
			"projectRoot":    {Type: "string"},
			"typeConfigPath": {Type: "string"},
			"totalFilesSeen": {Type: "integer"},
			"nodeCount":      {Type: "integer"},
			"edgeCount":      {Type: "integer"},
		},
	}

	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"metadata", "nodes", "edges", "entryPointId"},
		Properties: map[string]*jsonschema.Schema{
			"metadata":     metadataSchema,
			"nodes":        {Type: "array", Items: nodeSchema},
			"edges":        {Type: "array", Items: edgeSchema},
			"entryPointId": {Type: "string"},
		},
	}
}

func resolvedSchema() (*jsonschema.Resolved, error) {
	once.Do(func() {
		resolved, resolveErr = graphSchema().Resolve(nil)
	})
	return resolved, resolveErr
}

// Validate parses raw as JSON and checks it against the graph serialization
// contract, returning every violation found rather than stopping at the
// first one.
func Validate(raw []byte) error {
	schema, err := resolvedSchema()
	if err != nil {
		return fmt.Errorf("graphschema: could not resolve schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("graphschema: invalid JSON: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("graphschema: %w", err)
	}
	return nil
}
