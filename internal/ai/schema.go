package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kaptinlin/jsonrepair"
	"google.golang.org/genai"
)

type listItemsOutput struct {
	ListItems []string `json:"listItems" jsonschema:"A list of to-do or grocery items."`
}

type titleOutput struct {
	Title string `json:"title" jsonschema:"The generated title for the list."`
}

var (
	listItemsSchema = mustSchema[listItemsOutput]()
	titleSchema     = mustSchema[titleOutput]()

	listItemsSchemaJSON = mustMarshal(listItemsSchema)
	titleSchemaJSON     = mustMarshal(titleSchema)
)

func mustSchema[T any]() *jsonschema.Schema {
	s, err := jsonschema.For[T](&jsonschema.ForOptions{})
	if err != nil {
		panic(fmt.Sprintf("schema for %T: %v", *new(T), err))
	}
	return s
}

func mustMarshal(s *jsonschema.Schema) json.RawMessage {
	b, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	return b
}

// decodeJSON unmarshals model output into v, repairing malformed JSON and
// stripping markdown code fences when the first attempt fails to parse.
func decodeJSON(text string, v any) error {
	text = stripFences(text)
	if strings.TrimSpace(text) == "" {
		return ErrEmptyResponse
	}
	err := json.Unmarshal([]byte(text), v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, rerr := jsonrepair.JSONRepair(text)
		if rerr != nil {
			return fmt.Errorf("decode model output: %w", err)
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return fmt.Errorf("decode model output: %w", err)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// geminiSchema converts a JSON schema into the subset Gemini accepts.
func geminiSchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}
	gs := genai.Schema{
		Format:      schema.Format,
		Description: schema.Description,
		Items:       geminiSchema(schema.Items),
		Required:    schema.Required,
	}
	if n := len(schema.Properties); n > 0 {
		gs.Properties = make(map[string]*genai.Schema, n)
		for k, prop := range schema.Properties {
			gs.Properties[k] = geminiSchema(prop)
		}
	}
	typ := schema.Type
	if typ == "" {
		// nil-able Go types come out as ["null", T]
		for _, t := range schema.Types {
			if t == "null" {
				gs.Nullable = genai.Ptr(true)
				continue
			}
			typ = t
		}
	}
	switch typ {
	case "object":
		gs.Type = genai.TypeObject
	case "array":
		gs.Type = genai.TypeArray
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	}
	return &gs
}
