// Package openapi describes the api.json payload as an OpenAPI 3.1
// document. This is a pure export for external consumers; processing does
// not depend on it.
package openapi

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"rexgen/internal/aggregate"
)

// Document is the OpenAPI document written to openapi.yaml.
type Document struct {
	OpenAPI           string              `yaml:"openapi"`
	Info              Info                `yaml:"info"`
	JSONSchemaDialect string              `yaml:"jsonSchemaDialect"`
	Servers           []Server            `yaml:"servers"`
	Tags              []Tag               `yaml:"tags"`
	ExternalDocs      *ExternalDocs       `yaml:"externalDocs,omitempty"`
	Paths             map[string]PathItem `yaml:"paths"`
}

type Info struct {
	Title       string  `yaml:"title"`
	Summary     string  `yaml:"summary,omitempty"`
	Version     string  `yaml:"version"`
	Description string  `yaml:"description,omitempty"`
	Contact     Contact `yaml:"contact"`
}

type Contact struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type Server struct {
	URL string `yaml:"url"`
}

type Tag struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

type ExternalDocs struct {
	Description string `yaml:"description,omitempty"`
	URL         string `yaml:"url"`
}

type PathItem struct {
	Get *Operation `yaml:"get,omitempty"`
}

type Operation struct {
	Summary     string              `yaml:"summary,omitempty"`
	Description string              `yaml:"description,omitempty"`
	Tags        []string            `yaml:"tags,omitempty"`
	Responses   map[string]Response `yaml:"responses"`
}

type Response struct {
	Description string               `yaml:"description"`
	Content     map[string]MediaType `yaml:"content,omitempty"`
}

type MediaType struct {
	Schema map[string]any `yaml:"schema"`
}

// Build assembles the document for GET /api.json, with the response schema
// reflected from the APIResponse type.
func Build() (*Document, error) {
	schema, err := responseSchema()
	if err != nil {
		return nil, err
	}

	return &Document{
		OpenAPI: "3.1.1",
		Info: Info{
			Title:       "T-REX",
			Summary:     "The DormCon REX API!",
			Version:     "2025.0.0",
			Description: "This API hosts the structured data and information for the [REX Events page](https://dormcon.mit.edu/rex/events). Feel free to use it for your own purposes!",
			Contact: Contact{
				Name:  "DormCon Tech Chair",
				Email: "dormcon-tech-chair@mit.edu",
			},
		},
		JSONSchemaDialect: "https://spec.openapis.org/oas/3.1/dialect/base",
		Servers:           []Server{{URL: "https://rex.mit.edu"}},
		Tags: []Tag{{
			Name:        "Raw Data",
			Description: "Returns raw REX data without filtering or narrowing.",
		}},
		ExternalDocs: &ExternalDocs{
			Description: "Documentation on DormCon site",
			URL:         "https://dormcon.mit.edu/rex/api",
		},
		Paths: map[string]PathItem{
			"/api.json": {
				Get: &Operation{
					Summary:     "All REX event data",
					Description: "Returns a JSON object with all REX data. This includes data about the REX API, a list of all events, and more.",
					Tags:        []string{"Raw Data"},
					Responses: map[string]Response{
						"200": {
							Description: "Successful request!",
							Content: map[string]MediaType{
								"application/json": {Schema: schema},
							},
						},
					},
				},
			},
		},
	}, nil
}

// Marshal renders the document as YAML.
func Marshal() ([]byte, error) {
	doc, err := Build()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// responseSchema reflects the APIResponse JSON schema and converts it to a
// plain map so it nests inside the YAML document. The $defs produced by
// reflection stay inline, which OpenAPI 3.1 permits.
func responseSchema() (map[string]any, error) {
	var r jsonschema.Reflector
	schema := r.Reflect(&aggregate.APIResponse{})

	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
