package swagger

import (
	"encoding/json"
	"fmt"
	"math"

	"go.yaml.in/yaml/v3"

	"github.com/okian/housescore/internal/domain/schema"
)

// Version of the documented API.
const Version = "1.0.0"

type object = map[string]any

func ref(name string) object {
	return object{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schemaRef object) object {
	return object{"application/json": object{"schema": schemaRef}}
}

func response(description, schemaName string) object {
	return object{"description": description, "content": jsonContent(ref(schemaName))}
}

// Document builds the OpenAPI 3 description of the scoring API. The feature
// row schema mirrors sc column by column.
func Document(sc *schema.Schema) map[string]any {
	return object{
		"openapi": "3.0.3",
		"info": object{
			"title":       "House Price Scoring API",
			"version":     Version,
			"description": "Scores house feature rows with the loaded regression model.",
		},
		"paths": object{
			"/score": object{
				"post": object{
					"summary":     "Score feature rows",
					"operationId": "score",
					"parameters": []any{object{
						"name":        "x-ms-client-request-id",
						"in":          "header",
						"required":    false,
						"description": "Echoed back as x-ms-request-id.",
						"schema":      object{"type": "string"},
					}},
					"requestBody": object{"required": true, "content": jsonContent(ref("ScoreRequest"))},
					"responses": object{
						"200": response("One prediction per input row, in input order.", "ScoreResponse"),
						"400": response("The payload does not satisfy the feature schema.", "Error"),
						"413": response("The payload is too large.", "Error"),
						"500": response("The model failed to produce predictions.", "Error"),
						"503": response("The model is not loaded yet.", "Error"),
					},
				},
			},
			"/healthz": object{
				"get": object{
					"summary":   "Liveness",
					"responses": object{"200": response("Process is alive.", "Health")},
				},
			},
			"/readyz": object{
				"get": object{
					"summary": "Readiness",
					"responses": object{
						"200": response("Model is loaded.", "Health"),
						"503": response("Model is not loaded.", "Health"),
					},
				},
			},
			"/stats": object{
				"get": object{
					"summary": "Service statistics",
					"responses": object{"200": object{
						"description": "Counters and model identity.",
						"content":     jsonContent(object{"type": "object", "additionalProperties": true}),
					}},
				},
			},
			"/metrics": object{
				"get": object{
					"summary": "Prometheus metrics",
					"responses": object{"200": object{
						"description": "Prometheus text exposition.",
						"content":     object{"text/plain": object{"schema": object{"type": "string"}}},
					}},
				},
			},
		},
		"components": object{
			"schemas": object{
				"FeatureRow": featureRow(sc),
				"SplitTable": object{
					"type":     "object",
					"required": []string{"columns", "data"},
					"properties": object{
						"columns": object{"type": "array", "items": object{"type": "string", "enum": sc.Names()}},
						"data":    object{"type": "array", "items": object{"type": "array", "items": object{}}},
					},
				},
				"ScoreRequest": object{
					"type":     "object",
					"required": []string{"Inputs"},
					"properties": object{
						"Inputs": object{
							"type":     "object",
							"required": []string{"data"},
							"properties": object{
								"data": object{"oneOf": []any{
									object{"type": "array", "items": ref("FeatureRow")},
									ref("SplitTable"),
								}},
							},
						},
						"GlobalParameters": object{
							"type":        "number",
							"default":     1.0,
							"description": "Reserved. Accepted and ignored.",
						},
					},
				},
				"ScoreResponse": object{
					"type":     "object",
					"required": []string{"Results"},
					"properties": object{
						"Results": object{"type": "array", "items": object{"type": "number", "format": "double"}},
					},
				},
				"Health": object{
					"type": "object",
					"properties": object{
						"status":        object{"type": "string"},
						"state":         object{"type": "string", "enum": []string{"uninitialized", "ready"}},
						"model_name":    object{"type": "string"},
						"model_version": object{"type": "string"},
					},
				},
				"Error": object{
					"type":     "object",
					"required": []string{"code", "message"},
					"properties": object{
						"code":    object{"type": "string"},
						"message": object{"type": "string"},
					},
				},
			},
		},
	}
}

func featureRow(sc *schema.Schema) object {
	props := make(object, sc.Len())
	for _, col := range sc.Columns() {
		props[col.Name] = columnSchema(col.Kind)
	}
	return object{
		"type":                 "object",
		"description":          "Absent columns take their schema default.",
		"properties":           props,
		"additionalProperties": false,
	}
}

func columnSchema(k schema.Kind) object {
	switch k {
	case schema.KindInt8:
		return object{"type": "integer", "format": "int32", "minimum": math.MinInt8, "maximum": math.MaxInt8, "x-dtype": k.String()}
	case schema.KindInt16:
		return object{"type": "integer", "format": "int32", "minimum": math.MinInt16, "maximum": math.MaxInt16, "x-dtype": k.String()}
	case schema.KindInt32:
		return object{"type": "integer", "format": "int32", "x-dtype": k.String()}
	case schema.KindFloat32:
		return object{"type": "number", "format": "float", "nullable": true, "x-dtype": k.String()}
	case schema.KindBool:
		return object{"type": "boolean", "x-dtype": k.String()}
	default:
		return object{"type": "string", "nullable": true, "x-dtype": k.String()}
	}
}

// MarshalJSON renders doc as indented JSON.
func MarshalJSON(doc map[string]any) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServe, err)
	}
	return out, nil
}

// MarshalYAML renders doc as YAML.
func MarshalYAML(doc map[string]any) ([]byte, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServe, err)
	}
	return out, nil
}
