// internal/catalog/schema.go
package catalog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Fixture documents are validated on load so a malformed record fails fast
// instead of surfacing as a zero-valued entity deep inside a filter pass.

const restaurantsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "name", "rating", "reviewCount", "deliveryTime", "deliveryFee", "cuisineTags", "priceLevel", "isOpen", "address"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"name": {"type": "string", "minLength": 1},
			"description": {"type": "string"},
			"rating": {"type": "number", "minimum": 0, "maximum": 5},
			"reviewCount": {"type": "integer", "minimum": 0},
			"deliveryTime": {
				"type": "object",
				"required": ["min", "max"],
				"properties": {
					"min": {"type": "integer", "minimum": 0},
					"max": {"type": "integer", "minimum": 0}
				}
			},
			"deliveryFee": {"type": "number", "minimum": 0},
			"cuisineTags": {"type": "array", "items": {"type": "string"}},
			"priceLevel": {"type": "integer", "minimum": 1, "maximum": 4},
			"isOpen": {"type": "boolean"},
			"address": {"type": "string"},
			"imageUrl": {"type": "string"},
			"promoted": {"type": "boolean"}
		}
	}
}`

const menuItemsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "restaurantId", "name", "price", "category", "isAvailable"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"restaurantId": {"type": "string", "minLength": 1},
			"name": {"type": "string", "minLength": 1},
			"description": {"type": "string"},
			"price": {"type": "number", "minimum": 0},
			"category": {"type": "string", "minLength": 1},
			"isAvailable": {"type": "boolean"},
			"isPopular": {"type": "boolean"},
			"isSpicy": {"type": "boolean"},
			"dietaryTags": {"type": "array", "items": {"type": "string"}},
			"customizationGroups": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["id", "name", "options"],
					"properties": {
						"id": {"type": "string"},
						"name": {"type": "string"},
						"required": {"type": "boolean"},
						"minSelect": {"type": "integer", "minimum": 0},
						"maxSelect": {"type": "integer", "minimum": 0},
						"options": {
							"type": "array",
							"items": {
								"type": "object",
								"required": ["id", "name", "priceDelta"],
								"properties": {
									"id": {"type": "string"},
									"name": {"type": "string"},
									"priceDelta": {"type": "number"}
								}
							}
						}
					}
				}
			},
			"imageUrl": {"type": "string"}
		}
	}
}`

const usersSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "name", "email"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"name": {"type": "string", "minLength": 1},
			"email": {"type": "string", "minLength": 3},
			"phone": {"type": "string"},
			"passwordHash": {"type": "string"},
			"addresses": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["id", "label", "street", "city"],
					"properties": {
						"id": {"type": "string"},
						"label": {"type": "string"},
						"street": {"type": "string"},
						"city": {"type": "string"},
						"zip": {"type": "string"},
						"isDefault": {"type": "boolean"}
					}
				}
			}
		}
	}
}`

const driversSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "name"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"name": {"type": "string", "minLength": 1},
			"phone": {"type": "string"},
			"vehicleType": {"type": "string"},
			"rating": {"type": "number", "minimum": 0, "maximum": 5}
		}
	}
}`

const promoCodesSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["code", "expiresAt", "active"],
		"properties": {
			"code": {"type": "string", "minLength": 1},
			"description": {"type": "string"},
			"percent": {"type": "integer", "minimum": 0, "maximum": 100},
			"amountOff": {"type": "number", "minimum": 0},
			"minSubtotal": {"type": "number", "minimum": 0},
			"expiresAt": {"type": "string"},
			"active": {"type": "boolean"}
		}
	}
}`

// Schemas maps fixture document names to their JSON schemas. The catalog-check
// tool iterates this map.
var Schemas = map[string]string{
	"restaurants": restaurantsSchema,
	"menu_items":  menuItemsSchema,
	"users":       usersSchema,
	"drivers":     driversSchema,
	"promo_codes": promoCodesSchema,
}

// ValidateDocument checks a fixture document against the schema registered
// under name.
func ValidateDocument(name string, data []byte) error {
	schema, ok := Schemas[name]
	if !ok {
		return fmt.Errorf("no schema registered for document %q", name)
	}

	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%s failed schema validation: %s", name, strings.Join(errs, "; "))
	}

	return nil
}
