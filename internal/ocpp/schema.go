package ocpp

import (
	"fmt"
	"math"
	"sort"
)

// Direction distinguishes the request schema of an action from its response
// schema, since the two are validated independently (§4.2).
type Direction int

const (
	DirectionRequest Direction = iota
	DirectionResponse
)

func (d Direction) String() string {
	if d == DirectionRequest {
		return "request"
	}
	return "response"
}

// FieldType is the restricted set of JSON types a schema field may declare.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeObject  FieldType = "object"
	TypeArray   FieldType = "array"
)

// FieldSchema describes one key of a payload schema. Required keys that are
// absent fail with the "required" validator; any key not present in a
// schema's Fields map fails with "additionalProperties" unless
// AllowAdditional is set.
//
// A field of Type TypeObject may carry a NestedSchema, which is validated
// recursively against the field's own value (§4.2 step 3: "nested object").
// A field of Type TypeArray may carry an ItemType (and, if that item type is
// itself TypeObject, an ItemSchema), validated against each array element in
// turn; MaxLength on a TypeArray field with ItemType TypeString applies to
// each item's string length, not to the array itself.
type FieldSchema struct {
	Type      FieldType
	Required  bool
	MaxLength int // 0 means unbounded; for TypeString, or per-item for a TypeArray of strings
	Enum      []string

	NestedSchema *Schema   // validated recursively when Type == TypeObject
	ItemType     FieldType // element type when Type == TypeArray
	ItemSchema   *Schema   // validated recursively per item when ItemType == TypeObject
}

// Schema is the full set of field rules for one (version, direction, action)
// triple.
type Schema struct {
	Action          string
	Direction       Direction
	Fields          map[string]FieldSchema
	AllowAdditional bool
}

// ValidationFailure is one field-level violation discovered while validating
// a payload, tagged with the Python-validator-derived category that the
// wire error code mapping depends on (§4.2, §7).
type ValidationFailure struct {
	Field     string
	Validator string // "required", "additionalProperties", "NotExist", "type", "maxLength", "enum"
	Message   string
}

// Registry holds the static schema table for one OCPP version. It is built
// once at startup (internal/ocpp/v16 registers the OCPP 1.6 table by hand)
// and is read-only thereafter; concurrent lookups are safe without locking.
type Registry struct {
	schemas map[registryKey]*Schema
}

type registryKey struct {
	action    string
	direction Direction
}

// NewRegistry returns an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[registryKey]*Schema)}
}

// Register adds a schema for (action, direction). It panics on a duplicate
// registration, since the schema table is meant to be built once from a
// fixed, non-overlapping source (generated or handwritten) before any
// session starts.
func (r *Registry) Register(schema *Schema) {
	key := registryKey{action: schema.Action, direction: schema.Direction}
	if _, exists := r.schemas[key]; exists {
		panic(fmt.Sprintf("ocpp: duplicate schema registration for action %q direction %s", schema.Action, schema.Direction))
	}
	r.schemas[key] = schema
}

// Lookup returns the schema for (action, direction), and whether it exists.
// A missing schema is NOT a validation failure by itself — it means the
// action is either unknown to this version or not subject to schema
// validation (see registry.Entry.SkipSchemaValidation, §4.4) — callers decide
// what a miss means.
func (r *Registry) Lookup(action string, direction Direction) (*Schema, bool) {
	s, ok := r.schemas[registryKey{action: action, direction: direction}]
	return s, ok
}

// Validate runs the four-step algorithm from §4.2 against payload (already
// translated to snake_case) and returns every failure found, sorted by field
// name for deterministic reporting. An empty (nil) result means the payload
// is valid.
func Validate(schema *Schema, payload map[string]interface{}) []ValidationFailure {
	var failures []ValidationFailure

	for name, field := range schema.Fields {
		value, present := payload[name]
		if !present {
			if field.Required {
				failures = append(failures, ValidationFailure{
					Field:     name,
					Validator: "required",
					Message:   fmt.Sprintf("%q is a required property", name),
				})
			}
			continue
		}
		failures = append(failures, validateField(name, field, value)...)
	}

	if !schema.AllowAdditional {
		for name := range payload {
			if _, declared := schema.Fields[name]; !declared {
				failures = append(failures, ValidationFailure{
					Field:     name,
					Validator: "additionalProperties",
					Message:   fmt.Sprintf("additional properties are not allowed (%q was unexpected)", name),
				})
			}
		}
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].Field < failures[j].Field })
	return failures
}

func validateField(name string, field FieldSchema, value interface{}) []ValidationFailure {
	var failures []ValidationFailure

	if value == nil {
		failures = append(failures, ValidationFailure{
			Field:     name,
			Validator: "NotExist",
			Message:   fmt.Sprintf("%q must not be null", name),
		})
		return failures
	}

	if !matchesType(field.Type, value) {
		failures = append(failures, ValidationFailure{
			Field:     name,
			Validator: "type",
			Message:   fmt.Sprintf("%q is not of type %q", name, field.Type),
		})
		return failures
	}

	if field.Type == TypeString && field.MaxLength > 0 {
		if s, ok := value.(string); ok && len(s) > field.MaxLength {
			failures = append(failures, ValidationFailure{
				Field:     name,
				Validator: "maxLength",
				Message:   fmt.Sprintf("%q is longer than %d characters", name, field.MaxLength),
			})
		}
	}

	if len(field.Enum) > 0 {
		if s, ok := value.(string); ok && !containsString(field.Enum, s) {
			failures = append(failures, ValidationFailure{
				Field:     name,
				Validator: "enum",
				Message:   fmt.Sprintf("%q is not one of %v", name, field.Enum),
			})
		}
	}

	switch field.Type {
	case TypeObject:
		if field.NestedSchema != nil {
			nested, _ := value.(map[string]interface{})
			for _, nf := range Validate(field.NestedSchema, nested) {
				nf.Field = name + "." + nf.Field
				failures = append(failures, nf)
			}
		}
	case TypeArray:
		failures = append(failures, validateItems(name, field, value.([]interface{}))...)
	}

	return failures
}

// validateItems applies field's ItemType/ItemSchema/MaxLength to every
// element of a TypeArray field's value (§4.2 step 3: "list - check each item
// against the item schema; apply maxLength per item where declared").
func validateItems(name string, field FieldSchema, items []interface{}) []ValidationFailure {
	if field.ItemType == "" {
		return nil
	}

	var failures []ValidationFailure
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", name, i)

		if item == nil {
			failures = append(failures, ValidationFailure{
				Field:     itemPath,
				Validator: "NotExist",
				Message:   fmt.Sprintf("%q must not be null", itemPath),
			})
			continue
		}

		if !matchesType(field.ItemType, item) {
			failures = append(failures, ValidationFailure{
				Field:     itemPath,
				Validator: "type",
				Message:   fmt.Sprintf("%q is not of type %q", itemPath, field.ItemType),
			})
			continue
		}

		if field.ItemType == TypeString && field.MaxLength > 0 {
			if s, ok := item.(string); ok && len(s) > field.MaxLength {
				failures = append(failures, ValidationFailure{
					Field:     itemPath,
					Validator: "maxLength",
					Message:   fmt.Sprintf("%q is longer than %d characters", itemPath, field.MaxLength),
				})
			}
		}

		if field.ItemType == TypeObject && field.ItemSchema != nil {
			itemMap, _ := item.(map[string]interface{})
			for _, nf := range Validate(field.ItemSchema, itemMap) {
				nf.Field = itemPath + "." + nf.Field
				failures = append(failures, nf)
			}
		}
	}
	return failures
}

func matchesType(t FieldType, value interface{}) bool {
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeInteger:
		switch n := value.(type) {
		case float64: // decoded JSON numbers are always float64
			return n == math.Trunc(n)
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true // handler-built payloads may carry Go integers
		}
		return false
	case TypeNumber:
		switch value.(type) {
		case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
		return false
	case TypeObject:
		_, ok := value.(map[string]interface{})
		return ok
	case TypeArray:
		_, ok := value.([]interface{})
		return ok
	default:
		return true
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// ErrorCodeForFailure maps a ValidationFailure's validator tag to the OCPP
// wire error code it must be reported as, per §7's validator-to-error-code
// table (ported from the original's SchemaValidationError handling in
// messages.py): type/maxLength -> TypeConstraintViolation,
// additionalProperties -> FormationViolation, required -> ProtocolError,
// anything else (NotExist, enum, ...) -> FormationViolation.
func ErrorCodeForFailure(f ValidationFailure) ErrorCode {
	switch f.Validator {
	case "type", "maxLength":
		return ErrorTypeConstraintViolation
	case "additionalProperties":
		return ErrorFormationViolation
	case "required":
		return ErrorProtocolError
	default:
		return ErrorFormationViolation
	}
}

// FirstErrorCode returns the wire error code for the first (lowest field
// name) failure in an already-sorted failure list, which is what the
// session engine reports for a payload that fails validation (§4.5: the
// first violation found wins).
func FirstErrorCode(failures []ValidationFailure) ErrorCode {
	if len(failures) == 0 {
		return ErrorGenericError
	}
	return ErrorCodeForFailure(failures[0])
}
