// Package metadata normalizes the heterogeneous rows of the engine's
// documentation tables into the two output documents consumed downstream:
// a flat symbol list for the language server's symbol table, and a raw
// passthrough dump.
package metadata

import "encoding/json"

// Projection selects which output document shape a run produces. The two
// CLIs are fixed to one projection each; this is not a runtime switch.
type Projection int

const (
	ProjectionStandard Projection = iota
	ProjectionRaw
)

// AnyType is the sentinel type name used when the source carries no type
// information for a parameter or return value.
const AnyType = "any"

// dataSourceCategory marks functions that access external data.
const dataSourceCategory = "Accessing data"

// Symbol kind tags in the standard document.
const (
	kindFunction = "function"
	kindType     = "type"
	kindEnum     = "enum"
)

// ParameterDescriptor describes one function parameter in the standard
// projection. Exactly one of IsRequired/IsNullable is true.
type ParameterDescriptor struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	IsRequired  bool   `json:"isRequired"`
	IsNullable  bool   `json:"isNullable"`
	Description string `json:"description"`
}

// FunctionSymbol is a normalized function entry in the standard document.
type FunctionSymbol struct {
	Kind            string                `json:"type"`
	Name            string                `json:"name"`
	Description     string                `json:"description,omitempty"`
	LongDescription string                `json:"longDescription,omitempty"`
	Category        string                `json:"category,omitempty"`
	Parameters      []ParameterDescriptor `json:"parameters"`
	ReturnType      string                `json:"returnType"`
	IsDataSource    bool                  `json:"isDataSource"`
}

// TypeSymbol is a normalized type entry in the standard document.
type TypeSymbol struct {
	Kind            string          `json:"type"`
	Name            string          `json:"name"`
	BaseType        string          `json:"baseType,omitempty"`
	Description     string          `json:"description,omitempty"`
	LongDescription string          `json:"longDescription,omitempty"`
	AllowedValues   json.RawMessage `json:"allowedValues,omitempty"`
}

// EnumOption is one option of an enumeration.
type EnumOption struct {
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Value    any    `json:"value"`
}

// EnumSymbol is a normalized enumeration entry in the standard document,
// carrying its options grouped by enum name.
type EnumSymbol struct {
	Kind    string       `json:"type"`
	Name    string       `json:"name"`
	Options []EnumOption `json:"options"`
}

// SymbolDocument is the standard output: one flat ordered sequence holding
// all functions, then all types, then all enums, each tagged by its "type"
// field. Consumers rely on that layout.
type SymbolDocument []any

// RawFunctionRecord is the untransformed passthrough of a function row:
// documentation and parameters as decoded, return type unmodified, required
// parameter count as the engine sent it (no integer coercion).
type RawFunctionRecord struct {
	Name                   string        `json:"name"`
	Documentation          Documentation `json:"documentation"`
	Parameters             Parameters    `json:"parameters"`
	RequiredParameterCount any           `json:"requiredParameterCount"`
	ReturnType             string        `json:"returnType"`
}

// RawTypeRecord is the untransformed passthrough of a type row.
type RawTypeRecord struct {
	Name          string        `json:"name"`
	BaseType      string        `json:"baseType"`
	Documentation Documentation `json:"documentation"`
}

// RawEnumOptionRecord is one enum option row, ungrouped.
type RawEnumOptionRecord struct {
	Enum       string `json:"enum"`
	Option     string `json:"option"`
	FullOption string `json:"fullOption"`
	Value      any    `json:"value"`
}

// RawDocument is the raw output: a distinct contract from SymbolDocument,
// with three named members instead of one flat sequence.
type RawDocument struct {
	Functions   []RawFunctionRecord   `json:"functions"`
	Types       []RawTypeRecord       `json:"types"`
	EnumOptions []RawEnumOptionRecord `json:"enum_options"`
}
