package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ekaya-inc/metadoc/pkg/apperrors"
)

func functionRow(name, documentation, parameters string, requiredCount any, returnType string) map[string]any {
	return map[string]any{
		"functions[name]":                   name,
		"functions[documentation]":          documentation,
		"functions[parameters]":             parameters,
		"functions[requiredParameterCount]": requiredCount,
		"functions[returnType]":             returnType,
	}
}

func typeRow(name, baseType, documentation string) map[string]any {
	return map[string]any{
		"types[name]":          name,
		"types[baseType]":      baseType,
		"types[documentation]": documentation,
	}
}

func enumRow(enum, option, fullOption string, value any) map[string]any {
	return map[string]any{
		"enums[enum]":       enum,
		"enums[option]":     option,
		"enums[fullOption]": fullOption,
		"enums[value]":      value,
	}
}

func TestStandard_FunctionRoundTrip(t *testing.T) {
	n := NewNormalizer(zaptest.NewLogger(t))

	in := Input{
		Functions: []map[string]any{
			functionRow("Table.First", `{"description":"First row."}`, `{"a":"text","b":"number"}`, int64(1), "Record"),
			functionRow("", `{"description":"dropped"}`, `{}`, int64(0), "Any"),
			functionRow("List.Zip", "", `["x"]`, int64(0), ""),
		},
	}

	doc, err := n.Standard(in)
	require.NoError(t, err)
	require.Len(t, doc, 2)

	first, ok := doc[0].(FunctionSymbol)
	require.True(t, ok)
	assert.Equal(t, "function", first.Kind)
	assert.Equal(t, "Table.First", first.Name)
	assert.Equal(t, "First row.", first.Description)
	assert.Equal(t, "record", first.ReturnType)
	require.Len(t, first.Parameters, 2)

	a := first.Parameters[0]
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "text", a.Type)
	assert.True(t, a.IsRequired)
	assert.False(t, a.IsNullable)

	b := first.Parameters[1]
	assert.Equal(t, "b", b.Name)
	assert.Equal(t, "number", b.Type)
	assert.False(t, b.IsRequired)
	assert.True(t, b.IsNullable)

	second, ok := doc[1].(FunctionSymbol)
	require.True(t, ok)
	assert.Equal(t, "List.Zip", second.Name)
	assert.Equal(t, AnyType, second.ReturnType)
	require.Len(t, second.Parameters, 1)

	x := second.Parameters[0]
	assert.Equal(t, "x", x.Name)
	assert.Equal(t, AnyType, x.Type)
	assert.False(t, x.IsRequired)
	assert.True(t, x.IsNullable)
}

func TestStandard_RequiredXorNullable(t *testing.T) {
	n := NewNormalizer(nil)

	in := Input{
		Functions: []map[string]any{
			functionRow("F", "", `{"a":"text","b":"text","c":"text"}`, "2", "Any"),
		},
	}

	doc, err := n.Standard(in)
	require.NoError(t, err)
	f := doc[0].(FunctionSymbol)
	require.Len(t, f.Parameters, 3)
	for i, p := range f.Parameters {
		assert.Equal(t, i < 2, p.IsRequired, "parameter %d", i)
		assert.NotEqual(t, p.IsRequired, p.IsNullable, "parameter %d", i)
	}
}

func TestStandard_IsDataSourceCategory(t *testing.T) {
	n := NewNormalizer(nil)

	in := Input{
		Functions: []map[string]any{
			functionRow("Source.Load", `{"category":"Accessing data"}`, `{}`, int64(0), "Table"),
			functionRow("Text.Upper", `{"category":"Text"}`, `{}`, int64(0), "Text"),
		},
	}

	doc, err := n.Standard(in)
	require.NoError(t, err)
	assert.True(t, doc[0].(FunctionSymbol).IsDataSource)
	assert.False(t, doc[1].(FunctionSymbol).IsDataSource)
}

func TestStandard_Types(t *testing.T) {
	n := NewNormalizer(nil)

	in := Input{
		Types: []map[string]any{
			typeRow("Currency.Type", "number", `{"description":"Currency.","allowedValues":[0,1]}`),
			typeRow("", "number", `{}`),
		},
	}

	doc, err := n.Standard(in)
	require.NoError(t, err)
	require.Len(t, doc, 1)

	ts := doc[0].(TypeSymbol)
	assert.Equal(t, "type", ts.Kind)
	assert.Equal(t, "Currency.Type", ts.Name)
	assert.Equal(t, "number", ts.BaseType)
	assert.Equal(t, "Currency.", ts.Description)
	assert.JSONEq(t, `[0,1]`, string(ts.AllowedValues))
}

func TestStandard_EnumGrouping(t *testing.T) {
	n := NewNormalizer(nil)

	in := Input{
		Enums: []map[string]any{
			enumRow("Day", "Monday", "Day.Monday", int64(1)),
			enumRow("Order", "Ascending", "Order.Ascending", int64(0)),
			enumRow("Day", "Tuesday", "Day.Tuesday", int64(2)),
			enumRow("Order", "Descending", "Order.Descending", int64(1)),
		},
	}

	doc, err := n.Standard(in)
	require.NoError(t, err)
	require.Len(t, doc, 2)

	day := doc[0].(EnumSymbol)
	assert.Equal(t, "enum", day.Kind)
	assert.Equal(t, "Day", day.Name)
	require.Len(t, day.Options, 2)
	assert.Equal(t, "Monday", day.Options[0].Name)
	assert.Equal(t, "Day.Monday", day.Options[0].FullName)
	assert.Equal(t, "Tuesday", day.Options[1].Name)

	order := doc[1].(EnumSymbol)
	assert.Equal(t, "Order", order.Name)
	require.Len(t, order.Options, 2)
}

func TestStandard_EmptyOptionStillCreatesGroup(t *testing.T) {
	n := NewNormalizer(nil)

	// The first Day row has no option token; the group must still exist and
	// keep its first-seen position ahead of Order.
	in := Input{
		Enums: []map[string]any{
			enumRow("Day", "", "", nil),
			enumRow("Order", "Ascending", "Order.Ascending", int64(0)),
			enumRow("Day", "Monday", "Day.Monday", int64(1)),
			enumRow("Ghost", "", "", nil),
		},
	}

	doc, err := n.Standard(in)
	require.NoError(t, err)
	require.Len(t, doc, 3)

	day := doc[0].(EnumSymbol)
	assert.Equal(t, "Day", day.Name)
	require.Len(t, day.Options, 1)
	assert.Equal(t, "Monday", day.Options[0].Name)

	assert.Equal(t, "Order", doc[1].(EnumSymbol).Name)

	ghost := doc[2].(EnumSymbol)
	assert.Equal(t, "Ghost", ghost.Name)
	assert.Empty(t, ghost.Options)
}

func TestStandard_ConcatenationOrder(t *testing.T) {
	n := NewNormalizer(nil)

	in := Input{
		Functions: []map[string]any{functionRow("F", "", "", int64(0), "Any")},
		Types:     []map[string]any{typeRow("T", "any", "")},
		Enums:     []map[string]any{enumRow("E", "o", "E.o", int64(0))},
	}

	doc, err := n.Standard(in)
	require.NoError(t, err)
	require.Len(t, doc, 3)

	_, isFunction := doc[0].(FunctionSymbol)
	_, isType := doc[1].(TypeSymbol)
	_, isEnum := doc[2].(EnumSymbol)
	assert.True(t, isFunction)
	assert.True(t, isType)
	assert.True(t, isEnum)
}

func TestStandard_MalformedDocumentationFailsFast(t *testing.T) {
	n := NewNormalizer(nil)

	in := Input{
		Functions: []map[string]any{
			functionRow("Bad", `{"description":`, `{}`, int64(0), "Any"),
		},
	}

	_, err := n.Standard(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformedRow)
}

func TestRaw_PreservesFields(t *testing.T) {
	n := NewNormalizer(nil)

	in := Input{
		Functions: []map[string]any{
			functionRow("Table.First", `{"description":"First row.","deprecated":true}`, `{"a":"Text","b":"Number"}`, "1", "Record"),
			functionRow("", "", "", nil, ""),
		},
		Types: []map[string]any{
			typeRow("Currency.Type", "number", `{"allowedValues":["USD"]}`),
			typeRow("", "number", ""),
		},
		Enums: []map[string]any{
			enumRow("Day", "Monday", "Day.Monday", int64(1)),
			enumRow("Day", "Tuesday", "Day.Tuesday", int64(2)),
			enumRow("Day", "", "", nil),
		},
	}

	doc, err := n.Raw(in)
	require.NoError(t, err)

	require.Len(t, doc.Functions, 1)
	fn := doc.Functions[0]
	// No integer coercion and no case change in the raw projection.
	assert.Equal(t, "1", fn.RequiredParameterCount)
	assert.Equal(t, "Record", fn.ReturnType)
	require.NotNil(t, fn.Parameters.Mapping)

	docJSON, err := json.Marshal(fn.Documentation)
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"First row.","deprecated":true}`, string(docJSON))

	require.Len(t, doc.Types, 1)
	assert.Equal(t, "Currency.Type", doc.Types[0].Name)
	assert.Equal(t, "number", doc.Types[0].BaseType)

	// No grouping: one record per row, empty options dropped.
	require.Len(t, doc.EnumOptions, 2)
	assert.Equal(t, "Day", doc.EnumOptions[0].Enum)
	assert.Equal(t, "Monday", doc.EnumOptions[0].Option)
	assert.Equal(t, "Day.Tuesday", doc.EnumOptions[1].FullOption)
}

func TestRaw_DocumentShape(t *testing.T) {
	n := NewNormalizer(nil)

	doc, err := n.Raw(Input{})
	require.NoError(t, err)

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"functions":[],"types":[],"enum_options":[]}`, string(out))
}

func TestNormalize_Dispatch(t *testing.T) {
	n := NewNormalizer(nil)
	in := Input{Functions: []map[string]any{functionRow("F", "", "", int64(0), "Any")}}

	std, err := n.Normalize(in, ProjectionStandard)
	require.NoError(t, err)
	_, ok := std.(SymbolDocument)
	assert.True(t, ok)

	raw, err := n.Normalize(in, ProjectionRaw)
	require.NoError(t, err)
	_, ok = raw.(*RawDocument)
	assert.True(t, ok)
}
