package metadata

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/ekaya-inc/metadoc/pkg/jsonutil"
)

// Input carries the raw rows of the three metadata queries.
type Input struct {
	Functions []map[string]any
	Types     []map[string]any
	Enums     []map[string]any
}

// Normalizer converts metadata query rows into one of the two output
// documents. It holds no state across calls.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a normalizer. A nil logger is replaced with a no-op.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize produces the document for the given projection.
func (n *Normalizer) Normalize(in Input, projection Projection) (any, error) {
	if projection == ProjectionRaw {
		return n.Raw(in)
	}
	return n.Standard(in)
}

// Standard produces the flat tagged symbol list: all functions, then all
// types, then all enums.
func (n *Normalizer) Standard(in Input) (SymbolDocument, error) {
	functions, err := n.standardFunctions(in.Functions)
	if err != nil {
		return nil, err
	}
	types, err := n.standardTypes(in.Types)
	if err != nil {
		return nil, err
	}
	enums := n.standardEnums(in.Enums)

	doc := make(SymbolDocument, 0, len(functions)+len(types)+len(enums))
	for _, f := range functions {
		doc = append(doc, f)
	}
	for _, t := range types {
		doc = append(doc, t)
	}
	for _, e := range enums {
		doc = append(doc, e)
	}
	return doc, nil
}

func (n *Normalizer) standardFunctions(rows []map[string]any) ([]FunctionSymbol, error) {
	symbols := make([]FunctionSymbol, 0, len(rows))
	for _, raw := range rows {
		row := NewRow(raw)
		name := row.String(fieldName)
		if name == "" {
			n.logger.Debug("skipping function row without name")
			continue
		}

		doc, err := row.Documentation()
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		params, err := row.Parameters()
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}

		requiredCount := jsonutil.IntValue(row.Value(fieldRequiredParameterCount))

		returnType := strings.ToLower(row.String(fieldReturnType))
		if returnType == "" {
			returnType = AnyType
		}

		symbols = append(symbols, FunctionSymbol{
			Kind:            kindFunction,
			Name:            name,
			Description:     doc.Description,
			LongDescription: doc.LongDescription,
			Category:        doc.Category,
			Parameters:      buildParameterDescriptors(params, requiredCount),
			ReturnType:      returnType,
			IsDataSource:    doc.Category == dataSourceCategory,
		})
	}
	return symbols, nil
}

// buildParameterDescriptors flattens the decoded parameter variant into
// positional descriptors. The Nth parameter (0-indexed) is required iff
// N < requiredCount, and nullable is its negation.
func buildParameterDescriptors(params Parameters, requiredCount int) []ParameterDescriptor {
	descriptors := make([]ParameterDescriptor, 0, params.Len())

	add := func(name, declaredType string) {
		if declaredType == "" {
			declaredType = AnyType
		}
		required := len(descriptors) < requiredCount
		descriptors = append(descriptors, ParameterDescriptor{
			Name:        name,
			Type:        declaredType,
			IsRequired:  required,
			IsNullable:  !required,
			Description: describeParameter(declaredType, required),
		})
	}

	if params.Mapping != nil {
		for pair := params.Mapping.Oldest(); pair != nil; pair = pair.Next() {
			add(pair.Key, pair.Value)
		}
		return descriptors
	}
	for _, name := range params.Legacy {
		add(name, AnyType)
	}
	return descriptors
}

// describeParameter synthesizes a description; the source rows carry none.
func describeParameter(declaredType string, required bool) string {
	if required {
		return fmt.Sprintf("Required %s parameter.", declaredType)
	}
	return fmt.Sprintf("Optional %s parameter.", declaredType)
}

func (n *Normalizer) standardTypes(rows []map[string]any) ([]TypeSymbol, error) {
	symbols := make([]TypeSymbol, 0, len(rows))
	for _, raw := range rows {
		row := NewRow(raw)
		name := row.String(fieldName)
		if name == "" {
			n.logger.Debug("skipping type row without name")
			continue
		}

		doc, err := row.Documentation()
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}

		symbols = append(symbols, TypeSymbol{
			Kind:            kindType,
			Name:            name,
			BaseType:        row.String(fieldBaseType),
			Description:     doc.Description,
			LongDescription: doc.LongDescription,
			AllowedValues:   doc.AllowedValues,
		})
	}
	return symbols, nil
}

// standardEnums groups option rows by enum name. The group is created the
// first time its enum name appears on any row, even one with an empty option
// token, so an enum whose rows all lack options still emits with no options.
// Group order is first-seen order; options keep row order.
func (n *Normalizer) standardEnums(rows []map[string]any) []EnumSymbol {
	groups := orderedmap.New[string, []EnumOption]()
	for _, raw := range rows {
		row := NewRow(raw)
		enumName := row.String(fieldEnum)

		options, _ := groups.Get(enumName)
		if option := row.String(fieldOption); option != "" {
			options = append(options, EnumOption{
				Name:     option,
				FullName: row.String(fieldFullOption),
				Value:    row.Value(fieldValue),
			})
		}
		groups.Set(enumName, options)
	}

	symbols := make([]EnumSymbol, 0, groups.Len())
	for pair := groups.Oldest(); pair != nil; pair = pair.Next() {
		options := pair.Value
		if options == nil {
			options = []EnumOption{}
		}
		symbols = append(symbols, EnumSymbol{
			Kind:    kindEnum,
			Name:    pair.Key,
			Options: options,
		})
	}
	return symbols
}

// Raw produces the passthrough document. Function and type rows get the same
// empty-name skip as the standard projection; enum rows are emitted one
// record per row, subject only to the non-empty-option filter.
func (n *Normalizer) Raw(in Input) (*RawDocument, error) {
	doc := &RawDocument{
		Functions:   make([]RawFunctionRecord, 0, len(in.Functions)),
		Types:       make([]RawTypeRecord, 0, len(in.Types)),
		EnumOptions: make([]RawEnumOptionRecord, 0, len(in.Enums)),
	}

	for _, raw := range in.Functions {
		row := NewRow(raw)
		name := row.String(fieldName)
		if name == "" {
			continue
		}
		docBlob, err := row.Documentation()
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		params, err := row.Parameters()
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		doc.Functions = append(doc.Functions, RawFunctionRecord{
			Name:                   name,
			Documentation:          docBlob,
			Parameters:             params,
			RequiredParameterCount: row.Value(fieldRequiredParameterCount),
			ReturnType:             row.String(fieldReturnType),
		})
	}

	for _, raw := range in.Types {
		row := NewRow(raw)
		name := row.String(fieldName)
		if name == "" {
			continue
		}
		docBlob, err := row.Documentation()
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
		doc.Types = append(doc.Types, RawTypeRecord{
			Name:          name,
			BaseType:      row.String(fieldBaseType),
			Documentation: docBlob,
		})
	}

	for _, raw := range in.Enums {
		row := NewRow(raw)
		option := row.String(fieldOption)
		if option == "" {
			continue
		}
		doc.EnumOptions = append(doc.EnumOptions, RawEnumOptionRecord{
			Enum:       row.String(fieldEnum),
			Option:     option,
			FullOption: row.String(fieldFullOption),
			Value:      row.Value(fieldValue),
		})
	}

	return doc, nil
}
