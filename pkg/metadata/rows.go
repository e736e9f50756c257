package metadata

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ekaya-inc/metadoc/pkg/apperrors"
	"github.com/ekaya-inc/metadoc/pkg/jsonutil"
)

// Logical field names of the documentation tables, after un-qualification.
const (
	fieldName                   = "name"
	fieldDocumentation          = "documentation"
	fieldParameters             = "parameters"
	fieldRequiredParameterCount = "requiredParameterCount"
	fieldReturnType             = "returnType"
	fieldBaseType               = "baseType"
	fieldEnum                   = "enum"
	fieldOption                 = "option"
	fieldFullOption             = "fullOption"
	fieldValue                  = "value"
)

// logicalName strips the query-source qualifier from a result column name:
// "functions[name]" becomes "name". Unqualified names pass through unchanged.
func logicalName(column string) string {
	open := strings.IndexByte(column, '[')
	if open < 0 || !strings.HasSuffix(column, "]") {
		return column
	}
	return column[open+1 : len(column)-1]
}

// Row wraps one query result row with lookup by logical field name.
type Row map[string]any

// NewRow re-keys a raw result row by logical field names.
func NewRow(raw map[string]any) Row {
	r := make(Row, len(raw))
	for col, v := range raw {
		r[logicalName(col)] = v
	}
	return r
}

// String returns the field coerced to a string ("" when absent or null).
func (r Row) String(field string) string {
	return jsonutil.StringValue(r[field])
}

// Value returns the field as scanned, with []byte normalized to string so the
// raw projection serializes it as text rather than base64.
func (r Row) Value(field string) any {
	v := r[field]
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// Documentation decodes the row's embedded documentation JSON. An absent or
// empty field yields a zero Documentation; malformed JSON is fail-fast and
// wraps apperrors.ErrMalformedRow.
func (r Row) Documentation() (Documentation, error) {
	var doc Documentation
	s := r.String(fieldDocumentation)
	if s == "" {
		return doc, nil
	}
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return doc, fmt.Errorf("%w: documentation: %v", apperrors.ErrMalformedRow, err)
	}
	return doc, nil
}

// Parameters decodes the row's embedded parameter JSON, with the same absence
// and error semantics as Documentation.
func (r Row) Parameters() (Parameters, error) {
	var params Parameters
	s := r.String(fieldParameters)
	if s == "" {
		return params, nil
	}
	if err := json.Unmarshal([]byte(s), &params); err != nil {
		return params, fmt.Errorf("%w: parameters: %v", apperrors.ErrMalformedRow, err)
	}
	return params, nil
}
