package metadata

import "encoding/json"

// Query texts issued against the engine per run. The catalog lookup is a
// system DMV; the three EVALUATE statements read the documentation tables of
// the currently open catalog. EVALUATE results come back with columns
// qualified by the evaluated table name (functions[name], types[baseType], ...).
const (
	CatalogQuery   = "SELECT [CATALOG_NAME] FROM $SYSTEM.DBSCHEMA_CATALOGS"
	FunctionsQuery = "EVALUATE functions"
	TypesQuery     = "EVALUATE types"
	EnumsQuery     = "EVALUATE enums"
)

// CatalogNameColumn is the column carrying the catalog name in CatalogQuery
// results. DMV columns come back unqualified.
const CatalogNameColumn = "CATALOG_NAME"

// RefreshCommand returns the engine command that recalculates the catalog so
// the documentation tables reflect the currently open document. Extraction
// queries assume this ran immediately before them.
func RefreshCommand(catalog string) string {
	cmd := map[string]any{
		"refresh": map[string]any{
			"type":    "calculate",
			"objects": []map[string]any{{"database": catalog}},
		},
	}
	b, _ := json.Marshal(cmd)
	return string(b)
}
