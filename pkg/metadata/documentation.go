package metadata

import (
	"encoding/json"

	"github.com/ekaya-inc/metadoc/pkg/jsonutil"
)

// Documentation is the decoded per-row documentation blob. Known keys get
// typed fields; the full decoded field set is retained so the raw projection
// loses nothing, including keys this pipeline does not recognize.
type Documentation struct {
	Description     string
	LongDescription string
	Category        string
	AllowedValues   json.RawMessage

	// fields holds every key as originally decoded. MarshalJSON emits this,
	// which is what makes the raw projection a true passthrough.
	fields map[string]json.RawMessage
}

func (d *Documentation) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	d.fields = fields
	for key, raw := range fields {
		switch key {
		case "description":
			d.Description = jsonutil.FlexibleStringValue(raw)
		case "longDescription":
			d.LongDescription = jsonutil.FlexibleStringValue(raw)
		case "category":
			d.Category = jsonutil.FlexibleStringValue(raw)
		case "allowedValues":
			d.AllowedValues = raw
		}
	}
	return nil
}

func (d Documentation) MarshalJSON() ([]byte, error) {
	if d.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.fields)
}
