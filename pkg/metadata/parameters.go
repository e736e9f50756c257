package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ekaya-inc/metadoc/pkg/jsonutil"
)

// Parameters is the decoded parameter encoding of a function row. Current
// rows carry a name→declared-type object whose key order is the declaration
// order; legacy rows carry a bare ordered list of names. Exactly one branch
// is set after a successful decode, and all downstream handling dispatches on
// which one it is.
type Parameters struct {
	Mapping *orderedmap.OrderedMap[string, string]
	Legacy  []string
}

func (p *Parameters) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '{':
		om := orderedmap.New[string, string]()
		if err := om.UnmarshalJSON(trimmed); err != nil {
			return err
		}
		p.Mapping = om
		return nil
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return err
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, jsonutil.FlexibleStringValue(entry))
		}
		p.Legacy = names
		return nil
	default:
		return fmt.Errorf("parameters must be an object or an array, got %q", trimmed)
	}
}

// MarshalJSON re-emits the original shape, which keeps the raw projection a
// passthrough: objects stay objects (in declaration order), lists stay lists.
func (p Parameters) MarshalJSON() ([]byte, error) {
	if p.Mapping != nil {
		return json.Marshal(p.Mapping)
	}
	if p.Legacy != nil {
		return json.Marshal(p.Legacy)
	}
	return []byte("null"), nil
}

// Len is the declared parameter count, whichever branch is set.
func (p Parameters) Len() int {
	if p.Mapping != nil {
		return p.Mapping.Len()
	}
	return len(p.Legacy)
}
