package form

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/erp/console/internal/infrastructure/apiclient"
)

// ToMultipart flattens the draft's top-level json fields into form fields
// and adds file. Strings are sent as-is, null fields are skipped and
// everything else (numbers, booleans, arrays, objects) is sent as its json
// text.
func ToMultipart(draft any, file apiclient.File) (*apiclient.Multipart, error) {
	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("draft is not an object: %w", err)
	}

	mp := &apiclient.Multipart{Fields: make(map[string]string, len(obj))}
	for k, v := range obj {
		v = bytes.TrimSpace(v)
		switch {
		case bytes.Equal(v, []byte("null")):
			continue
		case len(v) > 0 && v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, fmt.Errorf("decoding field %s: %w", k, err)
			}
			mp.Fields[k] = s
		default:
			mp.Fields[k] = string(v)
		}
	}
	mp.Files = []apiclient.File{file}
	return mp, nil
}
