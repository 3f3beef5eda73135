package form

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// ToMap converts a typed payload to its JSON field map so it can be checked
// against a Schema. Absent optional fields stay absent; explicit nulls are nil.
func ToMap(payload any) (map[string]any, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding payload")
	}
	var m map[string]any
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil, errors.Wrap(err, "error decoding payload")
	}
	return m, nil
}
