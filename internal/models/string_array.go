package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// StringArray is an ordered list of strings stored as a JSON array.
// Reads tolerate legacy shapes: a JSON array, a JSON-encoded string, or a
// bare comma separated string all decode to the same list. Every path yields
// trimmed, non-empty items.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	b, err := json.Marshal([]string(compact(a)))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *StringArray) Scan(value interface{}) error {
	if a == nil {
		return fmt.Errorf("models.StringArray: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*a = StringArray{}
	case []byte:
		*a = ParseStringList(string(v))
	case string:
		*a = ParseStringList(v)
	default:
		return fmt.Errorf("models.StringArray: unsupported Scan type %T", value)
	}
	return nil
}

// UnmarshalJSON accepts either a JSON array or a string in any of the
// shapes understood by ParseStringList.
func (a *StringArray) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*a = StringArray{}
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("models.StringArray: %w", err)
		}
		*a = compact(items)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("models.StringArray: expected array or string: %w", err)
	}
	*a = ParseStringList(s)
	return nil
}

func (a StringArray) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// UnmarshalBSONValue lets documents written with tech_stack as a string
// decode the same as those written with a native array.
func (a *StringArray) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*a = StringArray{}
	case bsontype.String:
		s, _ := raw.StringValueOK()
		*a = ParseStringList(s)
	case bsontype.Array:
		var items []string
		if err := raw.Unmarshal(&items); err != nil {
			return fmt.Errorf("models.StringArray: %w", err)
		}
		*a = compact(items)
	default:
		return fmt.Errorf("models.StringArray: unsupported BSON type %s", t)
	}
	return nil
}

// ParseStringList normalizes a serialized list.
//
//	`["React","Go"]` -> [React Go]
//	`"Go"`           -> [Go]
//	`Swift, Kotlin`  -> [Swift Kotlin]
func ParseStringList(raw string) StringArray {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return StringArray{}
	}

	if strings.HasPrefix(raw, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			return compact(arr)
		}
	}

	if strings.HasPrefix(raw, `"`) {
		var single string
		if err := json.Unmarshal([]byte(raw), &single); err == nil {
			return SplitList(single, ",")
		}
	}

	return SplitList(raw, ",")
}

// SplitList splits s on sep, trimming items and dropping empty ones.
func SplitList(s, sep string) StringArray {
	return compact(strings.Split(s, sep))
}

// compact trims every item and drops the empty ones. The result is never nil.
func compact(items []string) StringArray {
	out := make(StringArray, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// SplitLines splits multi-line form input into one item per non-empty line.
func SplitLines(s string) StringArray {
	return SplitList(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// Join renders the list back into the comma separated form used by forms.
func (a StringArray) Join(sep string) string {
	return strings.Join(a, sep)
}
