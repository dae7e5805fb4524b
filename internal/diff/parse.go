package diff

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/example/followback/pkg/export"
)

// Account is the (href, value) pair read from an export entry. Value is kept
// as the raw JSON it was exported as.
type Account struct {
	Href  string
	Value json.RawMessage
}

// ParseFollowing returns the raw entries under "relationships_following".
// A missing key yields an empty list.
func ParseFollowing(data []byte) ([]json.RawMessage, error) {
	return parseObjectList(data, export.FollowingKey, Following)
}

// ParseFollowers returns the raw followers entries. Both the bare top-level
// array and the object form keyed by "string_list_data" are accepted.
func ParseFollowers(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, &MalformedExportError{Side: Followers, Err: err}
		}
		return entries, nil
	}
	return parseObjectList(data, export.FollowersKey, Followers)
}

func parseObjectList(data []byte, key string, side Side) ([]json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &MalformedExportError{Side: side, Err: err}
	}
	if top == nil {
		return nil, &MalformedExportError{Side: side, Err: errNotObject}
	}
	raw, ok := top[key]
	if !ok {
		return nil, nil
	}
	if isNull(raw) {
		return nil, &MalformedExportError{Side: side, Err: fmt.Errorf("%s is null", key)}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &MalformedExportError{Side: side, Err: fmt.Errorf("%s: %w", key, err)}
	}
	return entries, nil
}

// entryError is the bare failure from one entry. missing marks the
// documented client failures: an absent key or an empty string_list_data.
type entryError struct {
	detail  string
	missing bool
}

func (e *entryError) Error() string { return e.detail }

func missingKey(key string) error {
	return &entryError{detail: fmt.Sprintf("missing key %q", key), missing: true}
}

func shapeError(format string, args ...any) error {
	return &entryError{detail: fmt.Sprintf(format, args...)}
}

// ExtractAccount reads string_list_data[0].href and .value from one entry.
// The returned error is the bare detail; callers attach side and index.
func ExtractAccount(raw json.RawMessage) (Account, error) {
	entry, ok := asObject(raw)
	if !ok {
		return Account{}, shapeError("entry is not an object")
	}
	listRaw, ok := entry[export.EntryListKey]
	if !ok {
		return Account{}, missingKey(export.EntryListKey)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(listRaw, &items); err != nil || isNull(listRaw) {
		if _, isObj := asObject(listRaw); isObj {
			return Account{}, &entryError{detail: fmt.Sprintf("%s has no element 0", export.EntryListKey), missing: true}
		}
		if isNull(listRaw) {
			return Account{}, shapeError("%s is null", export.EntryListKey)
		}
		return Account{}, shapeError("%s is not an array", export.EntryListKey)
	}
	if len(items) == 0 {
		return Account{}, &entryError{detail: fmt.Sprintf("%s is empty", export.EntryListKey), missing: true}
	}
	first, ok := asObject(items[0])
	if !ok {
		return Account{}, shapeError("%s[0] is not an object", export.EntryListKey)
	}
	hrefRaw, ok := first[export.HrefKey]
	if !ok {
		return Account{}, missingKey(export.HrefKey)
	}
	value, ok := first[export.ValueKey]
	if !ok {
		return Account{}, missingKey(export.ValueKey)
	}
	var href string
	if isNull(hrefRaw) || json.Unmarshal(hrefRaw, &href) != nil {
		return Account{}, shapeError("%q is not a string", export.HrefKey)
	}
	return Account{Href: href, Value: value}, nil
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
