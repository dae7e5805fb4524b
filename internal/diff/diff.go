package diff

import (
	"encoding/json"
	"errors"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Result maps href to value for every followed account that does not
// follow back, in following-list order.
type Result struct {
	accounts *orderedmap.OrderedMap[string, json.RawMessage]
}

func newResult() *Result {
	return &Result{accounts: orderedmap.New[string, json.RawMessage]()}
}

func (r *Result) Len() int {
	return r.accounts.Len()
}

// Get returns the raw JSON value recorded for href.
func (r *Result) Get(href string) (json.RawMessage, bool) {
	return r.accounts.Get(href)
}

// Hrefs returns the keys in insertion order.
func (r *Result) Hrefs() []string {
	out := make([]string, 0, r.accounts.Len())
	for pair := r.accounts.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return r.accounts.MarshalJSON()
}

var _ json.Marshaler = (*Result)(nil)

// Compute extracts every followers entry, then every following entry, and
// collects the following accounts whose href is absent from the followers.
// The first entry that cannot be read aborts: with an *ExtractionError when a
// key or the string_list_data element is missing, with an *EntryShapeError
// otherwise.
func Compute(followers, following []json.RawMessage) (*Result, error) {
	known := make(map[string]json.RawMessage, len(followers))
	for i, raw := range followers {
		acc, err := ExtractAccount(raw)
		if err != nil {
			return nil, entryFailure(Followers, i, err)
		}
		if _, seen := known[acc.Href]; !seen {
			known[acc.Href] = acc.Value
		}
	}

	out := newResult()
	for i, raw := range following {
		acc, err := ExtractAccount(raw)
		if err != nil {
			return nil, entryFailure(Following, i, err)
		}
		if _, follows := known[acc.Href]; follows {
			continue
		}
		if _, dup := out.accounts.Get(acc.Href); dup {
			continue
		}
		out.accounts.Set(acc.Href, acc.Value)
	}
	return out, nil
}

func entryFailure(side Side, index int, err error) error {
	var ee *entryError
	if errors.As(err, &ee) && ee.missing {
		return &ExtractionError{Side: side, Index: index, Detail: ee.detail}
	}
	return &EntryShapeError{Side: side, Index: index, Detail: err.Error()}
}
