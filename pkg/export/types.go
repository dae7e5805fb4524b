package export

// Entry is one account record in a followers or following export.
type Entry struct {
	Title          string           `json:"title,omitempty"`
	MediaListData  []any            `json:"media_list_data,omitempty"`
	StringListData []StringListData `json:"string_list_data"`
}

// StringListData holds the account identifier (Href) and its display label (Value).
type StringListData struct {
	Href      string `json:"href"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// FollowingFile is the top-level shape of a following export.
type FollowingFile struct {
	RelationshipsFollowing []Entry `json:"relationships_following"`
}

// FollowersFile is the object form of a followers export. Exports may also
// carry the entries as a bare top-level array.
type FollowersFile struct {
	StringListData []Entry `json:"string_list_data"`
}

const (
	FollowingKey = "relationships_following"
	FollowersKey = "string_list_data"
	EntryListKey = "string_list_data"
	HrefKey      = "href"
	ValueKey     = "value"
)

// NewEntry builds a single-account entry the way exports lay it out.
func NewEntry(href, value string) Entry {
	return Entry{StringListData: []StringListData{{Href: href, Value: value}}}
}
