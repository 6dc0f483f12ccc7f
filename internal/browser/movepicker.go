package browser

// MovePicker navigates folders of the current bucket to choose where to
// move a set of keys. It starts at the prefix the keys were selected in.
type MovePicker struct {
	base   ListingKey
	prefix string
	keys   []string
}

func NewMovePicker(at ListingKey, keys []string) *MovePicker {
	return &MovePicker{
		base:   at,
		prefix: at.Prefix,
		keys:   append([]string(nil), keys...),
	}
}

// Key is the listing the picker is showing
func (m *MovePicker) Key() ListingKey {
	k := m.base
	k.Prefix = m.prefix
	return k
}

func (m *MovePicker) Keys() []string { return m.keys }

// Destination is the prefix the keys will be moved to, "" for the root
func (m *MovePicker) Destination() string { return m.prefix }

func (m *MovePicker) Enter(folderKey string) {
	if IsFolderKey(folderKey) {
		m.prefix = folderKey
	}
}

func (m *MovePicker) Up() { m.prefix = Parent(m.prefix) }

// Crumbs are the breadcrumbs of the picker's prefix
func (m *MovePicker) Crumbs() []Breadcrumb { return Breadcrumbs(m.prefix) }

// Folders returns only the folders of a listing
func Folders(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.IsFolder {
			out = append(out, e)
		}
	}
	return out
}
