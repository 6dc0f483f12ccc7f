package browser

// Selection is an insertion-ordered set of file keys
type Selection struct {
	keys  []string
	index map[string]int
}

// NewSelection creates an empty selection
func NewSelection() *Selection {
	return &Selection{index: make(map[string]int)}
}

// Toggle flips membership of key. Folder keys are never selectable.
func (s *Selection) Toggle(key string) {
	if IsFolderKey(key) {
		return
	}
	if i, ok := s.index[key]; ok {
		s.keys = append(s.keys[:i], s.keys[i+1:]...)
		delete(s.index, key)
		for j := i; j < len(s.keys); j++ {
			s.index[s.keys[j]] = j
		}
		return
	}
	s.index[key] = len(s.keys)
	s.keys = append(s.keys, key)
}

func (s *Selection) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Keys returns a copy of the selected keys in selection order
func (s *Selection) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *Selection) Len() int { return len(s.keys) }

func (s *Selection) Clear() {
	s.keys = nil
	s.index = make(map[string]int)
}

// DialogKind tags the active confirmation dialog
type DialogKind int

const (
	DialogNone DialogKind = iota
	DialogDeleteObjects
	DialogDeleteFolder
	DialogMove
)

func (k DialogKind) String() string {
	switch k {
	case DialogDeleteObjects:
		return "delete-objects"
	case DialogDeleteFolder:
		return "delete-folder"
	case DialogMove:
		return "move"
	default:
		return "none"
	}
}

// Dialog is the single confirmation dialog. Keys is set for delete-objects
// and move, Prefix for delete-folder. Target marks a dialog opened for one
// row rather than for the selection; confirming it leaves the selection
// alone.
type Dialog struct {
	Kind   DialogKind
	Keys   []string
	Prefix string
	Target bool
}

func (d Dialog) Open() bool { return d.Kind != DialogNone }

// Coordinator owns the selection and the one active dialog of a listing
type Coordinator struct {
	Selection *Selection
	dialog    Dialog
}

func NewCoordinator() *Coordinator {
	return &Coordinator{Selection: NewSelection()}
}

// Dialog returns the active dialog, Kind None when closed
func (c *Coordinator) Dialog() Dialog { return c.dialog }

// OpenDeleteObjects asks to delete keys. An empty key set opens nothing.
func (c *Coordinator) OpenDeleteObjects(keys []string) {
	if len(keys) == 0 {
		return
	}
	c.dialog = Dialog{Kind: DialogDeleteObjects, Keys: append([]string(nil), keys...)}
}

// OpenDeleteTarget asks to delete the single file key without touching the
// selection
func (c *Coordinator) OpenDeleteTarget(key string) {
	if key == "" || IsFolderKey(key) {
		return
	}
	c.dialog = Dialog{Kind: DialogDeleteObjects, Keys: []string{key}, Target: true}
}

// OpenDeleteFolder asks to delete everything under prefix
func (c *Coordinator) OpenDeleteFolder(prefix string) {
	if prefix == "" {
		return
	}
	c.dialog = Dialog{Kind: DialogDeleteFolder, Prefix: prefix, Target: true}
}

// OpenMove asks to move keys to a destination chosen in the dialog
func (c *Coordinator) OpenMove(keys []string) {
	if len(keys) == 0 {
		return
	}
	c.dialog = Dialog{Kind: DialogMove, Keys: append([]string(nil), keys...)}
}

// OpenMoveTarget asks to move the single file key
func (c *Coordinator) OpenMoveTarget(key string) {
	if key == "" || IsFolderKey(key) {
		return
	}
	c.dialog = Dialog{Kind: DialogMove, Keys: []string{key}, Target: true}
}

// Close dismisses the active dialog along with its transient target
func (c *Coordinator) Close() {
	c.dialog = Dialog{}
}

// ClearSelection empties the selection and closes any dialog; used when
// the bucket changes.
func (c *Coordinator) ClearSelection() {
	c.Selection.Clear()
	c.Close()
}
