package triage

// Action is the decision recorded for a processed image.
type Action int

const (
	ActionMove Action = iota
	ActionDelete
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionDelete:
		return "delete"
	case ActionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Record is one processed image. Records are values and never change once
// pushed.
type Record struct {
	// FileRef is where the image lives after the action.
	FileRef string
	Kind    Action
	// BackupRef is the crop sidecar that existed when the action ran, or "".
	BackupRef string
	// Index is the queue position the image was processed from.
	Index int
	// Source is the image path inside the source folder.
	Source string
}

// History is a LIFO stack of records.
type History struct {
	records []Record
}

func (h *History) Push(r Record) {
	h.records = append(h.records, r)
}

func (h *History) Pop() (Record, bool) {
	if len(h.records) == 0 {
		return Record{}, false
	}
	last := len(h.records) - 1
	r := h.records[last]
	h.records = h.records[:last]
	return r, true
}

func (h *History) Peek() (Record, bool) {
	if len(h.records) == 0 {
		return Record{}, false
	}
	return h.records[len(h.records)-1], true
}

func (h *History) Len() int {
	return len(h.records)
}

// Records returns a copy ordered oldest first.
func (h *History) Records() []Record {
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}
