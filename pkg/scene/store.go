package scene

import "sync"

// Kind identifies the type of a selected element.
type Kind int

const (
	KindNone Kind = iota
	KindImage
	KindText
)

// String returns "image", "text" or "none".
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	default:
		return "none"
	}
}

// Selection names the element the user is currently editing.
type Selection struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id,omitempty"`
}

// IsZero reports whether nothing is selected.
func (s Selection) IsZero() bool { return s.Kind == KindNone }

// Store holds the live, mutable scene. It is shared by the layout and
// history engines and by every editing flow.
//
// Implementations must never hand out memory they keep: getters return
// copies and setters store copies.
type Store interface {
	Images() []ImageElement
	SetImages([]ImageElement)
	Texts() []TextElement
	SetTexts([]TextElement)

	// Snapshot returns a deep copy of the whole scene.
	Snapshot() Scene
	// Replace swaps the whole scene for a deep copy of s.
	Replace(s Scene)

	Selection() Selection
	Select(Selection)
}

// MemoryStore is the in-memory [Store]. The zero value is an empty scene
// ready for use. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	scene    Scene
	selected Selection
}

// NewMemoryStore returns a store seeded with a copy of initial.
func NewMemoryStore(initial Scene) *MemoryStore {
	return &MemoryStore{scene: initial.Clone()}
}

func (m *MemoryStore) Images() []ImageElement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Scene{Images: m.scene.Images}.Clone().Images
}

func (m *MemoryStore) SetImages(images []ImageElement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scene.Images = Scene{Images: images}.Clone().Images
}

func (m *MemoryStore) Texts() []TextElement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Scene{Texts: m.scene.Texts}.Clone().Texts
}

func (m *MemoryStore) SetTexts(texts []TextElement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scene.Texts = Scene{Texts: texts}.Clone().Texts
}

func (m *MemoryStore) Snapshot() Scene {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scene.Clone()
}

func (m *MemoryStore) Replace(s Scene) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scene = s.Clone()
}

func (m *MemoryStore) Selection() Selection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected
}

func (m *MemoryStore) Select(s Selection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = s
}

var _ Store = (*MemoryStore)(nil)
