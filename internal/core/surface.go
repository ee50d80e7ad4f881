package core

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrMissingSurface is returned when a match is built without one of the
// render surfaces it needs. It is fatal for that match.
var ErrMissingSurface = errors.New("core: missing render surface")

// Surface is an opaque handle to a visual entity (paddle, ball, cell, token).
// The simulation only ever reads its rect and moves or restyles it.
type Surface interface {
	Rect() Rect
	SetPosition(x, y float64)
	SetStyleClass(classes ...string)
}

// MemSurface is an in-memory Surface. The TUI renderer reads it from its own
// goroutine while the match loop writes it, so all access is locked.
type MemSurface struct {
	mu      sync.RWMutex
	rect    Rect
	classes []string
}

// NewMemSurface creates a surface with the given geometry.
func NewMemSurface(r Rect) *MemSurface {
	return &MemSurface{rect: r}
}

func (s *MemSurface) Rect() Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rect
}

func (s *MemSurface) SetPosition(x, y float64) {
	s.mu.Lock()
	s.rect.Left, s.rect.Top = x, y
	s.mu.Unlock()
}

func (s *MemSurface) SetStyleClass(classes ...string) {
	s.mu.Lock()
	s.classes = append(s.classes[:0], classes...)
	s.mu.Unlock()
}

// SetSize changes the surface size. Layout code calls this on resize; the
// simulation never does.
func (s *MemSurface) SetSize(w, h float64) {
	s.mu.Lock()
	s.rect.Width, s.rect.Height = w, h
	s.mu.Unlock()
}

// Classes returns a copy of the current style classes.
func (s *MemSurface) Classes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.classes)
}

// HasClass reports whether the surface currently carries the class.
func (s *MemSurface) HasClass(class string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.classes, class)
}

// Adapter is the Geometry Adapter: the only code that touches render
// surfaces. Entities are addressed by name ("paddle1", "ball", "cell:c3:2").
type Adapter struct {
	surfaces map[string]Surface
}

// NewAdapter creates an adapter over the given named surfaces.
func NewAdapter(surfaces map[string]Surface) *Adapter {
	m := make(map[string]Surface, len(surfaces))
	for name, s := range surfaces {
		if s != nil {
			m[name] = s
		}
	}
	return &Adapter{surfaces: m}
}

// Require checks that every named surface is bound.
func (a *Adapter) Require(names ...string) error {
	for _, name := range names {
		if _, ok := a.surfaces[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingSurface, name)
		}
	}
	return nil
}

// Read returns the current rect of a surface. ok is false if it is unbound.
func (a *Adapter) Read(name string) (Rect, bool) {
	s, ok := a.surfaces[name]
	if !ok {
		return Rect{}, false
	}
	return s.Rect(), true
}

// Place moves a surface. Unbound names are ignored.
func (a *Adapter) Place(name string, x, y float64) {
	if s, ok := a.surfaces[name]; ok {
		s.SetPosition(x, y)
	}
}

// Style replaces the style classes of a surface. Unbound names are ignored.
func (a *Adapter) Style(name string, classes ...string) {
	if s, ok := a.surfaces[name]; ok {
		s.SetStyleClass(classes...)
	}
}
