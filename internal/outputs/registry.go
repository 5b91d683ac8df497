// Package outputs tracks the properties of every wl_output the compositor
// advertises, merging the base protocol with xdg-output extensions.
package outputs

import (
	"sync"

	"github.com/pescheckit/sway-mirror/internal/log"
)

// ModeCurrent is the wl_output mode flag for the active mode.
const ModeCurrent = 0x1

// Output is a snapshot of one output. Handle is whatever the protocol layer
// needs to address the output again (capture, surface placement).
// LogicalWidth and LogicalHeight are the size in compositor space and stay
// zero without xdg-output.
type Output[H any] struct {
	ID            uint32
	Name          string
	Description   string
	Width         int32
	Height        int32
	Refresh       int32
	X             int32
	Y             int32
	LogicalWidth  int32
	LogicalHeight int32
	Scale         int32
	Handle        H
}

type Registry[H any] struct {
	mu      sync.Mutex
	outputs map[uint32]*Output[H]
	order   []uint32
}

func NewRegistry[H any]() *Registry[H] {
	return &Registry[H]{outputs: make(map[uint32]*Output[H])}
}

// Add registers an output under its registry global name. Re-adding an id
// replaces the handle and keeps the recorded properties.
func (r *Registry[H]) Add(id uint32, handle H) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.outputs[id]; ok {
		o.Handle = handle
		return
	}
	r.outputs[id] = &Output[H]{ID: id, Scale: 1, Handle: handle}
	r.order = append(r.order, id)
}

// Remove drops an output whose global went away.
func (r *Registry[H]) Remove(id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.outputs[id]; !ok {
		return false
	}
	delete(r.outputs, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry[H]) update(id uint32, fn func(o *Output[H])) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.outputs[id]; ok {
		fn(o)
	}
}

// HandleMode records the size and refresh of the current mode. Modes without
// the current flag are advertisements and are ignored.
func (r *Registry[H]) HandleMode(id, flags uint32, width, height, refresh int32) {
	if flags&ModeCurrent == 0 {
		return
	}
	r.update(id, func(o *Output[H]) {
		o.Width = width
		o.Height = height
		o.Refresh = refresh
	})
}

func (r *Registry[H]) HandleScale(id uint32, factor int32) {
	r.update(id, func(o *Output[H]) { o.Scale = factor })
}

func (r *Registry[H]) HandleName(id uint32, name string) {
	r.update(id, func(o *Output[H]) { o.Name = name })
}

func (r *Registry[H]) HandleDescription(id uint32, description string) {
	r.update(id, func(o *Output[H]) { o.Description = description })
}

func (r *Registry[H]) HandleLogicalPosition(id uint32, x, y int32) {
	r.update(id, func(o *Output[H]) {
		o.X = x
		o.Y = y
	})
}

func (r *Registry[H]) HandleLogicalSize(id uint32, width, height int32) {
	r.update(id, func(o *Output[H]) {
		o.LogicalWidth = width
		o.LogicalHeight = height
	})
}

// HandleXdgName lets the extension name win over the base protocol name.
func (r *Registry[H]) HandleXdgName(id uint32, name string) {
	if name == "" {
		return
	}
	r.update(id, func(o *Output[H]) { o.Name = name })
}

// HandleXdgDescription only fills in a description the base protocol left empty.
func (r *Registry[H]) HandleXdgDescription(id uint32, description string) {
	r.update(id, func(o *Output[H]) {
		if o.Description == "" {
			o.Description = description
		}
	})
}

func (r *Registry[H]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// List returns copies of every output in discovery order.
func (r *Registry[H]) List() []Output[H] {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]Output[H], 0, len(r.order))
	for _, id := range r.order {
		list = append(list, *r.outputs[id])
	}
	return list
}

func (r *Registry[H]) FindByName(name string) (Output[H], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if o := r.outputs[id]; o.Name == name {
			return *o, true
		}
	}
	return Output[H]{}, false
}

// Targets resolves the destinations for mirroring source. With no names every
// other output is a target; otherwise names are looked up in order and
// unknown ones are skipped.
func (r *Registry[H]) Targets(source string, names []string) []Output[H] {
	if len(names) == 0 {
		var targets []Output[H]
		for _, o := range r.List() {
			if o.Name != source {
				targets = append(targets, o)
			}
		}
		return targets
	}

	var targets []Output[H]
	for _, name := range names {
		o, ok := r.FindByName(name)
		if !ok {
			log.Warnf("Output %s not found, skipping", name)
			continue
		}
		if o.Name == source {
			log.Warnf("Output %s is the mirror source, skipping", name)
			continue
		}
		targets = append(targets, o)
	}
	return targets
}
