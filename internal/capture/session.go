// Package capture drives one zwlr_export_dmabuf frame at a time: it collects
// the frame metadata and plane descriptors the compositor sends and hands out
// a complete Frame once the compositor marks it ready.
package capture

import (
	"fmt"
	"os"
	"sync"

	"github.com/pescheckit/sway-mirror/internal/log"
	"golang.org/x/sys/unix"
)

type State int

const (
	StateIdle State = iota
	StateRequesting
	StateAccumulating
	StateReady
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateAccumulating:
		return "accumulating"
	case StateReady:
		return "ready"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type CancelReason uint32

const (
	CancelTemporary CancelReason = 0
	CancelPermanent CancelReason = 1
	CancelResizing  CancelReason = 2
)

func (r CancelReason) String() string {
	switch r {
	case CancelTemporary:
		return "temporary"
	case CancelPermanent:
		return "permanent"
	case CancelResizing:
		return "resizing"
	default:
		return fmt.Sprintf("reason(%d)", uint32(r))
	}
}

// MaxPlanes is the most planes a dma-buf can have. Objects for a higher plane
// index are refused.
const MaxPlanes = 4

// Token identifies one capture request. Events carrying an older token belong
// to a request that was superseded and are dropped.
type Token uint64

// FrameInfo carries the frame event.
type FrameInfo struct {
	Width      uint32
	Height     uint32
	Format     uint32
	Modifier   uint64
	NumObjects uint32
	Flags      uint32
}

// Object carries one object event. FD is owned by the receiver from the moment
// the event is delivered.
type Object struct {
	Index      uint32
	FD         int
	Size       uint32
	Offset     uint32
	Stride     uint32
	PlaneIndex uint32
}

type Session struct {
	mu     sync.Mutex
	gen    Token
	state  State
	info   FrameInfo
	planes []Plane
	files  []*os.File
	frame  *Frame
	reason CancelReason
}

func NewSession() *Session {
	return &Session{}
}

// Begin discards anything left from the previous request and starts a new
// one. The returned token must accompany every event of the new frame.
func (s *Session) Begin() Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.gen++
	s.state = StateRequesting
	return s.gen
}

func (s *Session) resetLocked() {
	if err := closeFiles(s.files); err != nil {
		log.Debug("Closing leftover plane descriptors", "err", err)
	}
	s.files = nil
	s.planes = nil
	s.info = FrameInfo{}
	s.reason = CancelTemporary
	if s.frame != nil {
		s.frame.Close()
		s.frame = nil
	}
	s.state = StateIdle
}

func (s *Session) acceptingLocked(tok Token) bool {
	if tok != s.gen {
		return false
	}
	return s.state == StateRequesting || s.state == StateAccumulating
}

func (s *Session) HandleFrame(tok Token, info FrameInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptingLocked(tok) {
		return
	}
	s.info = info
	s.state = StateAccumulating
}

func (s *Session) HandleObject(tok Token, obj Object) {
	if obj.FD < 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptingLocked(tok) {
		unix.Close(obj.FD)
		return
	}
	if obj.PlaneIndex >= MaxPlanes {
		log.Debug("Dropping object with out of range plane index", "plane", obj.PlaneIndex)
		unix.Close(obj.FD)
		return
	}

	file := os.NewFile(uintptr(obj.FD), fmt.Sprintf("dmabuf-plane-%d", obj.PlaneIndex))
	idx := int(obj.PlaneIndex)
	for len(s.planes) <= idx {
		s.planes = append(s.planes, emptyPlane)
		s.files = append(s.files, nil)
	}
	if prev := s.files[idx]; prev != nil {
		log.Debugf("Plane %d sent twice, dropping previous descriptor", idx)
		prev.Close()
	}

	s.files[idx] = file
	s.planes[idx] = Plane{
		FD:     obj.FD,
		Offset: obj.Offset,
		Stride: obj.Stride,
	}
	s.state = StateAccumulating
}

func (s *Session) HandleReady(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptingLocked(tok) {
		return
	}

	planes := s.planes
	for i := range planes {
		if planes[i].Valid() {
			planes[i].Modifier = s.info.Modifier
		}
	}
	if s.info.NumObjects != 0 && int(s.info.NumObjects) != len(planes) {
		log.Debug("Frame object count mismatch", "announced", s.info.NumObjects, "received", len(planes))
	}

	s.frame = &Frame{
		Width:    s.info.Width,
		Height:   s.info.Height,
		Format:   s.info.Format,
		Modifier: s.info.Modifier,
		Planes:   planes,
		files:    s.files,
	}
	s.planes = nil
	s.files = nil
	s.state = StateReady
}

func (s *Session) HandleCancel(tok Token, reason CancelReason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptingLocked(tok) {
		return
	}
	if err := closeFiles(s.files); err != nil {
		log.Debug("Closing cancelled plane descriptors", "err", err)
	}
	s.files = nil
	s.planes = nil
	s.reason = reason
	s.state = StateCancelled
}

// IsDone reports whether the current request reached a terminal state.
func (s *Session) IsDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateReady || s.state == StateCancelled
}

// TakeFrame hands the ready frame to the caller, who then owns its
// descriptors. It returns nil when there is no frame or it was already taken.
func (s *Session) TakeFrame() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := s.frame
	s.frame = nil
	return frame
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) CancelReason() CancelReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// PendingDescriptors counts descriptors held for a frame that is not ready yet.
func (s *Session) PendingDescriptors() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, f := range s.files {
		if f != nil {
			n++
		}
	}
	return n
}

// Close abandons the current request and releases everything it holds.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.gen++
}
