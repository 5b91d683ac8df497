package capture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	onFrame   func(FrameInfo)
	onObject  func(Object)
	onReady   func()
	onCancel  func(CancelReason)
	destroyed int
}

func (f *fakeSource) SetFrameHandler(h func(FrameInfo))     { f.onFrame = h }
func (f *fakeSource) SetObjectHandler(h func(Object))       { f.onObject = h }
func (f *fakeSource) SetReadyHandler(h func())              { f.onReady = h }
func (f *fakeSource) SetCancelHandler(h func(CancelReason)) { f.onCancel = h }
func (f *fakeSource) Destroy()                              { f.destroyed++ }

func opener(src *fakeSource) func() (Source, error) {
	return func() (Source, error) { return src, nil }
}

func TestRequesterDestroysSourceOnReady(t *testing.T) {
	s := NewSession()
	r := NewRequester(s)
	src := &fakeSource{}

	require.NoError(t, r.Request(opener(src)))
	assert.Equal(t, StateRequesting, s.State())

	fd := pipeFD(t)
	src.onFrame(testInfo)
	src.onObject(Object{FD: fd, Stride: 7680})
	assert.Zero(t, src.destroyed, "source lives until the frame completes")

	src.onReady()
	assert.Equal(t, 1, src.destroyed)
	assert.True(t, s.IsDone())

	frame := s.TakeFrame()
	require.NotNil(t, frame)
	assert.Equal(t, fd, frame.Planes[0].FD)
	require.NoError(t, frame.Close())

	r.Close()
	assert.Equal(t, 1, src.destroyed, "a finished source is not destroyed twice")
}

func TestRequesterDestroysSourceOnCancel(t *testing.T) {
	s := NewSession()
	r := NewRequester(s)
	src := &fakeSource{}

	require.NoError(t, r.Request(opener(src)))
	fd := pipeFD(t)
	src.onObject(Object{FD: fd})
	src.onCancel(CancelPermanent)

	assert.Equal(t, 1, src.destroyed)
	assert.Equal(t, StateCancelled, s.State())
	assert.Equal(t, CancelPermanent, s.CancelReason())
	assert.False(t, isOpen(fd))
	assert.Nil(t, s.TakeFrame())
}

func TestRequesterRoutesBySourceToken(t *testing.T) {
	s := NewSession()
	r := NewRequester(s)
	old, current := &fakeSource{}, &fakeSource{}

	require.NoError(t, r.Request(opener(old)))
	oldFD := pipeFD(t)
	old.onObject(Object{FD: oldFD})

	require.NoError(t, r.Request(opener(current)))
	assert.Equal(t, 1, old.destroyed, "a new request destroys the pending source")
	assert.False(t, isOpen(oldFD), "descriptors of the superseded request are closed")

	// Late events from the superseded source must not reach the new request.
	lateFD := pipeFD(t)
	old.onFrame(FrameInfo{Width: 1, Height: 1})
	old.onObject(Object{FD: lateFD})
	old.onReady()
	assert.False(t, isOpen(lateFD))
	assert.Equal(t, StateRequesting, s.State())
	assert.Equal(t, 1, old.destroyed)
	assert.Zero(t, current.destroyed)

	fd := pipeFD(t)
	current.onFrame(testInfo)
	current.onObject(Object{FD: fd})
	current.onReady()

	frame := s.TakeFrame()
	require.NotNil(t, frame)
	assert.Equal(t, uint32(1920), frame.Width)
	require.Len(t, frame.Planes, 1)
	assert.Equal(t, fd, frame.Planes[0].FD)
	assert.Equal(t, 1, current.destroyed)
	require.NoError(t, frame.Close())
}

func TestRequesterOpenError(t *testing.T) {
	s := NewSession()
	r := NewRequester(s)
	first := &fakeSource{}
	require.NoError(t, r.Request(opener(first)))

	err := r.Request(func() (Source, error) { return nil, errors.New("no manager") })
	assert.EqualError(t, err, "no manager")
	assert.Equal(t, 1, first.destroyed)
	assert.False(t, s.IsDone())

	r.Close()
	assert.Equal(t, 1, first.destroyed)
}

func TestRequesterCloseDestroysPending(t *testing.T) {
	s := NewSession()
	r := NewRequester(s)
	src := &fakeSource{}
	require.NoError(t, r.Request(opener(src)))

	fd := pipeFD(t)
	src.onObject(Object{FD: fd})
	r.Close()

	assert.Equal(t, 1, src.destroyed)
	assert.False(t, isOpen(fd))
	assert.Equal(t, StateIdle, s.State())

	src.onReady()
	assert.Nil(t, s.TakeFrame(), "events after close are ignored")
}
