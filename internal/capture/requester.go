package capture

import "github.com/pescheckit/sway-mirror/internal/log"

// Source is the protocol object behind one capture request. It delivers the
// events of a single frame and is destroyed once that frame is ready or
// cancelled.
type Source interface {
	SetFrameHandler(func(FrameInfo))
	SetObjectHandler(func(Object))
	SetReadyHandler(func())
	SetCancelHandler(func(CancelReason))
	Destroy()
}

// Requester issues capture requests into a Session. Each source's events are
// routed with the token of the request that opened it, so a superseded source
// can never feed a newer request.
type Requester struct {
	session *Session
	source  Source
}

func NewRequester(s *Session) *Requester {
	return &Requester{session: s}
}

// Request starts a new capture. open issues the protocol request and returns
// the frame object; it runs after the session was reset.
func (r *Requester) Request(open func() (Source, error)) error {
	r.release()
	tok := r.session.Begin()

	src, err := open()
	if err != nil {
		return err
	}
	r.source = src

	src.SetFrameHandler(func(info FrameInfo) {
		r.session.HandleFrame(tok, info)
	})
	src.SetObjectHandler(func(obj Object) {
		r.session.HandleObject(tok, obj)
	})
	src.SetReadyHandler(func() {
		r.session.HandleReady(tok)
		r.finish(src)
	})
	src.SetCancelHandler(func(reason CancelReason) {
		r.session.HandleCancel(tok, reason)
		r.finish(src)
		log.Debug("Capture cancelled", "reason", reason)
	})
	return nil
}

// finish destroys src if it is still the pending source. A superseded source
// was destroyed when it was replaced.
func (r *Requester) finish(src Source) {
	if r.source == src {
		r.release()
	}
}

func (r *Requester) release() {
	if r.source != nil {
		r.source.Destroy()
		r.source = nil
	}
}

// Close destroys any pending source and releases the session.
func (r *Requester) Close() {
	r.release()
	r.session.Close()
}
