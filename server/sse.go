package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hupe1980/agora/core"
)

// EncodeSSE renders one event as an SSE frame: the event type as the frame
// name and the JSON body as its data line.
func EncodeSSE(ev core.Event) ([]byte, error) {
	data, err := ev.MarshalData()
	if err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", ev.Type, data), nil
}

// keepaliveFrame is the comment written on idle streams so intermediaries do
// not time the connection out.
var keepaliveFrame = []byte(": keepalive\n\n")

// streamEvents attaches an observer to the run's bus and relays its events as
// SSE until the run is terminal and the observer's queue is drained, or the
// client disconnects.
func (s *Server) streamEvents(c *gin.Context) {
	state, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	sub := state.Bus().Attach()
	defer state.Bus().Detach(sub)

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	keepalive := newKeepaliveTimer(s.opts.KeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-clientGone:
			return
		case ev, ok := <-sub.C:
			if !ok {
				// Bus closed and every buffered event delivered.
				return
			}
			if err := writeFrame(c.Writer, ev); err != nil {
				return
			}
			c.Writer.Flush()
			keepalive.Reset()
		case <-keepalive.C():
			if _, err := c.Writer.Write(keepaliveFrame); err != nil {
				return
			}
			c.Writer.Flush()
			keepalive.Reset()
		}
	}
}

// keepaliveTimer wraps a timer that restarts after every written frame, so
// the comment only fires on genuinely idle streams.
type keepaliveTimer struct {
	d time.Duration
	t *time.Timer
}

func newKeepaliveTimer(d time.Duration) *keepaliveTimer {
	if d <= 0 {
		d = 15 * time.Second
	}
	return &keepaliveTimer{d: d, t: time.NewTimer(d)}
}

func (k *keepaliveTimer) C() <-chan time.Time { return k.t.C }
func (k *keepaliveTimer) Reset()              { k.t.Reset(k.d) }
func (k *keepaliveTimer) Stop()               { k.t.Stop() }

func writeFrame(w io.Writer, ev core.Event) error {
	frame, err := EncodeSSE(ev)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}
