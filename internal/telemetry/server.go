package telemetry

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
)

const (
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

var ErrModuleNotFound = errors.New("telemetry: module not found")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ErrResponse renders an error as JSON with its HTTP status.
type ErrResponse struct {
	Err            error  `json:"-"`
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorText      string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func errNotFound(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found.",
		ErrorText:      err.Error(),
	}
}

// Router returns the HTTP handler for the dashboard API.
func (h *Hub) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/modules", h.listModules)
		r.Get("/modules/{name}", h.getModule)
	})
	r.Get("/ws", h.serveWS)

	return r
}

func (h *Hub) listModules(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.Snapshots())
}

func (h *Hub) getModule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	snap, ok := h.Snapshot(name)
	if !ok {
		render.Render(w, r, errNotFound(ErrModuleNotFound))
		return
	}
	render.JSON(w, r, snap)
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "err", err)
		return
	}
	c, err := h.register()
	if err != nil {
		h.logger.Error("register client", "err", err)
		conn.Close()
		return
	}
	h.logger.Debug("client connected", "remote", r.RemoteAddr)

	// reader: clients only send control frames; a read error means gone
	go func() {
		defer func() {
			h.unregister(c)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.logger.Debug("client disconnected", "remote", r.RemoteAddr, "err", err)
				return
			}
		}
	}()

	// writer
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer func() {
			ticker.Stop()
			conn.Close()
		}()
		for {
			select {
			case msg, ok := <-c.send:
				if !ok {
					_ = writeFrame(conn, websocket.CloseMessage, []byte{})
					return
				}
				if err := writeFrame(conn, websocket.TextMessage, msg); err != nil {
					return
				}
			case <-ticker.C:
				if err := writeFrame(conn, websocket.PingMessage, []byte{}); err != nil {
					return
				}
			}
		}
	}()
}

type frameWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
}

// writeFrame writes one message under a writeWait deadline.
func writeFrame(w frameWriter, messageType int, data []byte) error {
	if err := w.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return w.WriteMessage(messageType, data)
}
