package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/session"
)

const SessionCookie = "crm_session"

type SessionOptions struct {
	Store  session.Store
	MaxAge int // seconds
	Secure bool
	Log    zerolog.Logger
}

// Handle is the request's view of its session. Every mutation is written
// through to the store immediately so the cookie is set before the
// response is.
type Handle struct {
	id   string
	data *session.Data
	opts *SessionOptions
}

// Sessions loads the session named by the cookie, or an empty anonymous
// one, and publishes its principal.
func Sessions(opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := &Handle{data: &session.Data{}, opts: &opts}

		if id, err := c.Cookie(SessionCookie); err == nil && id != "" {
			data, err := opts.Store.Get(c.Request.Context(), id)
			switch {
			case err == nil:
				h.id = id
				h.data = data
			case errors.Is(err, session.ErrNotFound):
				h.clearCookie(c)
			default:
				opts.Log.Error().Err(err).Msg("session lookup failed")
			}
		}

		c.Set(ContextSession, h)
		setPrincipal(c, h.data.Principal())
		c.Next()
	}
}

// Session returns the request's handle. Outside the Sessions middleware it
// returns a detached handle whose writes are dropped.
func Session(c *gin.Context) *Handle {
	if v, ok := c.Get(ContextSession); ok {
		if h, ok := v.(*Handle); ok {
			return h
		}
	}
	return &Handle{data: &session.Data{}}
}

func (h *Handle) Principal() access.Principal {
	return h.data.Principal()
}

func (h *Handle) Flash(c *gin.Context, category, message string) {
	h.data.AddFlash(category, message)
	h.persist(c)
}

// PopFlashes returns and clears pending flashes.
func (h *Handle) PopFlashes(c *gin.Context) []session.Flash {
	flashes := h.data.PopFlashes()
	if len(flashes) > 0 && h.id != "" {
		h.persist(c)
	}
	return flashes
}

// Login replaces the session with a fresh id bound to p. Pending flashes
// carry over.
func (h *Handle) Login(c *gin.Context, p access.Principal) error {
	if h.opts == nil {
		return nil
	}

	if h.id != "" {
		if err := h.opts.Store.Delete(c.Request.Context(), h.id); err != nil {
			h.opts.Log.Warn().Err(err).Msg("session delete failed")
		}
	}

	data := session.FromPrincipal(p)
	data.Flashes = h.data.Flashes

	id, err := h.opts.Store.Create(c.Request.Context(), data)
	if err != nil {
		return err
	}

	h.id, h.data = id, data
	h.setCookie(c)
	setPrincipal(c, p)
	return nil
}

// Logout drops the session and starts an anonymous one.
func (h *Handle) Logout(c *gin.Context) {
	if h.opts == nil {
		return
	}

	if h.id != "" {
		if err := h.opts.Store.Delete(c.Request.Context(), h.id); err != nil {
			h.opts.Log.Warn().Err(err).Msg("session delete failed")
		}
	}

	h.id = ""
	h.data = &session.Data{}
	h.clearCookie(c)
	setPrincipal(c, access.Principal{})
}

func (h *Handle) persist(c *gin.Context) {
	if h.opts == nil {
		return
	}

	ctx := c.Request.Context()
	if h.id == "" {
		id, err := h.opts.Store.Create(ctx, h.data)
		if err != nil {
			h.opts.Log.Error().Err(err).Msg("session create failed")
			return
		}
		h.id = id
		h.setCookie(c)
		return
	}

	err := h.opts.Store.Save(ctx, h.id, h.data)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNotFound):
		// Logged out or expired meanwhile: keep the flashes, drop the login.
		h.id = ""
		h.data = &session.Data{Flashes: h.data.Flashes}
		setPrincipal(c, access.Principal{})
		h.persist(c)
	default:
		h.opts.Log.Error().Err(err).Msg("session save failed")
	}
}

func (h *Handle) setCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, h.id, h.opts.MaxAge, "/", "", h.opts.Secure, true)
}

func (h *Handle) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", h.opts.Secure, true)
}
