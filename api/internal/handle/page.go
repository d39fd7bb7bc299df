package handle

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artifact-explorer/api/internal/artifact"
	"artifact-explorer/api/internal/explorer"
	"artifact-explorer/api/internal/facts"
	"artifact-explorer/api/internal/logger"
	"artifact-explorer/api/internal/metrics"
	"artifact-explorer/api/internal/session"
)

// pageData feeds templates/index.html.
type pageData struct {
	View      explorer.View
	FormError string
	Name      string
	WordCount int
	Year      int
}

func (h *Handle) controller(c *gin.Context) *explorer.Controller {
	sid, _ := c.Cookie(session.CookieName)
	id, ctrl := h.sessions.Get(sid)
	metrics.ActiveSessions.Set(float64(h.sessions.Len()))
	if id != sid {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(session.CookieName, id, int(h.sessionTTL.Seconds()), "/", "", false, true)
	}
	return ctrl
}

func (h *Handle) render(c *gin.Context, code int, view explorer.View, formErr string, req *artifact.Request) {
	data := pageData{
		View:      view,
		FormError: formErr,
		WordCount: artifact.DefaultWordCount,
		Year:      time.Now().Year(),
	}
	switch {
	case req != nil:
		data.Name, data.WordCount = req.Name, req.WordCount
	case view.ArtifactName != "":
		data.Name, data.WordCount = view.ArtifactName, view.WordCount
	}
	if data.WordCount <= 0 {
		data.WordCount = artifact.DefaultWordCount
	}
	c.HTML(code, "index.html", data)
}

// Index renders the page as a pure function of the session's controller state.
func (h *Handle) Index(c *gin.Context) {
	ctrl := h.controller(c)
	h.render(c, http.StatusOK, ctrl.View(), "", nil)
}

// Generate accepts the artifact form. The description is produced in the
// background; the browser is sent back to the page, which shows the loading view.
func (h *Handle) Generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.bodyLimit())
	ctrl := h.controller(c)

	req, err := h.formRequest(c)
	if err != nil {
		h.render(c, statusFor(err), ctrl.View(), formMessage(err), &req)
		return
	}

	p, err := ctrl.Begin(req)
	if err != nil {
		h.render(c, statusFor(err), ctrl.View(), formMessage(err), &req)
		return
	}

	h.dispatch(p, logger.FromContext(c.Request.Context()))
	c.Redirect(http.StatusSeeOther, "/")
}

// dispatch runs p on the worker pool. A submission the pool never runs,
// because it is stopped or its context ends first, is failed so the session
// does not stay in Loading.
func (h *Handle) dispatch(p *explorer.Pending, l *zap.Logger) {
	if h.pool.Stopped() {
		l.Warn("describe not dispatched", zap.Error(pond.ErrPoolStopped))
		p.Fail(errShuttingDown(pond.ErrPoolStopped))
		return
	}
	task := h.pool.Submit(func() {
		ctx := logger.WithContext(context.Background(), l)
		if err := p.Run(ctx); err != nil {
			l.Warn("background describe failed", zap.Error(err))
		}
	})
	go func() {
		if err := task.Wait(); err != nil {
			l.Warn("describe not dispatched", zap.Error(err))
			p.Fail(errShuttingDown(err))
		}
	}()
}

func errShuttingDown(err error) error {
	return artifact.NewServiceError("The server is shutting down. Please try again later.", err)
}

// State returns the current view as JSON for script-driven clients.
func (h *Handle) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller(c).View())
}

func (h *Handle) Facts(c *gin.Context) {
	c.JSON(http.StatusOK, facts.Pool)
}

func formMessage(err error) string {
	switch {
	case errors.Is(err, artifact.ErrEmptyName):
		return "Please enter the name of an artifact."
	case errors.Is(err, explorer.ErrBusy):
		return "Please wait for the current analysis to finish."
	case errors.Is(err, artifact.ErrImageTooLarge), isTooLarge(err):
		return "The photo is too large."
	}
	msg := err.Error()
	if msg == "" {
		return explorer.FallbackError
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

// TemplateFuncs are available in templates/index.html.
var TemplateFuncs = template.FuncMap{
	"paragraphs": func(s string) []string {
		var out []string
		for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
	// imageURL only trusts inline image data produced by artifact.Image.DataURL.
	"imageURL": func(s string) template.URL {
		if strings.HasPrefix(s, "data:image/") {
			return template.URL(s)
		}
		return ""
	},
}
