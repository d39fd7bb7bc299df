package handle

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/gin-gonic/gin"

	"artifact-explorer/api/internal/artifact"
	"artifact-explorer/api/internal/curator"
	"artifact-explorer/api/internal/explorer"
	"artifact-explorer/api/internal/session"
	"artifact-explorer/api/internal/util"
)

type Handle struct {
	engs     *curator.Engines
	sessions *session.Store
	pool     pond.Pool

	maxImageBytes int64
	sessionTTL    time.Duration
}

type Options struct {
	MaxImageBytes int64
	SessionTTL    time.Duration
}

func New(engs *curator.Engines, sessions *session.Store, pool pond.Pool, opts Options) *Handle {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 10 << 20
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	return &Handle{
		engs:          engs,
		sessions:      sessions,
		pool:          pool,
		maxImageBytes: opts.MaxImageBytes,
		sessionTTL:    opts.SessionTTL,
	}
}

// bodyLimit leaves room for the text fields next to the largest accepted image.
func (h *Handle) bodyLimit() int64 { return h.maxImageBytes*2 + 1<<20 }

// Register mounts every route on r.
func (h *Handle) Register(r gin.IRouter) {
	r.GET("/", h.Index)
	r.POST("/generate", h.Generate)

	v1 := r.Group("/api/v1")
	v1.GET("/state", h.State)
	v1.POST("/describe", h.Describe)
	v1.GET("/facts", h.Facts)
}

// statusFor maps request and dispatch failures to HTTP codes.
func statusFor(err error) int {
	var se *artifact.ServiceError
	switch {
	case errors.Is(err, artifact.ErrEmptyName), errors.Is(err, artifact.ErrInvalidWordCount), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, artifact.ErrImageTooLarge), isTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, explorer.ErrBusy):
		return http.StatusConflict
	case errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func parseWordCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, artifact.ErrInvalidWordCount
	}
	return n, nil
}

// readImage loads an uploaded file, enforcing the size limit. A missing
// file yields a nil image.
func (h *Handle) readImage(fh *multipart.FileHeader) (*artifact.Image, error) {
	if fh == nil || fh.Size == 0 {
		return nil, nil
	}
	if fh.Size > h.maxImageBytes {
		return nil, artifact.ErrImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > h.maxImageBytes {
		return nil, artifact.ErrImageTooLarge
	}
	return h.image(data, fh.Header.Get("Content-Type"), fh.Filename)
}

func (h *Handle) image(data []byte, declared, filename string) (*artifact.Image, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if int64(len(data)) > h.maxImageBytes {
		return nil, artifact.ErrImageTooLarge
	}
	mime := util.PickMIME(declared, "", data)
	if !util.IsImageMIME(mime) {
		return nil, fmt.Errorf("%w: unsupported image type %s", errBadImage, mime)
	}
	return &artifact.Image{Data: data, MIMEType: mime, Filename: filename}, nil
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

var (
	errBadRequest = errors.New("bad request")
	errBadImage   = fmt.Errorf("%w: bad image", errBadRequest)
)

// formRequest reads the artifact form fields shared by the page and the API.
func (h *Handle) formRequest(c *gin.Context) (artifact.Request, error) {
	wc, err := parseWordCount(c.PostForm("wordCount"))
	if err != nil {
		return artifact.Request{}, err
	}
	req := artifact.Request{Name: c.PostForm("artifactName"), WordCount: wc}

	fh, err := c.FormFile("image")
	switch {
	case err == nil, errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case isTooLarge(err):
		return req, err
	default:
		return req, fmt.Errorf("%w: %v", errBadImage, err)
	}
	img, err := h.readImage(fh)
	if err != nil {
		return req, err
	}
	req.Image = img
	return req, nil
}
