package handle

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"artifact-explorer/api/internal/artifact"
	"artifact-explorer/api/internal/util"
)

type describeReq struct {
	LLMName   string `json:"llm_name"`
	Name      string `json:"artifact_name"`
	WordCount int    `json:"word_count"`
	// base64 or data: URL
	Image string `json:"image,omitempty"`
}

// Describe is the stateless dispatcher endpoint: one request in, one
// description out. Accepts JSON or the same multipart form as the page.
func (h *Handle) Describe(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.bodyLimit())

	var (
		req     artifact.Request
		llmName string
		err     error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		llmName = c.PostForm("llm_name")
		req, err = h.formRequest(c)
	} else {
		req, llmName, err = h.jsonRequest(c)
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	engine, err := h.engs.GetEngine(llmName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if ts := c.GetHeader("X-Request-Timeout"); ts != "" {
		if d, err := time.ParseDuration(ts + "s"); err == nil && d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
	}

	text, err := engine.Describe(ctx, req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, artifact.Response{Description: text})
}

func (h *Handle) jsonRequest(c *gin.Context) (artifact.Request, string, error) {
	var in describeReq
	if err := c.ShouldBindJSON(&in); err != nil {
		if isTooLarge(err) {
			return artifact.Request{}, "", err
		}
		return artifact.Request{}, "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	req := artifact.Request{Name: in.Name, WordCount: in.WordCount}
	if strings.TrimSpace(in.Image) != "" {
		inline, err := util.DecodeInlineImage(in.Image)
		if err != nil {
			return req, in.LLMName, fmt.Errorf("%w: %w", errBadRequest, err)
		}
		img, err := h.image(inline.Data, inline.MIMEType, "")
		if err != nil {
			return req, in.LLMName, err
		}
		req.Image = img
	}
	return req, in.LLMName, nil
}
