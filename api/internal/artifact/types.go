package artifact

import (
	"encoding/base64"
	"strings"
)

const (
	DefaultWordCount = 100
	MaxWordCount     = 2000
)

// Request is one submission from the artifact form.
type Request struct {
	Name      string `json:"artifact_name"`
	WordCount int    `json:"word_count"`
	Image     *Image `json:"-"`
}

// Image is an optional photo attached to a Request.
type Image struct {
	Data     []byte
	MIMEType string
	Filename string
}

type Response struct {
	Description string `json:"description"`
}

// Validate normalizes the request in place. Only the name is mandatory;
// a zero word count falls back to DefaultWordCount.
func (r *Request) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrEmptyName
	}
	if r.WordCount == 0 {
		r.WordCount = DefaultWordCount
	}
	if r.WordCount < 0 || r.WordCount > MaxWordCount {
		return ErrInvalidWordCount
	}
	if r.Image != nil && len(r.Image.Data) == 0 {
		r.Image = nil
	}
	return nil
}

func (r Request) HasImage() bool { return r.Image != nil && len(r.Image.Data) > 0 }

// Base64 returns the standard base64 encoding of the image bytes.
func (i *Image) Base64() string {
	if i == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL renders the image as data:<mime>;base64,<payload>.
func (i *Image) DataURL() string {
	if i == nil || len(i.Data) == 0 {
		return ""
	}
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}
