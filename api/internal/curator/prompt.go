package curator

import (
	"fmt"
	"strings"

	"artifact-explorer/api/internal/artifact"
)

const systemInstruction = `You are an expert museum curator and historian.
Write engaging, accurate descriptions of historical artifacts for museum visitors.
Cover origin, period, purpose, craftsmanship and historical significance.
Answer in plain prose without headings, lists or code blocks.`

// SystemInstruction is sent as the system role where the provider supports it.
func SystemInstruction() string { return systemInstruction }

// BuildPrompt renders the user prompt for a validated request.
func BuildPrompt(req artifact.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Describe the historical artifact %q in approximately %d words.", req.Name, req.WordCount)
	if req.HasImage() {
		b.WriteString(" A photo of the artifact is attached; use visible details such as material, condition and inscriptions to enrich the description.")
	}
	b.WriteString(" If the artifact is not known, say so briefly and describe what it most likely is.")
	return b.String()
}
