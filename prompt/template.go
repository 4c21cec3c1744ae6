// Package prompt defines the prompt templates sent to the inference server.
//
// A template is a plain string carrying a {text} placeholder. Rendering
// replaces every occurrence of the placeholder with the file content.
// Builtin templates cover the common operations; a custom template can be
// supplied on the command line.
package prompt

import (
	"errors"
	"strings"
)

// Placeholder is the substring a template must carry to receive file content.
const Placeholder = "{text}"

// Template is a prompt template with a {text} placeholder.
type Template string

// Builtin templates for the common operations.
const (
	// Summarize condenses the input into a short summary.
	Summarize Template = "Please summarize the following text in 2-3 sentences:\n\n{text}"
	// Analyze identifies topics, tone, and key points.
	Analyze Template = "Please analyze the following text and identify the main topics, tone, and key points:\n\n{text}"
	// Extract pulls out key facts and details.
	Extract Template = "Extract the key information, facts, and important details from the following text:\n\n{text}"
	// Generic is the fallback when no operation is requested.
	Generic Template = "Process the following text and provide insights:\n\n{text}"
)

// ErrNoPlaceholder reports a template without a {text} placeholder.
// Rendering such a template sends the prompt verbatim and drops the
// file content, which is almost never what the caller wants.
var ErrNoPlaceholder = errors.New("prompt template has no {text} placeholder")

// Render replaces every {text} placeholder with content.
// A template without the placeholder renders unchanged.
func (t Template) Render(content string) string {
	return strings.ReplaceAll(string(t), Placeholder, content)
}

// Validate reports whether the template carries the {text} placeholder.
func (t Template) Validate() error {
	if !strings.Contains(string(t), Placeholder) {
		return ErrNoPlaceholder
	}
	return nil
}

// Select picks the template for a run. Operation flags win over a custom
// template, and the first operation in summarize, analyze, extract order
// takes precedence when several are set.
func Select(summarize, analyze, extract bool, custom string) Template {
	switch {
	case summarize:
		return Summarize
	case analyze:
		return Analyze
	case extract:
		return Extract
	case custom != "":
		return Template(custom)
	default:
		return Generic
	}
}
