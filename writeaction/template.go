package writeaction

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.-]+)\s*\}\}`)

type TemplateValidationError struct {
	Detail string
}

func (e TemplateValidationError) Error() string {
	return fmt.Sprintf("template is not valid JSON after substitution: %s", e.Detail)
}

// Render replaces every {{name}} placeholder with the matching variable.
// Unresolved placeholders are kept verbatim so a misconfigured template
// surfaces as a detectable malformed payload instead of a silent failure.
func Render(template string, variables map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(token string) string {
		name := placeholderRe.FindStringSubmatch(token)[1]
		if value, ok := variables[name]; ok {
			return value
		}
		return token
	})
}

// Validate substitutes a stub for every placeholder and attempts a JSON
// parse. Run at configuration time, never per execution.
func Validate(template string) error {
	stubbed := placeholderRe.ReplaceAllString(template, "stub")
	if !json.Valid([]byte(stubbed)) {
		var probe any
		err := json.Unmarshal([]byte(stubbed), &probe)
		return TemplateValidationError{Detail: err.Error()}
	}
	return nil
}

// ExtractVariables returns the distinct placeholder names in first seen
// order. Pure text scan; drives UI forms and pre-flight validation.
func ExtractVariables(template string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, match := range placeholderRe.FindAllStringSubmatch(template, -1) {
		name := strings.TrimSpace(match[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
