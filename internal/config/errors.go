package config

import (
	"fmt"
	"strings"
)

// Issue is one problem found in a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates every issue found in a config.
type ValidationError struct {
	Issues []Issue
}

// Error lists one issue per line.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "invalid config"
	}
	var b strings.Builder
	b.WriteString("invalid config:")
	for _, issue := range err.Issues {
		fmt.Fprintf(&b, "\n  %s: %s", issue.Field, issue.Message)
	}
	return b.String()
}

type issueAdder func(field, message string)

type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}
