package testing

import (
	"fmt"
	"strings"
)

// StateMatcher collects view assertions and reports them together.
type StateMatcher struct {
	failures []string
}

// NewStateMatcher creates a new state matcher.
func NewStateMatcher() *StateMatcher {
	return &StateMatcher{
		failures: make([]string, 0),
	}
}

// ViewContains asserts that the view contains the expected string.
func (m *StateMatcher) ViewContains(view, expected string) *StateMatcher {
	if !strings.Contains(StripANSI(view), expected) {
		m.failures = append(m.failures, fmt.Sprintf("view does not contain '%s'", expected))
	}
	return m
}

// ViewNotContains asserts that the view does not contain the unexpected string.
func (m *StateMatcher) ViewNotContains(view, unexpected string) *StateMatcher {
	if strings.Contains(StripANSI(view), unexpected) {
		m.failures = append(m.failures, fmt.Sprintf("view contains unexpected '%s'", unexpected))
	}
	return m
}

// InOrder asserts that the strings appear in the view in the given order.
func (m *StateMatcher) InOrder(view string, expected ...string) *StateMatcher {
	if !ContainsInOrder(StripANSI(view), expected...) {
		m.failures = append(m.failures, fmt.Sprintf("view does not contain %q in order", expected))
	}
	return m
}

// SameLine asserts that a and b are rendered on one line.
func (m *StateMatcher) SameLine(view, a, b string) *StateMatcher {
	plain := StripANSI(view)
	for _, idx := range LinesContaining(plain, a) {
		if strings.Contains(strings.Split(plain, "\n")[idx], b) {
			return m
		}
	}
	m.failures = append(m.failures, fmt.Sprintf("'%s' and '%s' are not on the same line", a, b))
	return m
}

// Check returns an error if any assertions failed.
func (m *StateMatcher) Check() error {
	if len(m.failures) > 0 {
		return fmt.Errorf("state assertions failed:\n%s", strings.Join(m.failures, "\n"))
	}
	return nil
}
