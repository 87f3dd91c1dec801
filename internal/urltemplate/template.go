// internal/urltemplate/template.go

// Package urltemplate expands URLs with named {slot} placeholders.
package urltemplate

import (
	"net/url"
	"regexp"
	"strings"

	custom_errors "commit-evidence/internal/errors"
)

var slotPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Template is a URL with named {slot} placeholders, such as the
// repository_url advertised by a provider API root.
type Template struct {
	raw   string
	slots []string
}

// Parse records the slots declared by raw.
func Parse(raw string) Template {
	var slots []string
	seen := make(map[string]bool)
	for _, m := range slotPattern.FindAllStringSubmatch(raw, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			slots = append(slots, m[1])
		}
	}
	return Template{raw: raw, slots: slots}
}

// String returns the unexpanded template.
func (t Template) String() string { return t.raw }

// IsZero reports whether the template is empty.
func (t Template) IsZero() bool { return t.raw == "" }

// Has reports whether slot is declared by the template.
func (t Template) Has(slot string) bool {
	for _, s := range t.slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Expand substitutes every declared slot. A declared slot without a value is
// an error; values are path-escaped.
func (t Template) Expand(values map[string]string) (string, error) {
	pairs := make([]string, 0, len(t.slots)*2)
	for _, slot := range t.slots {
		v, ok := values[slot]
		if !ok || v == "" {
			return "", &custom_errors.TemplateSlotError{Template: t.raw, Slot: slot}
		}
		pairs = append(pairs, "{"+slot+"}", url.PathEscape(v))
	}
	return strings.NewReplacer(pairs...).Replace(t.raw), nil
}

// ExpandRequired is Expand, but additionally fails when any of the required
// slots is not declared by the template.
func (t Template) ExpandRequired(values map[string]string, required ...string) (string, error) {
	for _, slot := range required {
		if !t.Has(slot) {
			return "", &custom_errors.TemplateSlotError{Template: t.raw, Slot: slot}
		}
	}
	return t.Expand(values)
}

// RepositoryURL fills the {owner} and {repo} slots of a repository template.
func (t Template) RepositoryURL(owner, repo string) (string, error) {
	return t.ExpandRequired(map[string]string{"owner": owner, "repo": repo}, "owner", "repo")
}

// ChangelogURL fills the {repo} and {revision} slots of a changelog viewer template.
func (t Template) ChangelogURL(repo, revision string) (string, error) {
	return t.ExpandRequired(map[string]string{"repo": repo, "revision": revision}, "repo", "revision")
}
