// internal/github/link.go
package github

import (
	"net/http"
	"strings"

	custom_errors "commit-evidence/internal/errors"
)

// NextPageURL returns the target of the rel="next" relation in the Link
// header, or "" when the header is absent or has no next relation.
// Entries that are not of the form <url>; rel="name" are rejected.
func NextPageURL(header http.Header) (string, error) {
	links, err := parseLinkHeader(strings.Join(header.Values("Link"), ","))
	if err != nil {
		return "", err
	}
	for _, l := range links {
		for _, rel := range l.rels {
			if rel == "next" {
				return l.url, nil
			}
		}
	}
	return "", nil
}

type link struct {
	url  string
	rels []string
}

func parseLinkHeader(value string) ([]link, error) {
	var links []link
	rest := value
	for {
		rest = strings.TrimLeft(rest, " \t,")
		if rest == "" {
			return links, nil
		}

		// The URL may contain commas, so the entry only ends at the first comma after '>'.
		end := strings.IndexByte(rest, '>')
		if end == -1 {
			return nil, &custom_errors.MalformedPaginationHeaderError{Entry: strings.TrimSpace(rest)}
		}
		next := strings.IndexByte(rest[end:], ',')
		var entry string
		if next == -1 {
			entry, rest = rest, ""
		} else {
			entry, rest = rest[:end+next], rest[end+next+1:]
		}

		l, err := parseLinkEntry(strings.TrimSpace(entry))
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
}

func parseLinkEntry(entry string) (link, error) {
	malformed := &custom_errors.MalformedPaginationHeaderError{Entry: entry}

	if !strings.HasPrefix(entry, "<") {
		return link{}, malformed
	}
	end := strings.IndexByte(entry, '>')
	target := strings.TrimSpace(entry[1:end])
	if target == "" {
		return link{}, malformed
	}

	var rels []string
	for _, param := range strings.Split(entry[end+1:], ";") {
		param = strings.TrimSpace(param)
		if param == "" {
			continue
		}
		key, val, ok := strings.Cut(param, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
			continue
		}
		val = strings.TrimSpace(val)
		if len(val) < 2 || val[0] != '"' || val[len(val)-1] != '"' {
			return link{}, malformed
		}
		rels = append(rels, strings.Fields(val[1:len(val)-1])...)
	}
	if len(rels) == 0 {
		return link{}, malformed
	}

	return link{url: target, rels: rels}, nil
}
