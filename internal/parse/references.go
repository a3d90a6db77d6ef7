package parse

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultHost is the canonical host whose record links are recognized.
const DefaultHost = "theflip.app"

var (
	urlPattern = regexp.MustCompile(`https?://\S+`)

	// Explicit in-text references: a ticket or parts word immediately
	// preceding #<digits>, e.g. "PR #123" or "parts #45".
	explicitRefPattern = regexp.MustCompile(`(?i)\b(pr|ticket|parts?)\s*#(\d+)`)
)

// Links resolves canonical record URLs for one allow-listed host.
//
// The path templates below are a versioned contract shared with outbound
// link formatting; changing them breaks reciprocal links.
type Links struct {
	host string
}

// NewLinks creates a Links resolver for the given host. An empty host falls
// back to DefaultHost.
func NewLinks(host string) *Links {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		host = DefaultHost
	}
	return &Links{host: host}
}

// ParseURL classifies a canonical record URL into a Reference. URLs on any
// other host, unknown paths, and malformed ids all yield (nil): an
// unrecognized link is not an error.
//
// Path templates in priority order; updates are checked before parts because
// the update path extends the parts path:
//
//	/parts/updates/{id}/  parts request update
//	/parts/{id}/          parts request
//	/logs/{id}/           log entry
//	/problem-reports/{id}/ ticket
//	/machines/{slug}/     asset
func (l *Links) ParseURL(raw string) *Reference {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	if strings.ToLower(u.Hostname()) != l.host {
		return nil
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")

	switch {
	case len(segs) == 3 && segs[0] == "parts" && segs[1] == "updates":
		if id, ok := parseID(segs[2]); ok {
			return &Reference{Kind: RefPartsRequestUpdate, ID: id}
		}
	case len(segs) == 2 && segs[0] == "parts":
		if id, ok := parseID(segs[1]); ok {
			return &Reference{Kind: RefPartsRequest, ID: id}
		}
	case len(segs) == 2 && segs[0] == "logs":
		if id, ok := parseID(segs[1]); ok {
			return &Reference{Kind: RefLogEntry, ID: id}
		}
	case len(segs) == 2 && segs[0] == "problem-reports":
		if id, ok := parseID(segs[1]); ok {
			return &Reference{Kind: RefTicket, ID: id}
		}
	case len(segs) == 2 && segs[0] == "machines":
		if segs[1] != "" {
			return &Reference{Kind: RefAsset, AssetSlug: segs[1]}
		}
	}
	return nil
}

// ParseText returns references for every recognized URL embedded in text,
// in document order.
func (l *Links) ParseText(text string) []Reference {
	var refs []Reference
	for _, raw := range urlPattern.FindAllString(text, -1) {
		if ref := l.ParseURL(raw); ref != nil {
			refs = append(refs, *ref)
		}
	}
	return refs
}

// ParseExplicitRefs returns references for explicit in-text mentions like
// "PR #123" or "parts #45", in document order. Unrecognized tokens yield
// nothing.
func ParseExplicitRefs(text string) []Reference {
	var refs []Reference
	for _, m := range explicitRefPattern.FindAllStringSubmatch(text, -1) {
		id, ok := parseID(m[2])
		if !ok {
			continue
		}
		switch strings.ToLower(m[1]) {
		case "pr", "ticket":
			refs = append(refs, Reference{Kind: RefTicket, ID: id})
		case "part", "parts":
			refs = append(refs, Reference{Kind: RefPartsRequest, ID: id})
		}
	}
	return refs
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
