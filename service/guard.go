package service

import (
	"fmt"
	"regexp"
)

// URLRedactionMarker replaces any URL-like substring in an accepted answer.
// No URL may reach the caller, invented or not; the prompt asks the model
// not to produce them, but the prompt is advisory and the guard is not.
const URLRedactionMarker = "[lien supprimé]"

var (
	anchorIDRe = regexp.MustCompile(`^[A-Z]{1,4}-\d{1,4}$`)
	// No boundary assertion before the scheme: a URL glued to preceding
	// text must still be caught.
	urlRe = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`)
)

// GuardAnswer normalizes an accepted answer payload in place: anchor ids
// are forced onto the required pattern and URL-like substrings are redacted
// from every string leaf. Idempotent.
func GuardAnswer(answer map[string]interface{}) {
	NormalizeAnchorIDs(answer)
	RedactURLs(answer)
}

// NormalizeAnchorIDs rewrites any anchor id that does not match the
// required pattern to a generated A-<n> id (1-based, in array order). The
// model's non-conforming ids are a repair case, not a rejection case; only
// the id field is ever touched.
func NormalizeAnchorIDs(answer map[string]interface{}) {
	anchors, ok := answer["anchors"].([]interface{})
	if !ok {
		return
	}
	for i, raw := range anchors {
		anchor, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		id, _ := anchor["id"].(string)
		if !anchorIDRe.MatchString(id) {
			anchor["id"] = fmt.Sprintf("A-%d", i+1)
		}
	}
}

// RedactURLs walks the whole object graph and replaces URL-like substrings
// in every string leaf with the redaction marker.
func RedactURLs(answer map[string]interface{}) {
	visitStrings(answer, func(s string) string {
		return urlRe.ReplaceAllString(s, URLRedactionMarker)
	})
}

// visitStrings applies fn to every string leaf of a JSON-like value,
// mutating maps and slices in place.
func visitStrings(node interface{}, fn func(string) string) {
	switch n := node.(type) {
	case map[string]interface{}:
		for k, v := range n {
			if s, ok := v.(string); ok {
				n[k] = fn(s)
				continue
			}
			visitStrings(v, fn)
		}
	case []interface{}:
		for i, v := range n {
			if s, ok := v.(string); ok {
				n[i] = fn(s)
				continue
			}
			visitStrings(v, fn)
		}
	}
}
