package session

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ariaLabelPattern pulls the quoted label text out of a CSS attribute
// selector like `button[aria-label*="Dictate" i]`.
var ariaLabelPattern = regexp.MustCompile(`aria-label[*~|^$]?=\s*"([^"]+)"`)

// extractLabelKeywords derives the label-substring keywords for the
// first-pass locator strategy from a CSS selector list. Keywords are
// lowercased; order follows the selector list so higher-priority
// selectors match first.
func extractLabelKeywords(selectors []string) []string {
	var keywords []string
	seen := make(map[string]bool)
	for _, sel := range selectors {
		m := ariaLabelPattern.FindStringSubmatch(sel)
		if m == nil {
			continue
		}
		kw := strings.ToLower(m[1])
		if !seen[kw] {
			seen[kw] = true
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// labelClickScript returns JS that walks all buttons and clicks the
// first one whose aria-label contains any keyword, in keyword priority
// order. Label-substring matching runs in one page-side pass because
// Chromium suspends rendering for off-screen windows, which makes
// element-visibility waits on the driver side unreliable.
func labelClickScript(keywords []string) string {
	kw, _ := json.Marshal(keywords)
	return `() => {
		const keywords = ` + string(kw) + `;
		for (const kw of keywords) {
			const btns = document.querySelectorAll('button');
			for (const btn of btns) {
				const label = (btn.getAttribute('aria-label') || '').toLowerCase();
				if (label.includes(kw)) { btn.click(); return true; }
			}
		}
		return false;
	}`
}

// selectorListJS renders a selector list as a JS array literal for
// scripts that probe the page for the input area or login markers.
func selectorListJS(selectors []string) string {
	out, _ := json.Marshal(selectors)
	return string(out)
}
