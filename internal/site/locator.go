package site

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Locator describes one element on the results site declaratively so the same
// description can drive the live browser (via XPath) and the recorded fixture
// (via goquery).
//
// All non-empty criteria must hold. TextAll requires every substring, TextAny
// requires at least one of them.
type Locator struct {
	Tag          string   `yaml:"tag,omitempty"`
	ID           string   `yaml:"id,omitempty"`
	HrefContains string   `yaml:"href_contains,omitempty"`
	TextAll      []string `yaml:"text_all,omitempty"`
	TextAny      []string `yaml:"text_any,omitempty"`
}

// ByID is shorthand for an element id lookup.
func ByID(id string) Locator {
	return Locator{ID: id}
}

// IsZero reports whether the locator has no criteria at all.
func (l Locator) IsZero() bool {
	return l.Tag == "" && l.ID == "" && l.HrefContains == "" && len(l.TextAll) == 0 && len(l.TextAny) == 0
}

func (l Locator) tag() string {
	if l.Tag != "" {
		return l.Tag
	}
	if l.ID != "" {
		return "*"
	}
	return "a"
}

// XPath renders the locator as an XPath 1.0 expression.
func (l Locator) XPath() string {
	var preds []string
	if l.ID != "" {
		preds = append(preds, "@id="+xpathLiteral(l.ID))
	}
	if l.HrefContains != "" {
		preds = append(preds, "contains(@href, "+xpathLiteral(l.HrefContains)+")")
	}
	for _, t := range l.TextAll {
		preds = append(preds, "contains(., "+xpathLiteral(t)+")")
	}
	if len(l.TextAny) > 0 {
		var alts []string
		for _, t := range l.TextAny {
			alts = append(alts, "contains(., "+xpathLiteral(t)+")")
		}
		preds = append(preds, "("+strings.Join(alts, " or ")+")")
	}

	expr := "//" + l.tag()
	if len(preds) > 0 {
		expr += "[" + strings.Join(preds, " and ") + "]"
	}
	return expr
}

// Matches evaluates the locator against a single parsed element.
func (l Locator) Matches(sel *goquery.Selection) bool {
	if sel.Length() == 0 {
		return false
	}
	if tag := l.tag(); tag != "*" && !strings.EqualFold(goquery.NodeName(sel), tag) {
		return false
	}
	if l.ID != "" && sel.AttrOr("id", "") != l.ID {
		return false
	}
	if l.HrefContains != "" && !strings.Contains(sel.AttrOr("href", ""), l.HrefContains) {
		return false
	}
	text := sel.Text()
	for _, t := range l.TextAll {
		if !strings.Contains(text, t) {
			return false
		}
	}
	if len(l.TextAny) > 0 {
		found := false
		for _, t := range l.TextAny {
			if strings.Contains(text, t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Find returns the first element in doc matching the locator.
func (l Locator) Find(doc *goquery.Document) *goquery.Selection {
	query := l.tag()
	if l.ID != "" {
		query = fmt.Sprintf(`[id="%s"]`, l.ID)
	}
	return doc.Find(query).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return l.Matches(s)
	}).First()
}

func (l Locator) String() string {
	return l.XPath()
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
