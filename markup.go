package glosslive

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// TokenOccurrence locates one placeholder in a text by byte offsets.
type TokenOccurrence struct {
	ID    int
	Start int // Offset of the first byte of the placeholder
	End   int // Offset just past the placeholder
}

// MarkupToken is the placeholder syntax a translator promises to preserve.
type MarkupToken interface {
	// Serialize renders the placeholder for id.
	Serialize(id int) string
	// Parse finds placeholders in text, in ascending offset order.
	Parse(text string) []TokenOccurrence
}

// XMLTagToken renders placeholders as self-closing XML tags (<x id="0"/>),
// which DeepL leaves untouched when tag handling is set to "xml".
type XMLTagToken struct {
	Name string // Tag name (default: "x")
}

// NewXMLTagToken creates the default placeholder token.
func NewXMLTagToken() *XMLTagToken {
	return &XMLTagToken{Name: "x"}
}

func (t *XMLTagToken) tagName() string {
	if t.Name == "" {
		return "x"
	}
	return strings.ToLower(t.Name)
}

// Serialize returns <x id="N"/>.
func (t *XMLTagToken) Serialize(id int) string {
	return fmt.Sprintf(`<%s id="%d"/>`, t.tagName(), id)
}

// Parse reports every self-closing placeholder tag in text. Candidate spans
// start at "<" followed by the tag name and end at the next ">"; each span is
// tokenized on its own so stray markup around a placeholder cannot change how
// it is read. Quoting style, extra whitespace and tag case are tolerated since
// translators may re-serialize the markup.
func (t *XMLTagToken) Parse(text string) []TokenOccurrence {
	name := t.tagName()

	var occurrences []TokenOccurrence
	for pos := 0; pos < len(text); {
		i := strings.IndexByte(text[pos:], '<')
		if i < 0 {
			break
		}
		start := pos + i
		pos = start + 1

		if !hasTagPrefix(text[start+1:], name) {
			continue
		}
		end := strings.IndexByte(text[pos:], '>')
		if end < 0 {
			break
		}
		end += pos + 1
		if strings.IndexByte(text[pos:end], '<') >= 0 {
			continue
		}

		if id, ok := parsePlaceholder(text[start:end], name); ok {
			occurrences = append(occurrences, TokenOccurrence{ID: id, Start: start, End: end})
			pos = end
		}
	}
	return occurrences
}

// hasTagPrefix reports whether s starts with name followed by whitespace.
func hasTagPrefix(s, name string) bool {
	if len(s) <= len(name) || !strings.EqualFold(s[:len(name)], name) {
		return false
	}
	switch s[len(name)] {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// parsePlaceholder reads one "<x ... />" span.
func parsePlaceholder(span, name string) (int, bool) {
	inner := strings.TrimRight(strings.TrimSuffix(span, ">"), " \t\n\r\f")
	if !strings.HasSuffix(inner, "/") {
		return 0, false
	}

	z := html.NewTokenizer(strings.NewReader(span))
	switch z.Next() {
	case html.SelfClosingTagToken, html.StartTagToken:
	default:
		return 0, false
	}
	if len(z.Raw()) != len(span) {
		return 0, false
	}

	tag, hasAttr := z.TagName()
	if string(tag) != name || !hasAttr {
		return 0, false
	}
	return placeholderID(z)
}

func placeholderID(z *html.Tokenizer) (int, bool) {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "id" {
			// Unquoted values swallow the closing slash: <x id=0/>.
			v := strings.TrimSuffix(strings.TrimSpace(string(val)), "/")
			id, err := strconv.Atoi(v)
			if err != nil || id < 0 {
				return 0, false
			}
			return id, true
		}
		if !more {
			return 0, false
		}
	}
}

// Verify XMLTagToken implements MarkupToken
var _ MarkupToken = (*XMLTagToken)(nil)
