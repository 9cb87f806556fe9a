package glosslive

import "strings"

// Restorer swaps placeholders in translated text for their glossary terms.
type Restorer struct {
	token MarkupToken
}

// NewRestorer creates a restorer; a nil token uses XMLTagToken.
func NewRestorer(token MarkupToken) *Restorer {
	if token == nil {
		token = NewXMLTagToken()
	}
	return &Restorer{token: token}
}

// Restore replaces each placeholder whose id has a replacement record with
// the recorded term. Placeholders the translator dropped or mangled beyond
// recognition, and ids without a record, are left in the text as they are.
func (r *Restorer) Restore(text string, replacements []Replacement) string {
	if len(replacements) == 0 {
		return text
	}

	terms := make(map[int]string, len(replacements))
	for _, rep := range replacements {
		terms[rep.ID] = rep.Term
	}

	occurrences := r.token.Parse(text)
	if len(occurrences) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, occ := range occurrences {
		term, ok := terms[occ.ID]
		if !ok {
			continue
		}
		b.WriteString(text[last:occ.Start])
		b.WriteString(term)
		last = occ.End
	}
	b.WriteString(text[last:])

	return b.String()
}

// Residual returns the placeholders still present in text.
func (r *Restorer) Residual(text string) []TokenOccurrence {
	return r.token.Parse(text)
}
