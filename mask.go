package glosslive

import "strings"

// Masker hides glossary terms behind placeholders before translation.
type Masker struct {
	glossary *Glossary
	token    MarkupToken
}

// NewMasker creates a masker. A nil glossary masks nothing; a nil token
// uses XMLTagToken.
func NewMasker(glossary *Glossary, token MarkupToken) *Masker {
	if glossary == nil {
		glossary = EmptyGlossary()
	}
	if token == nil {
		token = NewXMLTagToken()
	}
	return &Masker{glossary: glossary, token: token}
}

// Mask replaces every glossary term found in text with a placeholder.
//
// Terms are tried longest first, so "AB" is masked before "A" can split it.
// All occurrences of one term share a single placeholder id, and ids are
// allocated 0..N-1 in the order terms are found. With DirectionNone the text
// is returned unchanged.
func (m *Masker) Mask(text string, dir Direction) MaskResult {
	result := MaskResult{Text: text}
	if dir == DirectionNone || text == "" {
		return result
	}

	for _, source := range m.glossary.Terms(dir) {
		if !strings.Contains(result.Text, source) {
			continue
		}

		term, _ := m.glossary.Lookup(dir, source)
		id := len(result.Replacements)
		result.Text = strings.ReplaceAll(result.Text, source, m.token.Serialize(id))
		result.Replacements = append(result.Replacements, Replacement{
			ID:     id,
			Source: source,
			Term:   term,
		})
	}

	return result
}

// Token returns the placeholder syntax used by this masker.
func (m *Masker) Token() MarkupToken {
	return m.token
}
