package glosslive

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"unicode/utf8"
)

// glossaryFile is the on-disk layout produced by the bulk term loader.
type glossaryFile struct {
	KOToJA map[string]string `json:"ko_to_ja"`
	JAToKO map[string]string `json:"ja_to_ko"`
}

// Glossary is a bidirectional Korean/Japanese term mapping.
// It is read-only after construction and safe for concurrent use.
type Glossary struct {
	forward map[string]string // KO → JA
	reverse map[string]string // JA → KO

	forwardTerms []string
	reverseTerms []string
}

// NewGlossary builds a glossary from term pairs.
// Pairs with an empty side are skipped; duplicate keys keep the last value.
func NewGlossary(entries []GlossaryEntry) *Glossary {
	forward := make(map[string]string, len(entries))
	reverse := make(map[string]string, len(entries))

	for _, e := range entries {
		ko := strings.TrimSpace(e.KO)
		ja := strings.TrimSpace(e.JA)
		if ko == "" || ja == "" {
			continue
		}
		forward[ko] = ja
		reverse[ja] = ko
	}

	return newGlossary(forward, reverse)
}

// EmptyGlossary returns a glossary with no terms; masking becomes a no-op.
func EmptyGlossary() *Glossary {
	return newGlossary(nil, nil)
}

func newGlossary(forward, reverse map[string]string) *Glossary {
	if forward == nil {
		forward = map[string]string{}
	}
	if reverse == nil {
		reverse = map[string]string{}
	}
	return &Glossary{
		forward:      forward,
		reverse:      reverse,
		forwardTerms: sortTerms(forward),
		reverseTerms: sortTerms(reverse),
	}
}

// LoadGlossary reads a glossary file. A missing file yields an empty glossary.
func LoadGlossary(path string) (*Glossary, error) {
	f, err := os.Open(path) // #nosec G304 - glossary path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		return EmptyGlossary(), nil
	}
	if err != nil {
		return nil, &GlossaryError{Path: path, Cause: err}
	}
	defer f.Close()

	g, err := ParseGlossary(f)
	if err != nil {
		return nil, &GlossaryError{Path: path, Cause: err}
	}
	return g, nil
}

// ParseGlossary decodes the {"ko_to_ja": {...}, "ja_to_ko": {...}} JSON layout.
func ParseGlossary(r io.Reader) (*Glossary, error) {
	var data glossaryFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, err
	}
	return newGlossary(cleanMapping(data.KOToJA), cleanMapping(data.JAToKO)), nil
}

func cleanMapping(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// sortTerms orders keys longest first so a term is always tried before its
// substrings. Equal lengths fall back to lexicographic order.
func sortTerms(m map[string]string) []string {
	terms := make([]string, 0, len(m))
	for k := range m {
		terms = append(terms, k)
	}
	sort.Slice(terms, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(terms[i]), utf8.RuneCountInString(terms[j])
		if li != lj {
			return li > lj
		}
		return terms[i] < terms[j]
	})
	return terms
}

// Terms returns the source terms for a direction, longest first.
// The returned slice must not be modified.
func (g *Glossary) Terms(dir Direction) []string {
	switch dir {
	case DirectionKOJA:
		return g.forwardTerms
	case DirectionJAKO:
		return g.reverseTerms
	}
	return nil
}

// Lookup returns the target-language equivalent of term for a direction.
func (g *Glossary) Lookup(dir Direction, term string) (string, bool) {
	var v string
	var ok bool
	switch dir {
	case DirectionKOJA:
		v, ok = g.forward[term]
	case DirectionJAKO:
		v, ok = g.reverse[term]
	}
	return v, ok
}

// Len returns the number of terms available for a direction.
func (g *Glossary) Len(dir Direction) int {
	return len(g.Terms(dir))
}

// WriteTo encodes the glossary in the file layout read by ParseGlossary.
func (g *Glossary) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(glossaryFile{KOToJA: g.forward, JAToKO: g.reverse}, "", "  ")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append(data, '\n'))
	return int64(n), err
}
