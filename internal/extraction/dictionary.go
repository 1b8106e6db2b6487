package extraction

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"clinical-intel/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed dictionary.yaml
var defaultDictionary []byte

// Dictionary maps normalised phrases to their category.
type Dictionary struct {
	phrases  map[string]models.TermCategory
	maxWords int
}

// ParseDictionary reads a YAML document of category -> phrases. When a phrase
// is listed under several categories the first category in file order wins.
func ParseDictionary(data []byte) (*Dictionary, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("parse dictionary: empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse dictionary: expected a mapping of category to phrases")
	}

	d := &Dictionary{phrases: make(map[string]models.TermCategory)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		category := models.TermCategory(strings.ToLower(root.Content[i].Value))
		var phrases []string
		if err := root.Content[i+1].Decode(&phrases); err != nil {
			return nil, fmt.Errorf("parse dictionary category %q: %w", category, err)
		}
		for _, p := range phrases {
			words := wordsOf(p)
			if len(words) == 0 {
				continue
			}
			key := strings.Join(words, " ")
			if _, exists := d.phrases[key]; exists {
				continue
			}
			d.phrases[key] = category
			if len(words) > d.maxWords {
				d.maxWords = len(words)
			}
		}
	}
	if len(d.phrases) == 0 {
		return nil, fmt.Errorf("parse dictionary: no phrases")
	}
	return d, nil
}

// LoadDictionary reads path, or the built-in dictionary when path is empty.
func LoadDictionary(path string) (*Dictionary, error) {
	if path == "" {
		return ParseDictionary(defaultDictionary)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	return ParseDictionary(data)
}

func (d *Dictionary) Len() int { return len(d.phrases) }

// DictionaryExtractor does longest-match lookup of dictionary phrases.
type DictionaryExtractor struct {
	dict *Dictionary
}

func NewDictionaryExtractor(dict *Dictionary) *DictionaryExtractor {
	return &DictionaryExtractor{dict: dict}
}

func (e *DictionaryExtractor) Name() string { return "dictionary" }

func (e *DictionaryExtractor) Extract(ctx context.Context, text string) ([]models.ExtractedTerm, error) {
	tokens := tokenize(text)
	var out []models.ExtractedTerm

	for i := 0; i < len(tokens); {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		matched := 0
		var category models.TermCategory
		for n := min(e.dict.maxWords, len(tokens)-i); n > 0; n-- {
			if c, ok := e.dict.phrases[joinNorm(tokens[i:i+n])]; ok {
				matched, category = n, c
				break
			}
		}
		if matched == 0 {
			i++
			continue
		}

		start, end := tokens[i].start, tokens[i+matched-1].end
		out = append(out, models.ExtractedTerm{
			Term:     text[start:end],
			Category: category,
			Start:    start,
			End:      end,
			Score:    1,
		})
		i += matched
	}
	return out, nil
}

func joinNorm(tokens []token) string {
	if len(tokens) == 1 {
		return tokens[0].norm
	}
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.norm)
	}
	return b.String()
}
