package stats

import (
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
)

// UndeterminedLanguage marks texts whose language could not be detected reliably.
const UndeterminedLanguage = "und"

// LanguageShare is the share of requirement texts detected as one language.
type LanguageShare struct {
	// Lang is an ISO 639-1 code, or UndeterminedLanguage.
	Lang    string  `json:"lang" yaml:"lang"`
	Name    string  `json:"name" yaml:"name"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// LanguageShares detects the language of each requirement text. It is a
// sanity check for mixed-language corpora, not an input to any statistic.
func LanguageShares(records []dataset.Record) ([]LanguageShare, error) {
	if len(records) == 0 {
		return nil, emptyInput("language shares")
	}
	byCode := map[string]*LanguageShare{}
	for _, r := range records {
		code, name := UndeterminedLanguage, "Undetermined"
		if strings.TrimSpace(r.Text) != "" {
			info := whatlanggo.Detect(r.Text)
			if info.IsReliable() && info.Lang.Iso6391() != "" {
				code, name = info.Lang.Iso6391(), info.Lang.String()
			}
		}
		s, ok := byCode[code]
		if !ok {
			s = &LanguageShare{Lang: code, Name: name}
			byCode[code] = s
		}
		s.Count++
	}
	out := make([]LanguageShare, 0, len(byCode))
	for _, s := range byCode {
		s.Percent = float64(s.Count) / float64(len(records))
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Lang < out[j].Lang
	})
	return out, nil
}
