package dataset

import (
	"fmt"
	"strings"
)

// Label describes one category of the quality-attribute corpus.
type Label struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
	// Reference is the number of requirements carrying this label in the
	// published 625-row PROMISE NFR dataset.
	Reference int `json:"reference" yaml:"reference"`
	// Size is the mean requirement size, in words, reported for this label
	// alongside the published distribution.
	Size int `json:"size" yaml:"size"`
}

// Display renders the label as "Functional (F)".
func (l Label) Display() string {
	return fmt.Sprintf("%s (%s)", l.Name, l.Code)
}

// Labels is the closed label set, functional first and then the
// non-functional categories in alphabetical order of their names.
var Labels = []Label{
	{Code: "F", Name: "Functional", Reference: 255, Size: 20},
	{Code: "A", Name: "Availability", Reference: 21, Size: 19},
	{Code: "FT", Name: "Fault Tolerance", Reference: 10, Size: 19},
	{Code: "L", Name: "Legal", Reference: 13, Size: 18},
	{Code: "LF", Name: "Look & Feel", Reference: 38, Size: 20},
	{Code: "MN", Name: "Maintainability", Reference: 17, Size: 28},
	{Code: "O", Name: "Operational", Reference: 62, Size: 20},
	{Code: "PE", Name: "Performance", Reference: 54, Size: 22},
	{Code: "PO", Name: "Portability", Reference: 1, Size: 14},
	{Code: "SC", Name: "Scalability", Reference: 21, Size: 18},
	{Code: "SE", Name: "Security", Reference: 66, Size: 20},
	{Code: "US", Name: "Usability", Reference: 67, Size: 22},
}

// ReferenceTotal is the row count of the published dataset.
const ReferenceTotal = 625

var labelIndex = func() map[string]Label {
	m := make(map[string]Label, len(Labels)*2)
	for _, l := range Labels {
		m[strings.ToUpper(l.Code)] = l
		m[normalizeName(l.Name)] = l
	}
	return m
}()

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r := strings.NewReplacer(" ", "", "-", "", "_", "", "&", "and")
	return r.Replace(s)
}

// LookupLabel resolves a code ("SE") or a full name ("security",
// "look-and-feel") to its Label.
func LookupLabel(s string) (Label, bool) {
	s = strings.TrimSpace(s)
	if l, ok := labelIndex[strings.ToUpper(s)]; ok {
		return l, true
	}
	l, ok := labelIndex[normalizeName(s)]
	return l, ok
}

// CanonicalClass maps known label spellings onto their code and leaves
// unknown labels untouched.
func CanonicalClass(s string) (string, bool) {
	if l, ok := LookupLabel(s); ok {
		return l.Code, true
	}
	return strings.TrimSpace(s), false
}

// DisplayClass returns the human-readable form of a class code, or the
// code itself when it is not part of the label set.
func DisplayClass(code string) string {
	if l, ok := LookupLabel(code); ok {
		return l.Display()
	}
	return code
}
