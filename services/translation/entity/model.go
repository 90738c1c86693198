package entity

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

var ErrInvalidModelID = errors.New("invalid model id")

// ModelID names a translation model by its source and target language,
// written "source-target" (e.g. "en-id", "en-zh-TW", "zh-TW-en").
// The tags are parsed for validation only; String returns the id exactly as
// given so the translator receives the configured model.
type ModelID struct {
	Source language.Tag
	Target language.Tag

	id string
}

func NewModelID(source, target string) (ModelID, error) {
	src, err := language.Parse(source)
	if err != nil {
		return ModelID{}, fmt.Errorf("%w: source %q: %v", ErrInvalidModelID, source, err)
	}
	dst, err := language.Parse(target)
	if err != nil {
		return ModelID{}, fmt.Errorf("%w: target %q: %v", ErrInvalidModelID, target, err)
	}
	return ModelID{Source: src, Target: dst, id: source + "-" + target}, nil
}

// ParseModelID splits id at the first hyphen that is followed by a lowercase
// primary language subtag and where both halves are valid BCP 47 tags.
func ParseModelID(id string) (ModelID, error) {
	for i := 0; i < len(id); i++ {
		if id[i] != '-' || !startsWithPrimaryLanguage(id[i+1:]) {
			continue
		}
		m, err := NewModelID(id[:i], id[i+1:])
		if err == nil {
			return m, nil
		}
	}
	return ModelID{}, fmt.Errorf("%w: %q", ErrInvalidModelID, id)
}

func startsWithPrimaryLanguage(s string) bool {
	sub, _, _ := strings.Cut(s, "-")
	if len(sub) < 2 || len(sub) > 3 {
		return false
	}
	for _, r := range sub {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func (m ModelID) String() string {
	if m.id != "" {
		return m.id
	}
	return m.Source.String() + "-" + m.Target.String()
}
