package style

import "strings"

// Flags records which broad content categories a prompt mentions.
type Flags struct {
	Person    bool
	Landscape bool
	Urban     bool
	Tech      bool
	Object    bool
	Action    bool
}

var (
	personTerms    = keywords{"person", "character", "man", "woman", "people", "face", "portrait", "figure", "boy", "girl", "child"}
	landscapeTerms = keywords{"landscape", "nature", "mountain", "forest", "sky", "clouds", "sea", "ocean", "lake", "river", "field", "garden"}
	urbanTerms     = keywords{"city", "urban", "street", "building", "architecture", "skyline", "town"}
	techTerms      = keywords{"tech", "technology", "computer", "machine", "robot", "device", "mechanical", "electronic", "vehicle"}
	objectTerms    = keywords{"still life", "object", "fruit", "flower", "book", "food", "item", "product"}
	actionTerms    = keywords{"action", "battle", "fight", "movement", "dynamic", "story", "narrative", "scene"}
)

// Classify reports the content categories present in text. Matching is a
// case-insensitive substring test, so "manhattan" counts as a person hit.
func Classify(text string) Flags {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return Flags{}
	}
	return Flags{
		Person:    personTerms.in(lower),
		Landscape: landscapeTerms.in(lower),
		Urban:     urbanTerms.in(lower),
		Tech:      techTerms.in(lower),
		Object:    objectTerms.in(lower),
		Action:    actionTerms.in(lower),
	}
}

type keywords []string

// in expects lower-cased input.
func (k keywords) in(lower string) bool {
	for _, term := range k {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
