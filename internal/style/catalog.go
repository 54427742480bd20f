package style

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var aliases = map[string]ID{
	"ghibli":        Ghibli,
	"pixel_art":     PixelArt,
	"pixelart":      PixelArt,
	"realistic":     Realistic,
	"anime":         Anime,
	"comic_book":    ComicBook,
	"comic":         ComicBook,
	"cyberpunk":     Cyberpunk,
	"enhance":       Enhance,
	"fantasy":       Fantasy,
	"impressionist": Impressionist,
	"oil_painting":  OilPainting,
	"oil":           OilPainting,
	"pop_art":       PopArt,
	"popart":        PopArt,
	"steampunk":     Steampunk,
	"watercolor":    Watercolor,
}

// tolerantRules catch common misspellings. Order matters. The Ghibli rule
// over-matches any name containing one of its fragments together with "li".
var tolerantRules = []struct {
	match func(name string) bool
	id    ID
}{
	{func(n string) bool { return keywords{"gib", "ghib", "gihb"}.in(n) && strings.Contains(n, "li") }, Ghibli},
	{func(n string) bool { return strings.Contains(n, "water") && strings.Contains(n, "color") }, Watercolor},
	{func(n string) bool { return strings.Contains(n, "cyber") && keywords{"punk", "tech"}.in(n) }, Cyberpunk},
	{func(n string) bool { return strings.Contains(n, "steam") && strings.Contains(n, "punk") }, Steampunk},
}

// Lookup maps free-form user input to a style identifier. Unknown names are
// not an error; they report false and the caller proceeds without a style.
func Lookup(name string) (ID, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", false
	}
	if id, ok := aliases[n]; ok {
		return id, true
	}
	for _, r := range tolerantRules {
		if r.match(n) {
			return r.id, true
		}
	}
	return "", false
}

// Resolve returns the default-configured style for name.
func Resolve(name string) (Style, bool) {
	return ResolveWith(name, Options{})
}

// ResolveWith returns the style for name configured with opts.
func ResolveWith(name string, opts Options) (Style, bool) {
	id, ok := Lookup(name)
	if !ok {
		return Style{}, false
	}
	return New(id, opts)
}

// Entry describes one catalog member for listings.
type Entry struct {
	ID          ID       `json:"id"`
	DisplayName string   `json:"display_name"`
	Aliases     []string `json:"aliases,omitempty"`
	Steps       int      `json:"steps"`
	Guidance    float64  `json:"guidance_scale"`
	Strength    float64  `json:"img2img_strength"`
}

// Catalog lists every selectable style in a stable order.
func Catalog() []Entry {
	title := cases.Title(language.English)
	out := make([]Entry, 0, len(All))
	for _, id := range All {
		s, _ := New(id, Options{})
		e := Entry{
			ID:          id,
			DisplayName: title.String(strings.ReplaceAll(string(id), "_", " ")),
			Steps:       s.Steps(),
			Guidance:    s.GuidanceScale(),
			Strength:    s.Strength(),
		}
		for alias, target := range aliases {
			if target == id && alias != string(id) {
				e.Aliases = append(e.Aliases, alias)
			}
		}
		sort.Strings(e.Aliases)
		out = append(out, e)
	}
	return out
}
