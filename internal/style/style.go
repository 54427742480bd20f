// Package style holds the catalog of artistic styles and turns a content
// description plus a style into concrete diffusion parameters.
package style

import "strings"

// ID names one member of the closed style set.
type ID string

const (
	Base          ID = "base"
	Anime         ID = "anime"
	ComicBook     ID = "comic_book"
	Cyberpunk     ID = "cyberpunk"
	Enhance       ID = "enhance"
	Fantasy       ID = "fantasy"
	Ghibli        ID = "ghibli"
	Impressionist ID = "impressionist"
	OilPainting   ID = "oil_painting"
	PixelArt      ID = "pixel_art"
	PopArt        ID = "pop_art"
	Realistic     ID = "realistic"
	Steampunk     ID = "steampunk"
	Watercolor    ID = "watercolor"
)

// All lists every selectable style in catalog order. Base is excluded
// because it only supplies defaults.
var All = []ID{
	Anime, ComicBook, Cyberpunk, Enhance, Fantasy, Ghibli, Impressionist,
	OilPainting, PixelArt, PopArt, Realistic, Steampunk, Watercolor,
}

// Options configures the variants that accept sub-styles. Fields that do not
// apply to the chosen variant are ignored.
type Options struct {
	// Ghibli
	Film  string
	Scene string

	// PixelArt
	Era        string
	Game       string
	PixelSize  int
	ColorCount int
}

// PixelOptions carries the pixelation knobs of a configured PixelArt style.
type PixelOptions struct {
	PixelSize  int
	ColorCount int
}

// Params is the fully resolved output of a style for one request.
type Params struct {
	Prompt         string
	NegativePrompt string
	Steps          int
	GuidanceScale  float64
	// Strength is zero for text-to-image requests.
	Strength      float64
	DirectEnhance bool
	// Pixel is set only when PixelArt options were given explicitly.
	Pixel *PixelOptions
}

// Style is an immutable, fully configured style. Build one with New or
// through the catalog; there is no way to reconfigure it afterwards.
type Style struct {
	id     ID
	def    definition
	suffix string
	pixel  *PixelOptions
}

// New builds the style identified by id with opts applied. It reports false
// when id is not a member of the style set.
func New(id ID, opts Options) (Style, bool) {
	def, ok := definitionOf(id)
	if !ok {
		return Style{}, false
	}
	s := Style{id: id, def: def}
	switch id {
	case Ghibli:
		s = s.withGhibli(opts)
	case PixelArt:
		s = s.withPixelArt(opts)
	}
	return s, true
}

// ID returns the canonical style identifier.
func (s Style) ID() ID { return s.id }

// PositivePrompt is the style prompt appended after the user's content.
func (s Style) PositivePrompt() string { return s.def.positive }

// NegativePrompt is the style's own negative prompt.
func (s Style) NegativePrompt() string { return s.def.negative }

// Steps is the style's inference step count before the device floor applies.
func (s Style) Steps() int { return s.def.steps }

// GuidanceScale is the classifier-free guidance weight.
func (s Style) GuidanceScale() float64 { return s.def.guidance }

// Strength is the img2img denoising strength in [0, 1].
func (s Style) Strength() float64 { return s.def.strength }

// Pixel returns the explicit pixel-art configuration, if any.
func (s Style) Pixel() (PixelOptions, bool) {
	if s.pixel == nil {
		return PixelOptions{}, false
	}
	return *s.pixel, true
}

// BuildPrompt joins content with the style's positive prompt and every
// fragment whose trigger fires, in declaration order.
func (s Style) BuildPrompt(content string, flags Flags) string {
	prompt, _, _ := s.compose(content, flags, false)
	return prompt
}

// ResolveParameters produces the parameter record for content. img2img
// selects whether the strength knob is meaningful.
func (s Style) ResolveParameters(img2img bool, content string) Params {
	prompt, steps, strength := s.compose(content, Classify(content), img2img)
	params := Params{
		Prompt:         prompt,
		NegativePrompt: s.def.negative,
		Steps:          steps,
		GuidanceScale:  s.def.guidance,
		DirectEnhance:  s.def.directEnhance,
	}
	if img2img {
		params.Strength = strength
	}
	if s.pixel != nil {
		px := *s.pixel
		params.Pixel = &px
	}
	return params
}

func (s Style) compose(content string, flags Flags, img2img bool) (string, int, float64) {
	var b strings.Builder
	b.WriteString(content)
	if s.def.positive != "" {
		b.WriteString(", ")
		b.WriteString(s.def.positive)
	}

	steps, strength := s.def.steps, s.def.strength
	lower := strings.ToLower(content)
	for _, r := range s.def.rules {
		if !r.when(lower, flags) {
			continue
		}
		b.WriteString(", ")
		b.WriteString(r.text)
		if r.steps > 0 {
			steps = r.steps
		}
		if img2img && r.strength > 0 {
			strength = r.strength
		}
	}
	if s.suffix != "" {
		b.WriteString(", ")
		b.WriteString(s.suffix)
	}
	return b.String(), steps, strength
}

type trigger func(lower string, f Flags) bool

func onTerms(terms ...string) trigger {
	k := keywords(terms)
	return func(lower string, _ Flags) bool { return k.in(lower) }
}

func onFlag(pick func(Flags) bool) trigger {
	return func(_ string, f Flags) bool { return pick(f) }
}

// rule appends text when its trigger fires. Non-zero steps or strength
// override the variant knobs; strength only applies to image-to-image.
type rule struct {
	when     trigger
	text     string
	steps    int
	strength float64
}

type definition struct {
	positive      string
	negative      string
	steps         int
	guidance      float64
	strength      float64
	directEnhance bool
	rules         []rule
}
