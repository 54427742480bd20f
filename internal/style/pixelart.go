package style

import (
	"sort"
	"strings"
)

const (
	DefaultPixelSize  = 8
	DefaultColorCount = 24

	MinPixelSize  = 2
	MaxPixelSize  = 32
	MinColorCount = 8
	MaxColorCount = 64

	genericPixelEra  = "classic retro console pixel art"
	genericPixelGame = "classic retro video game pixel art"
)

type pixelPreset struct {
	prompt     string
	pixelSize  int
	colorCount int
}

var (
	nesEra = pixelPreset{
		prompt:     "8-bit NES style pixel art, limited NES color palette, low resolution pixel graphics, simple pixel shapes, NES game aesthetic, 8-bit sprites",
		pixelSize:  16,
		colorCount: 16,
	}
	snesEra = pixelPreset{
		prompt:     "16-bit SNES style pixel art, SNES color palette, detailed pixel graphics, 16-bit sprite design, SNES game aesthetic",
		pixelSize:  8,
		colorCount: 32,
	}
	ps1Era = pixelPreset{
		prompt:     "32-bit PlayStation era pixel art, higher color depth, pixel art with detailed shading, PS1 aesthetic, more colorful pixel graphics",
		pixelSize:  4,
		colorCount: 64,
	}
)

var pixelEras = map[string]pixelPreset{
	"8bit":    nesEra,
	"nes":     nesEra,
	"16bit":   snesEra,
	"snes":    snesEra,
	"genesis": snesEra,
	"32bit":   ps1Era,
	"ps1":     ps1Era,
}

var pixelGames = map[string]pixelPreset{
	"zelda": {
		prompt:    "Legend of Zelda pixel art style, top-down pixel graphics, Zelda-like sprites, fantasy pixel art, Hyrule-inspired pixel landscapes",
		pixelSize: 8, colorCount: 32,
	},
	"mario": {
		prompt:    "Super Mario pixel art style, vibrant pixel colors, platformer game sprites, Mario-inspired character design, mushroom kingdom pixel art",
		pixelSize: 8, colorCount: 48,
	},
	"metroid": {
		prompt:    "Metroid-style pixel art, sci-fi pixel environments, space pixel art, dark atmosphere, Metroid-inspired alien pixel designs",
		pixelSize: 6, colorCount: 32,
	},
	"pokemon": {
		prompt:    "Pokemon-style pixel art, monster catching game aesthetic, Pokemon-inspired creature design, RPG overworld pixel style",
		pixelSize: 8, colorCount: 32,
	},
	"final_fantasy": {
		prompt:    "Final Fantasy pixel RPG style, JRPG pixel art, detailed character sprites, fantasy pixel environments, classic RPG UI elements",
		pixelSize: 8, colorCount: 64,
	},
	"sonic": {
		prompt:    "Sonic the Hedgehog pixel style, fast-moving character design, Genesis-era sprites, vibrant colorful pixel backgrounds, Sonic-inspired level design",
		pixelSize: 8, colorCount: 48,
	},
	"castlevania": {
		prompt:    "Castlevania pixel art style, gothic horror pixel graphics, detailed architecture, dramatic lighting in pixel form, horror game pixel aesthetic",
		pixelSize: 6, colorCount: 32,
	},
	"megaman": {
		prompt:    "Mega Man pixel art style, robot character design, sci-fi action platformer sprites, Mega Man-inspired enemy designs, tech pixel art",
		pixelSize: 6, colorCount: 24,
	},
}

// PixelEras lists the recognised console eras.
func PixelEras() []string { return sortedKeys(pixelEras) }

// PixelGames lists the recognised game references.
func PixelGames() []string { return sortedKeys(pixelGames) }

// withPixelArt applies era, then game, then explicit size and colour count.
// Any of these marks the pixel options as explicit.
func (s Style) withPixelArt(opts Options) Style {
	px := PixelOptions{PixelSize: DefaultPixelSize, ColorCount: DefaultColorCount}
	explicit := false

	if era := strings.TrimSpace(opts.Era); era != "" {
		explicit = true
		key := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(era))
		if p, ok := pixelEras[key]; ok {
			s.def.positive = p.prompt
			px = PixelOptions{PixelSize: p.pixelSize, ColorCount: p.colorCount}
		} else {
			s.def.positive += ", " + genericPixelEra
		}
	}

	if game := strings.ToLower(strings.TrimSpace(opts.Game)); game != "" {
		explicit = true
		if p, ok := pixelGames[game]; ok {
			s.def.positive = p.prompt
			px = PixelOptions{PixelSize: p.pixelSize, ColorCount: p.colorCount}
		} else {
			s.def.positive += ", " + genericPixelGame
		}
	}

	if opts.PixelSize != 0 {
		explicit = true
		px.PixelSize = clampInt(opts.PixelSize, MinPixelSize, MaxPixelSize)
	}
	if opts.ColorCount != 0 {
		explicit = true
		px.ColorCount = clampInt(opts.ColorCount, MinColorCount, MaxColorCount)
	}

	if explicit {
		s.pixel = &px
	}
	return s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
