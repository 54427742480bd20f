package style

import "strings"

const genericGhibliFilm = "classic Studio Ghibli animation style, Miyazaki-directed film"

type knobs struct {
	steps    int
	guidance float64
	strength float64
}

type ghibliFilm struct {
	prompt string
	knobs
}

var ghibliFilms = map[string]ghibliFilm{
	"spirited_away": {
		prompt: "Spirited Away art style, warm fantasy lighting, otherworldly architecture, mystical bathhouse setting, water elements, Japanese folklore elements",
		knobs:  knobs{guidance: 8.5},
	},
	"totoro": {
		prompt: "My Neighbor Totoro art style, lush forest scenery, rural Japanese countryside, soft natural lighting, summer atmosphere, magical forest creatures",
		knobs:  knobs{guidance: 7.5, strength: 0.55},
	},
	"mononoke": {
		prompt: "Princess Mononoke art style, ancient forest, Japanese mythology, spiritual forest elements, nature spirits, dramatic lighting, detailed texture",
		knobs:  knobs{guidance: 9.0, strength: 0.65},
	},
	"howls_moving_castle": {
		prompt: "Howl's Moving Castle art style, steampunk elements, European fantasy architecture, magical mechanisms, soft fantasy lighting",
		knobs:  knobs{guidance: 8.5},
	},
	"kiki": {
		prompt: "Kiki's Delivery Service art style, European coastal town, flying scenes, cozy atmosphere, warm lighting, gentle colors",
		knobs:  knobs{guidance: 7.5, strength: 0.55},
	},
	"castle_in_the_sky": {
		prompt: "Castle in the Sky art style, floating islands, ancient technology, dramatic sky perspectives, adventure atmosphere",
	},
	"porco_rosso": {
		prompt: "Porco Rosso art style, Mediterranean setting, vintage airplanes, 1920s setting, blue ocean, rocky islands",
	},
	"nausicaa": {
		prompt: "Nausicaa art style, post-apocalyptic landscape, toxic jungle, fantasy creatures, dramatic skies, insect designs",
		knobs:  knobs{guidance: 9.0, strength: 0.65},
	},
	"ponyo": {
		prompt: "Ponyo art style, vibrant underwater scenes, seaside imagery, childlike wonder, flowing water effects, playful character design",
		knobs:  knobs{steps: 60, guidance: 7.0, strength: 0.55},
	},
}

type ghibliScene struct {
	prompt string
	knobs
}

var ghibliScenes = map[string]ghibliScene{
	"landscape": {
		prompt: "expansive Ghibli landscape, atmospheric perspective, detailed natural elements, painterly style, dramatic sky, Kazuo Oga background art style",
		knobs:  knobs{steps: 60, strength: 0.65, guidance: 8.5},
	},
	"character": {
		prompt: "Ghibli character design, expressive face, simple features, emotional expression, gentle lighting, character close-up, Studio Ghibli character sheet",
		knobs:  knobs{steps: 50, strength: 0.55, guidance: 7.5},
	},
	"action": {
		prompt: "dynamic Ghibli animation scene, movement lines, action pose, dramatic moment, Studio Ghibli action sequence",
		knobs:  knobs{steps: 55, strength: 0.70, guidance: 8.0},
	},
	"interior": {
		prompt: "detailed Ghibli interior design, cozy atmosphere, lived-in space, soft lighting, attention to small details",
		knobs:  knobs{steps: 55, strength: 0.60, guidance: 7.5},
	},
	"fantasy": {
		prompt: "magical Ghibli fantasy elements, whimsical creatures, fantasy landscape, otherworldly setting, magical atmosphere",
		knobs:  knobs{steps: 60, strength: 0.70, guidance: 8.5},
	},
	"flying": {
		prompt: "Ghibli flying scene, soaring through clouds, aerial perspective, wind effects, sense of freedom, sky adventure",
		knobs:  knobs{steps: 55, strength: 0.65, guidance: 8.0},
	},
}

// GhibliFilms lists the recognised film references.
func GhibliFilms() []string { return sortedKeys(ghibliFilms) }

// GhibliScenes lists the recognised scene types.
func GhibliScenes() []string { return sortedKeys(ghibliScenes) }

// withGhibli applies the scene first and the film second, so film knobs win
// where both set the same value.
func (s Style) withGhibli(opts Options) Style {
	if scene := strings.ToLower(strings.TrimSpace(opts.Scene)); scene != "" {
		if sc, ok := ghibliScenes[scene]; ok {
			s.def.positive += ", " + sc.prompt
			s.def.apply(sc.knobs)
		}
	}

	if film := strings.TrimSpace(opts.Film); film != "" {
		key := strings.ReplaceAll(strings.ToLower(film), " ", "_")
		if f, ok := ghibliFilms[key]; ok {
			s.suffix = f.prompt
			s.def.apply(f.knobs)
		} else {
			s.suffix = genericGhibliFilm
		}
	}
	return s
}

func (d *definition) apply(k knobs) {
	if k.steps > 0 {
		d.steps = k.steps
	}
	if k.guidance > 0 {
		d.guidance = k.guidance
	}
	if k.strength > 0 {
		d.strength = k.strength
	}
}
