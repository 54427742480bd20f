package style

const baseNegative = "low quality, blurry, distorted, deformed, disfigured, bad anatomy, ugly, amateur"

func baseDefinition() definition {
	return definition{
		negative: baseNegative,
		steps:    50,
		guidance: 7.5,
		strength: 0.75,
	}
}

var (
	hasPerson    = onFlag(func(f Flags) bool { return f.Person })
	hasLandscape = onFlag(func(f Flags) bool { return f.Landscape })
	hasUrban     = onFlag(func(f Flags) bool { return f.Urban })
	hasTech      = onFlag(func(f Flags) bool { return f.Tech })
	hasAction    = onFlag(func(f Flags) bool { return f.Action })
)

// definitionOf is the single dispatch point from identifier to variant.
func definitionOf(id ID) (definition, bool) {
	d := baseDefinition()
	switch id {
	case Base:
	case Anime:
		d.positive = "anime style, detailed anime illustration, vibrant colors, clean lines, high quality anime art, anime aesthetic"
		d.negative = "low quality, blurry, distorted, deformed, disfigured, bad anatomy, western style, realistic, photo"
		d.steps, d.guidance, d.strength = 50, 7.5, 0.70
		d.rules = []rule{
			{when: onTerms("person", "woman", "man", "girl", "boy", "character", "people"),
				text: "anime character design, expressive eyes, dynamic pose, detailed clothing"},
			{when: onTerms("landscape", "city", "background", "scene"),
				text: "detailed anime background art, beautiful scenery, dynamic lighting"},
		}
	case ComicBook:
		d.positive = "comic book style, bold lines, flat colors, comic panel, detailed comic art, vibrant, ink drawing with color, dynamic composition"
		d.negative = "realistic, 3d render, photography, watercolor, blurry, grainy, low contrast"
		d.steps, d.guidance, d.strength = 45, 7.8, 0.75
		d.rules = []rule{
			{when: onTerms("hero", "superhero", "villain", "fight", "action", "battle"),
				text: "superhero comic art style, action lines, dynamic poses, dramatic lighting"},
			{when: onTerms("story", "narrative", "scene", "character"),
				text: "narrative comic panel, expressive characters, thought bubbles, iconic comic art"},
		}
	case Cyberpunk:
		d.positive = "cyberpunk style, neon lights, futuristic city, high tech low life, cybernetic, rain, night time, digital art, science fiction, vibrant colors"
		d.negative = "daylight, natural, rural, vintage, historical, low tech, grainy, blurry"
		d.steps, d.guidance, d.strength = 50, 8.0, 0.75
		d.rules = []rule{
			{when: onTerms("person", "character", "man", "woman", "people"),
				text: "cybernetic implants, neon-lit face, urban outfit, tech-enhanced, holographic interface"},
			{when: onTerms("city", "urban", "street", "skyline", "building"),
				text: "towering skyscrapers, neon advertisements, holographic billboards, flying vehicles, smog, rain-slicked streets"},
			{when: onTerms("tech", "computer", "machine", "robot", "cyber", "vehicle"),
				text: "advanced technology, glowing interfaces, holographic displays, futuristic design"},
		}
	case Enhance:
		d.positive = "high quality, enhanced details, professional photo, perfect lighting, vibrant colors, sharp focus, 8K resolution"
		d.negative = "low quality, blurry, noise, compression artifacts, distorted, grainy, pixelated, overexposed, underexposed"
		d.steps, d.guidance, d.strength = 60, 7.5, 0.60
		d.directEnhance = true
	case Fantasy:
		d.positive = "fantasy art style, magical, mythical, epic scene, dramatic lighting, detailed fantasy illustration, dungeons and dragons style, high quality fantasy concept art"
		d.negative = "modern, urban, sci-fi, mundane, realistic photo, low quality, blurry"
		d.steps, d.guidance, d.strength = 55, 7.5, 0.70
		d.rules = []rule{
			{when: onTerms("character", "person", "warrior", "mage", "wizard", "hero", "knight", "elf", "dwarf", "orc"),
				text: "fantasy character design, magical aura, mythical armor, enchanted weapons, heroic pose"},
			{when: onTerms("landscape", "castle", "mountain", "forest", "kingdom", "realm"),
				text: "epic fantasy landscape, magical atmosphere, mystical light, otherworldly, fantasy environment"},
			{when: onTerms("dragon", "monster", "creature", "beast", "magical"),
				text: "mythical creature, fantasy beast design, magical aura, epic fantasy monster"},
		}
	case Ghibli:
		d.positive = "Studio Ghibli anime style, Miyazaki style, pastel colors, soft lighting, detailed backgrounds, hand-drawn animation style, whimsical, painterly, detailed traditional animation, background art by Kazuo Oga, character design by Hayao Miyazaki"
		d.negative = "3D, CGI, photorealistic, hyper-detailed, low quality, blurry, distorted, deformed, disfigured, bad anatomy, disproportionate, unnatural colors, oversaturated, high contrast"
		d.steps, d.guidance, d.strength = 55, 8.0, 0.60
		d.rules = []rule{
			{when: hasPerson,
				text: "iconic Ghibli character design, expressive eyes, simple facial features, naturalistic proportions"},
			{when: hasLandscape, steps: 60,
				text: "Ghibli background art, atmospheric perspective, detailed natural elements, dynamic clouds, painterly landscapes"},
			{when: hasUrban,
				text: "detailed Ghibli city background, European-inspired architecture, quaint town design"},
		}
	case Impressionist:
		d.positive = "impressionist painting style, visible brushstrokes, emphasis on light, vibrant colors, Claude Monet style, en plein air, artistic masterpiece"
		d.negative = "detailed, sharp, realistic, digital art, 3d, anime, cartoon, smooth texture, photography"
		d.steps, d.guidance, d.strength = 55, 7.5, 0.80
		d.rules = []rule{
			{when: onTerms("landscape", "garden", "water", "lake", "river", "sea", "field", "nature"),
				text: "impressionist landscape, natural light effects, en plein air painting, vibrant natural colors, Monet-like water reflections"},
			{when: onTerms("city", "street", "building", "urban", "cafe", "paris"),
				text: "impressionist cityscape, atmospheric perspective, Parisian impressionism, cafe scenes, urban light effects"},
			{when: onTerms("person", "people", "figure", "portrait", "woman", "man"),
				text: "impressionist figure painting, soft edges, loose brushwork, emphasis on light and atmosphere over detail"},
		}
	case OilPainting:
		d.positive = "oil painting, detailed brushwork, textured canvas, rich colors, artistic, masterpiece oil painting style, professional art"
		d.negative = "digital art, smooth, flat colors, cartoon, anime, 3d render, blurry, grainy, photography, photo"
		d.steps, d.guidance, d.strength = 55, 7.5, 0.80
		d.rules = []rule{
			{when: onTerms("portrait", "person", "man", "woman", "face", "figure"),
				text: "traditional oil portrait, dramatic lighting, chiaroscuro, rich skin tones, realistic portrait painting"},
			{when: onTerms("landscape", "nature", "mountain", "sea", "forest", "sky"),
				text: "landscape oil painting, atmospheric perspective, rich natural colors, detailed foliage, classical composition"},
			{when: onTerms("still life", "fruit", "flower", "object", "food", "book", "table"),
				text: "still life oil painting, rich textures, detailed objects, dramatic lighting, realistic textures"},
		}
	case PixelArt:
		d.positive = "pixel art style, 8-bit, 16-bit, retro game graphics, pixelated, limited color palette, video game art, pixel art masterpiece, sharp pixel edges, blocky, retro game aesthetic, crisp pixels"
		d.negative = "smooth, blurry, detailed, realistic, 3d, high resolution, photography, oil painting, gradient colors, anti-aliasing, dithering"
		d.steps, d.guidance, d.strength = 30, 10.0, 0.85
		d.rules = []rule{
			{when: hasPerson, text: "pixel sprite character, 16-bit character design"},
			{when: hasLandscape, text: "pixel art background, retro game environment"},
			{when: hasTech, text: "sci-fi pixel art, tech sprites, 16-bit technology"},
			{when: hasUrban, text: "pixel city, retro game city background"},
			{when: hasAction, strength: 0.9, text: "dynamic pixel art scene, retro game action sequence"},
		}
	case PopArt:
		d.positive = "pop art style, bold colors, halftone dots, Andy Warhol inspired, Roy Lichtenstein style, strong contrasts, flat graphic design elements"
		d.negative = "realistic, monochrome, subtle, detailed, painterly, organic, sketch, 3d render"
		d.steps, d.guidance, d.strength = 50, 8.0, 0.80
		d.rules = []rule{
			{when: onTerms("portrait", "face", "celebrity", "icon", "repeated", "multiple"),
				text: "Andy Warhol style, repeated images, bright contrasting colors, screen printing effect, iconic portrait"},
			{when: onTerms("comic", "emotion", "speech", "thought", "action", "dramatic"),
				text: "Roy Lichtenstein style, ben-day dots, thick black outlines, primary colors, comic strip aesthetic, speech bubbles"},
			{when: onTerms("object", "product", "commercial", "advertisement", "consumer"),
				text: "commercial pop art, consumer product aesthetic, advertising style, bold typography, graphic design elements"},
		}
	case Realistic:
		d.positive = "photorealistic, highly detailed, professional photography, 8k, DSLR, perfect composition, masterpiece, photorealistic rendering"
		d.negative = "cartoon, anime, illustration, drawing, painting, crayon, sketch, disfigured, deformed, watermark, signature"
		d.steps, d.guidance, d.strength = 60, 8.0, 0.60
		d.rules = []rule{
			{when: onTerms("portrait", "person", "man", "woman", "people"),
				text: "portrait photography, bokeh, studio lighting, professional headshot"},
			{when: onTerms("landscape", "nature", "mountain", "ocean", "forest"),
				text: "nature photography, golden hour, dramatic lighting, high dynamic range"},
			{when: onTerms("city", "urban", "street", "building"),
				text: "urban photography, architectural photography, tilt-shift, dramatic perspective"},
		}
	case Steampunk:
		d.positive = "steampunk style, Victorian era, brass, copper, gears, steam-powered machinery, industrial revolution aesthetic, ornate details, vintage"
		d.negative = "modern, digital, minimalist, futuristic, plastic, electronic, contemporary"
		d.steps, d.guidance, d.strength = 50, 7.6, 0.70
		d.rules = []rule{
			{when: onTerms("person", "character", "man", "woman", "portrait"),
				text: "Victorian clothing, brass goggles, mechanical prosthetics, gears, leather accents, pocket watch"},
			{when: onTerms("machine", "vehicle", "device", "invention", "airship", "engine"),
				text: "intricate brass machinery, steam-powered technology, exposed gears and pipes, ornate Victorian engineering"},
			{when: onTerms("city", "building", "interior", "factory", "workshop", "laboratory"),
				text: "industrial Victorian architecture, brass fixtures, steam pipes, clockwork mechanisms, gas lamps, ornate metalwork"},
		}
	case Watercolor:
		d.positive = "watercolor painting, wet on wet technique, flowing colors, soft edges, watercolor paper texture, beautiful watercolor art style"
		d.negative = "digital art, crisp edges, solid colors, detailed, anime, cartoon, 3d render, oil painting, acrylic"
		d.steps, d.guidance, d.strength = 55, 7.2, 0.80
		d.rules = []rule{
			{when: onTerms("landscape", "nature", "mountain", "forest", "sea", "sky", "garden"),
				text: "fluid watercolor landscape, bleeding colors, loose brushwork, atmospheric watercolor scene, color gradients"},
			{when: onTerms("flower", "plant", "botanical", "garden", "floral", "leaf"),
				text: "botanical watercolor illustration, delicate brushwork, transparent layers, soft color washes"},
			{when: onTerms("portrait", "person", "face", "figure", "people"),
				text: "impressionistic watercolor portrait, fluid brushstrokes, soft color transitions, minimalist details"},
		}
	default:
		return definition{}, false
	}
	return d, true
}
