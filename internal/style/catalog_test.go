package style

import "testing"

func TestLookup(t *testing.T) {
	cases := []struct {
		in     string
		want   ID
		wantOK bool
	}{
		{in: "ghibli", want: Ghibli, wantOK: true},
		{in: "Gihbli", want: Ghibli, wantOK: true},
		{in: "GIBLI", want: Ghibli, wantOK: true},
		{in: "  PixelArt ", want: PixelArt, wantOK: true},
		{in: "pixel_art", want: PixelArt, wantOK: true},
		{in: "comic", want: ComicBook, wantOK: true},
		{in: "oil", want: OilPainting, wantOK: true},
		{in: "popart", want: PopArt, wantOK: true},
		{in: "water-color", want: Watercolor, wantOK: true},
		{in: "cybertech", want: Cyberpunk, wantOK: true},
		{in: "steam punk", want: Steampunk, wantOK: true},
		{in: "watr", wantOK: false},
		{in: "waterclor", wantOK: false},
		{in: "", wantOK: false},
		{in: "   ", wantOK: false},
		{in: "sepia", wantOK: false},
	}

	for _, tc := range cases {
		got, ok := Lookup(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("Lookup(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestResolveWithAppliesOptions(t *testing.T) {
	s, ok := ResolveWith("pixelart", Options{Era: "ps1"})
	if !ok {
		t.Fatalf("expected pixel art to resolve")
	}
	px, explicit := s.Pixel()
	if !explicit || px.PixelSize != 4 || px.ColorCount != 64 {
		t.Fatalf("unexpected pixel options %+v", px)
	}
}

func TestResolveUnknownIsNotAnError(t *testing.T) {
	if _, ok := Resolve("definitely not a style"); ok {
		t.Fatalf("expected no style")
	}
}

func TestCatalogListsEveryStyle(t *testing.T) {
	entries := Catalog()
	if len(entries) != len(All) {
		t.Fatalf("catalog has %d entries, want %d", len(entries), len(All))
	}
	byID := map[ID]Entry{}
	for _, e := range entries {
		byID[e.ID] = e
	}
	if got := byID[OilPainting].DisplayName; got != "Oil Painting" {
		t.Fatalf("display name = %q", got)
	}
	aliases := byID[PixelArt].Aliases
	if len(aliases) != 1 || aliases[0] != "pixelart" {
		t.Fatalf("unexpected aliases %v", aliases)
	}
	if _, ok := byID[Base]; ok {
		t.Fatalf("base must not be listed")
	}
}
