package handlers

import "testing"

func TestSecureFilename(t *testing.T) {
	cases := map[string]string{
		"My Cät (1).png":      "My_Cat_1.png",
		"../../etc/passwd":    "etc_passwd",
		"  spaced   out.jpg ": "spaced_out.jpg",
		"日本.png":              "png",
		"...":                 "",
		"a\\b.gif":            "a_b.gif",
	}
	for in, want := range cases {
		if got := secureFilename(in); got != want {
			t.Fatalf("secureFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAllowedFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.png": true, "b.JPG": true, "c.jpeg": true, "d.gif": true,
		"e.webp": false, "noext": false, "f.png.exe": false,
	} {
		if got := allowedFile(name); got != want {
			t.Fatalf("allowedFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestPromptFileStem(t *testing.T) {
	cases := map[string]string{
		"A red fox, at dawn!":            "A_red_fox__at_dawn_",
		"exactly twenty chars plus more": "exactly_twenty_chars",
		"":                               "image",
		"über_cool":                      "über_cool",
	}
	for in, want := range cases {
		if got := promptFileStem(in); got != want {
			t.Fatalf("promptFileStem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStoredName(t *testing.T) {
	for in, want := range map[string]string{
		"cat.png":             "cat.png",
		"../uploads/cat.png":  "cat.png",
		"..\\..\\secret.png":  "secret.png",
		"..":                  "",
		"":                    "",
	} {
		if got := storedName(in); got != want {
			t.Fatalf("storedName(%q) = %q, want %q", in, got, want)
		}
	}
}
