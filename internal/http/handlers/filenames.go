package handlers

import (
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

var allowedMIME = []string{"image/png", "image/jpeg", "image/gif"}

const promptNameRunes = 20

func newRequestID() string { return uuid.NewString() }

func allowedFile(name string) bool {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(name[idx+1:])]
	return ok
}

// secureFilename reduces a client supplied name to an ASCII token safe for
// use as a single path segment. It returns "" when nothing usable remains.
func secureFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	ascii := strings.NewReplacer("/", " ", "\\", " ").Replace(b.String())
	joined := strings.Join(strings.Fields(ascii), "_")

	b.Reset()
	for _, r := range joined {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}

// uploadKey names a stored upload as <uuid>_<sanitised name>.
func uploadKey(original string) (key, name string) {
	safe := secureFilename(original)
	if safe == "" {
		safe = "image.png"
	}
	name = uuid.NewString() + "_" + safe
	return path.Join(uploadsPrefix, name), name
}

// promptFileStem keeps letters, digits and underscores from the first
// characters of the prompt and maps everything else to underscores.
func promptFileStem(prompt string) string {
	var b strings.Builder
	n := 0
	for _, r := range prompt {
		if n == promptNameRunes {
			break
		}
		n++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}

// storedName strips any directory part from a client supplied reference to
// a stored file.
func storedName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
