package archive

import (
	"errors"
	"testing"
)

func TestValidateNameAccepts(t *testing.T) {
	cases := map[string]string{
		"p1.jpg":             "p1.jpg",
		" chapter 1/p2.png ": "chapter 1/p2.png",
		"cafe\u0301.png":     "caf\u00e9.png",
		"..hidden.png":       "..hidden.png",
	}
	for in, want := range cases {
		got, err := ValidateName(in)
		if err != nil {
			t.Errorf("ValidateName(%q) returned error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ValidateName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateNameRejects(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"../evil.png",
		"a/../../evil.png",
		"/etc/passwd",
		`C:\evil.png`,
		"c:evil.png",
		`sub\p1.png`,
		"p1\x00.png",
		"chapter1/",
		".",
		"a/./b.png",
		"a//b.png",
	} {
		if _, err := ValidateName(in); !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateName(%q) = %v, want ErrInvalidName", in, err)
		}
	}
}

func TestEntryKeys(t *testing.T) {
	if got := maskKey("p1.jpg"); got != "masks/p1.png" {
		t.Fatalf("unexpected mask key %q", got)
	}
	if got := finalKey("p1.jpg"); got != "finals/p1.png" {
		t.Fatalf("unexpected final key %q", got)
	}
	if got := originalKey("p1.jpg"); got != "originals/p1.jpg" {
		t.Fatalf("unexpected original key %q", got)
	}
}
