package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureExtension(t *testing.T) {
	cases := []struct {
		name string
		path string
		ext  string
		want string
	}{
		{"adds missing extension", "out", "json", "out.json"},
		{"replaces wrong extension", "out.txt", "json", "out.json"},
		{"keeps matching extension", "out.json", "json", "out.json"},
		{"match is case-sensitive", "out.JSON", "json", "out.json"},
		{"accepts dotted extension argument", "mix", ".m3u8", "mix.m3u8"},
		{"preserves directories", "playlists/mix.tmp", "m3u8", "playlists/mix.m3u8"},
		{"only last extension is replaced", "archive.tar.gz", "json", "archive.tar.json"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EnsureExtension(tc.path, tc.ext)
			if got != tc.want {
				t.Errorf("EnsureExtension(%q, %q) = %q, want %q", tc.path, tc.ext, got, tc.want)
			}

			if again := EnsureExtension(got, tc.ext); again != got {
				t.Errorf("not idempotent: EnsureExtension(%q, %q) = %q", got, tc.ext, again)
			}
		})
	}
}

func TestRelativeTo(t *testing.T) {
	t.Run("target below base", func(t *testing.T) {
		rel, err := RelativeTo("/library/artist/track.mp3", "/library")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rel != filepath.Join("artist", "track.mp3") {
			t.Errorf("unexpected relative path: %q", rel)
		}
	})

	t.Run("target above base", func(t *testing.T) {
		rel, err := RelativeTo("/library/track.mp3", "/library/playlists")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rel != filepath.Join("..", "track.mp3") {
			t.Errorf("unexpected relative path: %q", rel)
		}
	})

	t.Run("disjoint trees", func(t *testing.T) {
		rel, err := RelativeTo("/music/a.mp3", "/exports/playlists")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rel != filepath.Join("..", "..", "music", "a.mp3") {
			t.Errorf("unexpected relative path: %q", rel)
		}
	})

	t.Run("round trips against base", func(t *testing.T) {
		targets := []string{
			"/library/artist/track.mp3",
			"/library/track.mp3",
			"/elsewhere/deep/nested/file.flac",
		}
		base := "/library/playlists/mixes"

		for _, target := range targets {
			rel, err := RelativeTo(target, base)
			if err != nil {
				t.Fatalf("RelativeTo(%q, %q): %v", target, base, err)
			}
			if resolved := filepath.Clean(filepath.Join(base, rel)); resolved != target {
				t.Errorf("round trip of %q via %q produced %q", target, rel, resolved)
			}
		}
	})

	t.Run("relative inputs are resolved against the working directory", func(t *testing.T) {
		wd, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}

		rel, err := RelativeTo("songs/a.mp3", ".")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if filepath.Clean(filepath.Join(wd, rel)) != filepath.Join(wd, "songs", "a.mp3") {
			t.Errorf("unexpected relative path: %q", rel)
		}
	})
}
