package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sableglen/resonate/internal/models"
	"github.com/sableglen/resonate/internal/shared"
	tu "github.com/sableglen/resonate/internal/testing"
)

func newTestRunner(files *tu.MockFileStore, recs *tu.MockRecommender) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Logger: shared.NewLogger(io.Discard),
		Output: output,
		Files:  files,
		Recs:   recs,
	})
	return runner, output
}

func runApp(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := newApp(r)
	return app.Run(context.Background(), append([]string{"resonate"}, args...))
}

// newLibraryRoot returns a canonicalized temp directory usable as --library.
func newLibraryRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to canonicalize temp dir: %v", err)
	}
	return root
}

func testPipelineDoubles() (*tu.MockFileStore, *tu.MockRecommender) {
	files := &tu.MockFileStore{
		IDs: map[string]int64{
			filepath.Join("artist", "seed.mp3"): 42,
		},
		Files: map[int64]models.MediaFile{
			7:  {ID: 7, Directory: "artist/album", FileName: "close.mp3"},
			8:  {ID: 8, Directory: "singles", FileName: "closer.flac"},
			11: {ID: 11, Directory: ".", FileName: "far.mp3"},
		},
	}
	recs := &tu.MockRecommender{
		Recommendations: []models.Recommendation{
			{FileID: 7, Distance: 0.1},
			{FileID: 8, Distance: 0.1234},
			{FileID: 99, Distance: 0.4}, // no file record
			{FileID: 11, Distance: 0.9876},
		},
	}
	return files, recs
}

func TestRecommend(t *testing.T) {
	t.Run("selector validation", func(t *testing.T) {
		t.Run("neither selector fails before any collaborator runs", func(t *testing.T) {
			files, recs := testPipelineDoubles()
			runner, _ := newTestRunner(files, recs)

			err := runApp(t, runner, "--library", newLibraryRoot(t), "recommend")
			if !errors.Is(err, shared.ErrUsage) {
				t.Errorf("expected ErrUsage, got %v", err)
			}
			if files.Calls != 0 || recs.Calls != 0 {
				t.Error("collaborators should not have been invoked")
			}
		})

		t.Run("both selectors are mutually exclusive", func(t *testing.T) {
			files, recs := testPipelineDoubles()
			runner, _ := newTestRunner(files, recs)

			err := runApp(t, runner, "--library", newLibraryRoot(t), "recommend",
				"--item-id", "42", "--file-path", "artist/seed.mp3")
			if !errors.Is(err, shared.ErrUsage) {
				t.Errorf("expected ErrUsage, got %v", err)
			}
		})

		t.Run("negative num is a usage error", func(t *testing.T) {
			files, recs := testPipelineDoubles()
			runner, _ := newTestRunner(files, recs)

			err := runApp(t, runner, "--library", newLibraryRoot(t), "recommend",
				"--item-id", "42", "--num=-1")
			if !errors.Is(err, shared.ErrUsage) {
				t.Errorf("expected ErrUsage, got %v", err)
			}
			if files.Calls != 0 || recs.Calls != 0 {
				t.Error("collaborators should not have been invoked")
			}
		})

		t.Run("missing library root fails", func(t *testing.T) {
			runner, _ := newTestRunner(testPipelineDoubles())

			err := runApp(t, runner, "recommend", "--item-id", "42")
			if !errors.Is(err, shared.ErrMissingLibrary) {
				t.Errorf("expected ErrMissingLibrary, got %v", err)
			}
		})
	})

	t.Run("table output", func(t *testing.T) {
		root := newLibraryRoot(t)

		t.Run("renders joined rows with padded ids and 4-decimal distances", func(t *testing.T) {
			runner, output := newTestRunner(testPipelineDoubles())

			if err := runApp(t, runner, "--library", root, "recommend", "--item-id", "42", "--num", "3"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			out := output.String()
			for _, want := range []string{
				"00007", "0.1000", filepath.Join(root, "artist/album", "close.mp3"),
				"00008", "0.1234", filepath.Join(root, "singles", "closer.flac"),
			} {
				if !strings.Contains(out, want) {
					t.Errorf("expected output to contain %q:\n%s", want, out)
				}
			}
		})

		t.Run("entries without file records are skipped", func(t *testing.T) {
			runner, output := newTestRunner(testPipelineDoubles())

			if err := runApp(t, runner, "--library", root, "recommend", "--item-id", "42"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if strings.Contains(output.String(), "00099") {
				t.Errorf("unjoined entry rendered:\n%s", output.String())
			}
		})

		t.Run("file-path selector resolves through the store", func(t *testing.T) {
			files, recs := testPipelineDoubles()
			runner, output := newTestRunner(files, recs)

			err := runApp(t, runner, "--library", root, "recommend",
				"--file-path", filepath.Join("artist", "seed.mp3"))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "00007") {
				t.Errorf("expected recommendations in output:\n%s", output.String())
			}
		})

		t.Run("unknown file path wraps ErrNotFound", func(t *testing.T) {
			runner, _ := newTestRunner(testPipelineDoubles())

			err := runApp(t, runner, "--library", root, "recommend", "--file-path", "nope.mp3")
			if !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	})

	t.Run("json output", func(t *testing.T) {
		t.Run("requires an output path", func(t *testing.T) {
			runner, _ := newTestRunner(testPipelineDoubles())

			err := runApp(t, runner, "--library", newLibraryRoot(t), "recommend",
				"--item-id", "42", "--format", "json")
			if !errors.Is(err, shared.ErrUsage) {
				t.Errorf("expected ErrUsage, got %v", err)
			}
		})

		t.Run("writes raw pairs in retrieval order, correcting the extension", func(t *testing.T) {
			runner, output := newTestRunner(testPipelineDoubles())
			outPath := filepath.Join(t.TempDir(), "out")

			err := runApp(t, runner, "--library", newLibraryRoot(t), "recommend",
				"--item-id", "42", "--format", "json", "--output", outPath)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			content := tu.MustReadFile(t, outPath+".json")
			if content != "[[7,0.1],[8,0.1234],[99,0.4],[11,0.9876]]" {
				t.Errorf("unexpected content: %s", content)
			}
			if !strings.Contains(output.String(), "Recommendations saved to JSON file") {
				t.Errorf("expected confirmation, got: %s", output.String())
			}
		})
	})

	t.Run("m3u8 output", func(t *testing.T) {
		t.Run("creates directories and writes relative paths", func(t *testing.T) {
			root := newLibraryRoot(t)
			runner, output := newTestRunner(testPipelineDoubles())
			outPath := filepath.Join(t.TempDir(), "playlists", "mix")

			err := runApp(t, runner, "--library", root, "recommend",
				"--item-id", "42", "--format", "m3u8", "--output", outPath)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			playlist := outPath + ".m3u8"
			tu.AssertDirExists(t, filepath.Dir(playlist))

			lines := strings.Split(strings.TrimRight(tu.MustReadFile(t, playlist), "\n"), "\n")
			if lines[0] != "#EXTM3U" {
				t.Errorf("expected #EXTM3U header, got %q", lines[0])
			}
			if len(lines) != 4 {
				t.Fatalf("expected 3 playlist lines, got %d: %v", len(lines)-1, lines[1:])
			}

			playlistDir := filepath.Dir(playlist)
			want, err := filepath.Rel(playlistDir, filepath.Join(root, "artist/album", "close.mp3"))
			if err != nil {
				t.Fatalf("failed to compute expected path: %v", err)
			}
			if lines[1] != want {
				t.Errorf("expected first entry %q, got %q", want, lines[1])
			}

			if !strings.Contains(output.String(), "Recommendations saved to M3U8 file") {
				t.Errorf("expected confirmation, got: %s", output.String())
			}
		})

		t.Run("requires an output path", func(t *testing.T) {
			runner, _ := newTestRunner(testPipelineDoubles())

			err := runApp(t, runner, "--library", newLibraryRoot(t), "recommend",
				"--item-id", "42", "--format", "m3u8")
			if !errors.Is(err, shared.ErrUsage) {
				t.Errorf("expected ErrUsage, got %v", err)
			}
		})
	})

	t.Run("unsupported format", func(t *testing.T) {
		runner, _ := newTestRunner(testPipelineDoubles())
		outPath := filepath.Join(t.TempDir(), "out.xml")

		err := runApp(t, runner, "--library", newLibraryRoot(t), "recommend",
			"--item-id", "42", "--format", "xml", "--output", outPath)
		if !errors.Is(err, shared.ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
		tu.AssertNoFile(t, outPath)
	})

	t.Run("retrieval failures abort the pipeline", func(t *testing.T) {
		files, _ := testPipelineDoubles()
		recs := &tu.MockRecommender{Err: fmt.Errorf("%w: item 42 is not indexed", shared.ErrRetrieval)}
		runner, output := newTestRunner(files, recs)

		err := runApp(t, runner, "--library", newLibraryRoot(t), "recommend", "--item-id", "42")
		if !errors.Is(err, shared.ErrRetrieval) {
			t.Errorf("expected ErrRetrieval, got %v", err)
		}
		if output.Len() != 0 {
			t.Errorf("expected no output, got: %s", output.String())
		}
	})
}

func TestScanCommand(t *testing.T) {
	root := newLibraryRoot(t)
	if err := os.MkdirAll(filepath.Join(root, "artist"), 0755); err != nil {
		t.Fatalf("failed to create artist dir: %v", err)
	}
	tu.MustWriteFile(t, filepath.Join(root, "artist", "track.mp3"), []byte("audio"))
	tu.MustWriteFile(t, filepath.Join(root, "cover.png"), []byte("image"))

	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})

	if err := runApp(t, runner, "--library", root, "scan"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tu.AssertFileExists(t, filepath.Join(root, ".resonate", "library.db"))
}

func TestAnalyzeCommand(t *testing.T) {
	root := newLibraryRoot(t)
	tu.MustWriteFile(t, filepath.Join(root, "track.mp3"), []byte("some audio bytes"))

	scanRunner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
	if err := runApp(t, scanRunner, "--library", root, "scan"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	t.Run("builds the index and reports results", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})

		if err := runApp(t, runner, "--library", root, "analyze"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Audio analysis completed successfully") {
			t.Errorf("expected confirmation, got: %s", output.String())
		}
		tu.AssertFileExists(t, filepath.Join(root, ".resonate", "recommend.db"))
	})

	t.Run("write failures surface without stalling the pipeline", func(t *testing.T) {
		tu.MustWriteFile(t, filepath.Join(root, "second.mp3"), []byte("more audio bytes"))
		if err := runApp(t, scanRunner, "--library", root, "scan"); err != nil {
			t.Fatalf("rescan failed: %v", err)
		}

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &tu.FWriter{}})

		if err := runApp(t, runner, "--library", root, "analyze"); err == nil {
			t.Error("expected an error")
		}
		tu.AssertFileExists(t, filepath.Join(root, ".resonate", "recommend.db"))
	})
}
