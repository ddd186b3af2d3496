package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/featguess/internal/services"
	"github.com/desertthunder/featguess/internal/shared"
	tu "github.com/desertthunder/featguess/internal/testing"
)

func noEnv(string) (string, bool) { return "", false }

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := shared.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func otisCatalog() *tu.FakeCatalog {
	return &tu.FakeCatalog{
		Tracks: []services.CatalogTrack{tu.CatalogTrack("otis", "Otis", "Kanye West", "JAY-Z")},
		Artists: []services.CatalogArtist{
			tu.CatalogArtist("kw", "Kanye West", 20000000, "https://img/kw"),
			tu.CatalogArtist("kw2", "Kanye West", 10),
			tu.CatalogArtist("kb", "Kanye Beats", 5),
		},
	}
}

// testRunner returns a runner backed by a fake catalog and an in-memory cache, plus its output buffer.
func testRunner(t *testing.T, catalog services.Catalog) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Catalog: catalog,
		DB:      setupTestDB(t),
		Logger:  shared.NewLogger(io.Discard),
		Output:  output,
		Lookup:  noEnv,
	})
	return runner, output
}

// run executes the CLI with a config path that does not exist, so defaults apply.
func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	missing := filepath.Join(t.TempDir(), "missing.toml")
	return newApp(r).Run(context.Background(), append([]string{"featguess", "-c", missing}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			catalog := &tu.FakeCatalog{}

			runner := NewRunner(RunnerOpts{Config: config, Logger: logger, Output: output, Catalog: catalog})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.lookup == nil {
				t.Error("expected environment lookup to be set")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.String() != "{\n  \"key\": \"value\"\n}\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			if err := runner.writeJSON(make(chan int), false); err == nil {
				t.Error("expected marshal error")
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writeJSON("x", false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			w := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &w})
			if err := runner.writeJSON("x", false); err == nil || !strings.Contains(err.Error(), "newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})
		runner.writePlain("%d tracks\n", 3)
		if output.String() != "3 tracks\n" {
			t.Errorf("unexpected output %q", output.String())
		}

		if err := NewRunner(RunnerOpts{Output: &tu.FWriter{}}).writePlain("x"); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		names := []string{}
		for _, cmd := range runner.register() {
			names = append(names, cmd.Name)
		}

		expected := "setup,guess,autocomplete,cache,serve,tui"
		if strings.Join(names, ",") != expected {
			t.Errorf("expected commands %s, got %v", expected, names)
		}
	})
}

func TestBefore(t *testing.T) {
	t.Run("loads file and environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := "[catalog]\nmarket = \"GB\"\nsearch_limit = 10\n\n[log]\nlevel = \"debug\"\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		runner, _ := testRunner(t, otisCatalog())
		runner.lookup = func(key string) (string, bool) {
			if key == "SPOTIFY_CLIENT_ID" {
				return "env-id", true
			}
			return "", false
		}

		if err := newApp(runner).Run(context.Background(), []string{"featguess", "-c", path, "setup", "database"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if runner.config.Catalog.Market != "GB" || runner.config.Catalog.SearchLimit != 10 {
			t.Errorf("file values not loaded: %+v", runner.config.Catalog)
		}
		if runner.config.Catalog.AutocompleteLimit != 3 {
			t.Errorf("missing keys should keep defaults, got %d", runner.config.Catalog.AutocompleteLimit)
		}
		if runner.config.Credentials.Spotify.ClientID != "env-id" {
			t.Errorf("environment not applied, got %q", runner.config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		os.WriteFile(path, []byte("[catalog]\nsearch_limit = 500\n"), 0644)

		runner, _ := testRunner(t, otisCatalog())
		err := newApp(runner).Run(context.Background(), []string{"featguess", "-c", path, "cache", "list"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestGuessCommand(t *testing.T) {
	t.Run("resolves then serves from cache", func(t *testing.T) {
		catalog := otisCatalog()
		runner, output := testRunner(t, catalog)

		if err := run(t, runner, "guess", "kanye west, jay z"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Kanye West & JAY-Z - Otis") || !strings.Contains(output.String(), "Source:   catalog") {
			t.Errorf("unexpected output: %s", output.String())
		}

		output.Reset()
		catalog.Reset()
		if err := run(t, runner, "guess", "jay z,kanye west"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Source:   cache") || catalog.Calls() != 0 {
			t.Errorf("expected cache hit without catalog calls, got %d calls: %s", catalog.Calls(), output.String())
		}
	})

	t.Run("json output", func(t *testing.T) {
		runner, output := testRunner(t, otisCatalog())

		if err := run(t, runner, "guess", "--json", "--market", "FR", "nobody,none"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var out guessOutput
		if err := json.Unmarshal(output.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if out.Status != "not_found" || out.Track != nil || out.Input != "nobody,none" {
			t.Errorf("unexpected output %+v", out)
		}
	})

	t.Run("missing argument", func(t *testing.T) {
		runner, _ := testRunner(t, otisCatalog())
		if err := run(t, runner, "guess"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		catalog := otisCatalog()
		runner, _ := testRunner(t, catalog)
		if err := run(t, runner, "guess", "kanye west"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if catalog.Calls() != 0 {
			t.Error("invalid input must not call the catalog")
		}
	})

	t.Run("catalog failure", func(t *testing.T) {
		runner, _ := testRunner(t, &tu.FakeCatalog{Err: shared.ErrNetwork})
		if err := run(t, runner, "guess", "a,b"); !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected ErrNetwork, got %v", err)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		runner, _ := testRunner(t, nil)
		if err := run(t, runner, "guess", "a,b"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "guesses.txt")
		content := "# weekly quiz\nkanye west,jay z\n\nnobody,none\nbad\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		runner, output := testRunner(t, otisCatalog())
		if err := run(t, runner, "guess", "--file", path, "--rate", "1000"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "kanye west,jay z → Otis") {
			t.Errorf("missing found line: %s", out)
		}
		if !strings.Contains(out, "found 1, not found 1, failed 0, invalid 1") {
			t.Errorf("missing summary: %s", out)
		}
	})
}

func TestAutocompleteCommand(t *testing.T) {
	catalog := otisCatalog()
	runner, output := testRunner(t, catalog)

	if err := run(t, runner, "autocomplete", "--json", "kanye"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var views []map[string]any
	if err := json.Unmarshal(output.Bytes(), &views); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(views) != 2 || views[0]["id"] != "kw" || views[1]["name"] != "Kanye Beats" {
		t.Errorf("unexpected suggestions %v", views)
	}
	if catalog.LastMarket != "FR" || catalog.LastLimit != 3 {
		t.Errorf("expected autocomplete market FR limit 3, got %q %d", catalog.LastMarket, catalog.LastLimit)
	}
}

func TestCacheCommands(t *testing.T) {
	runner, output := testRunner(t, otisCatalog())
	if err := run(t, runner, "guess", "kanye west,jay z"); err != nil {
		t.Fatalf("seed guess failed: %v", err)
	}

	t.Run("list csv", func(t *testing.T) {
		output.Reset()
		if err := run(t, runner, "cache", "list", "--format", "csv"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "otis,Otis,2011-08-08,Kanye West,JAY-Z") {
			t.Errorf("unexpected CSV: %s", output.String())
		}
	})

	t.Run("list to file", func(t *testing.T) {
		output.Reset()
		path := filepath.Join(t.TempDir(), "cache.md")
		if err := run(t, runner, "cache", "list", "--format", "md", "-o", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "Kanye West & JAY-Z - Otis") {
			t.Error("markdown export missing track")
		}
		if !strings.Contains(output.String(), "Exported 1 of 1 tracks") {
			t.Errorf("unexpected output: %s", output.String())
		}
	})

	t.Run("list bad format", func(t *testing.T) {
		if err := run(t, runner, "cache", "list", "--format", "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("lookup hit", func(t *testing.T) {
		output.Reset()
		if err := run(t, runner, "cache", "lookup", "JAY-Z, kanye west"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Otis") {
			t.Errorf("unexpected output: %s", output.String())
		}
	})

	t.Run("lookup miss", func(t *testing.T) {
		if err := run(t, runner, "cache", "lookup", "drake,future"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("artists", func(t *testing.T) {
		output.Reset()
		if err := run(t, runner, "cache", "artists"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := "JAY-Z (otis-artist-1): JAY-Z, jay z\nKanye West (otis-artist-0): Kanye West, kanye west\n"
		if output.String() != expected {
			t.Errorf("expected %q, got %q", expected, output.String())
		}
	})

	t.Run("alias makes lookup hit", func(t *testing.T) {
		output.Reset()
		if err := run(t, runner, "cache", "alias", "otis-artist-0", "ye"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), `Kanye West now accepts "ye"`) {
			t.Errorf("unexpected output: %s", output.String())
		}

		output.Reset()
		if err := run(t, runner, "cache", "lookup", "ye,jay z"); err != nil {
			t.Fatalf("expected cache hit for alias, got %v", err)
		}
		if !strings.Contains(output.String(), "Otis") {
			t.Errorf("unexpected output: %s", output.String())
		}
	})

	t.Run("alias already accepted", func(t *testing.T) {
		output.Reset()
		if err := run(t, runner, "cache", "alias", "otis-artist-1", "jay z"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "already accepts") {
			t.Errorf("unexpected output: %s", output.String())
		}
	})

	t.Run("alias unknown artist", func(t *testing.T) {
		if err := run(t, runner, "cache", "alias", "nobody", "x"); !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("alias missing name", func(t *testing.T) {
		if err := run(t, runner, "cache", "alias", "otis-artist-0"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSetupDatabase(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	dbPath := filepath.Join(dir, "featguess.db")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Logger: shared.NewLogger(io.Discard),
		Output: output,
		Lookup: func(key string) (string, bool) {
			if key == "FEATGUESS_DATABASE" {
				return dbPath, true
			}
			return "", false
		},
	})
	defer runner.Close()

	if err := newApp(runner).Run(context.Background(), []string{"featguess", "-c", configPath, "setup", "database"}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	tu.AssertFileExists(t, configPath)
	tu.AssertFileExists(t, dbPath)
	if !strings.Contains(output.String(), "(0 cached tracks)") {
		t.Errorf("unexpected output: %s", output.String())
	}

	output.Reset()
	if err := newApp(runner).Run(context.Background(), []string{"featguess", "-c", configPath, "setup", "rollback"}); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
	if !strings.Contains(output.String(), "Rolled back latest migration") {
		t.Errorf("unexpected output: %s", output.String())
	}
}
