package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/shortword/pkg/errors"
	"github.com/matzehuels/shortword/pkg/minkwitz"
	"github.com/matzehuels/shortword/pkg/pipeline"
)

const eightpoint = "../../examples/puzzles/eightpoint.yaml"

// run executes the root command with a cache in dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.Out = &out

	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--cache", dir}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func buildArgs(extra ...string) []string {
	return append([]string{"build", eightpoint, "--rounds", "1000", "--improve-every", "100", "--max-word", "40"}, extra...)
}

func TestBaseCommand(t *testing.T) {
	dir := t.TempDir()
	save := filepath.Join(dir, "eightpoint.base")

	out, err := run(t, dir, "base", eightpoint, "--save", save)
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	for _, want := range []string{"eightpoint", "0.1.2.3.4", "360"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	data, err := os.ReadFile(save)
	if err != nil {
		t.Fatalf("read saved base: %v", err)
	}
	if !strings.Contains(string(data), "0.1.2.3.4") {
		t.Errorf("saved base = %q", data)
	}
}

func TestBaseCommandRejectsBadBase(t *testing.T) {
	_, err := run(t, t.TempDir(), "base", eightpoint, "--base", "0.x")
	if err == nil {
		t.Fatal("expected an error for a malformed --base")
	}
}

func TestBuildSolveCheck(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "eightpoint.swt")

	out, err := run(t, dir, buildArgs("-o", tablePath)...)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, "eightpoint") || !strings.Contains(out, tablePath) {
		t.Errorf("build output:\n%s", out)
	}
	if _, err := minkwitz.Load(tablePath); err != nil {
		t.Fatalf("load written table: %v", err)
	}

	out, err = run(t, dir, "solve", eightpoint, "--target", "(0,4,6)(1,5,7)")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	word := strings.TrimSpace(out)
	if word == "" || strings.HasPrefix(word, "!") {
		t.Errorf("solve printed %q", word)
	}

	out, err = run(t, dir, "solve", eightpoint, "--table", tablePath, "--target", "(0,4)(2,3,7,1)", "-o", "json")
	if err != nil {
		t.Fatalf("solve --table: %v", err)
	}
	var sols []pipeline.Solution
	if err := json.Unmarshal([]byte(out), &sols); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(sols) != 1 || sols[0].Kind != pipeline.KindExact || sols[0].Length == 0 {
		t.Errorf("solutions = %+v", sols)
	}

	out, err = run(t, dir, "check", eightpoint)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "verified") || !strings.Contains(out, "complete") {
		t.Errorf("check output:\n%s", out)
	}
}

func TestBuildResumesFromFile(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "eightpoint.swt")
	if _, err := run(t, dir, buildArgs("-o", tablePath)...); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := run(t, dir, buildArgs("--no-cache", "--resume", tablePath)...); err != nil {
		t.Fatalf("build --resume: %v", err)
	}
}

func TestTableFileMustFitPuzzle(t *testing.T) {
	dir := t.TempDir()
	foreign := filepath.Join(dir, "foreign.swt")
	if err := minkwitz.Save(minkwitz.NewTable([]int{4, 3, 2, 1, 0}, 8), foreign); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{
		{"solve", eightpoint, "--table", foreign, "--target", "(0,4,6)(1,5,7)"},
		{"check", eightpoint, "--table", foreign},
	} {
		_, err := run(t, dir, args...)
		if !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("%s with a foreign table: err = %v, want INVALID_INPUT", args[0], err)
		}
	}
}

func TestSolveBatchFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, buildArgs()...); err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := run(t, dir, "solve", eightpoint, "--batch", "../../examples/puzzles/targets.txt")
	if err != nil {
		t.Fatalf("solve --batch: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), out)
	}
	if lines[2] != "(identity)" {
		t.Errorf("identity target printed %q", lines[2])
	}
}

func TestSolveFlagErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "solve", eightpoint)
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("missing target: err = %v, want INVALID_INPUT", err)
	}

	_, err = run(t, dir, "solve", eightpoint, "--target", "(0,1)", "--batch", "x.txt")
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("target and batch: err = %v, want INVALID_INPUT", err)
	}

	_, err = run(t, dir, "solve", eightpoint, "--target", "(0,1)", "-o", "yaml")
	if err == nil {
		t.Error("expected an error for an unknown output format")
	}
}

func TestSolveUnreachableTarget(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, buildArgs()...); err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := run(t, dir, "solve", eightpoint, "--target", "(0,1)")
	if err == nil {
		t.Fatal("expected an error for a target outside the group")
	}
	if !strings.HasPrefix(out, "!") {
		t.Errorf("output = %q, want a failure line", out)
	}
}

func TestExploreCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "explore", eightpoint, "--limit", "1000")
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if !strings.Contains(out, "360") {
		t.Errorf("explore should find all 360 elements:\n%s", out)
	}

	out, err = run(t, t.TempDir(), "explore", eightpoint, "--limit", "3", "--words")
	if err != nil {
		t.Fatalf("explore --words: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || lines[0] != "(identity)" {
		t.Errorf("words = %q", lines)
	}

	if _, err := run(t, t.TempDir(), "explore", eightpoint, "--strategy", "random"); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "graph", eightpoint, "--radius", "1")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.HasPrefix(out, "digraph") {
		t.Errorf("graph output is not DOT:\n%s", out)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "orbit.dot")
	if _, err := run(t, dir, "graph", eightpoint, "--orbit", "0", "-o", path); err != nil {
		t.Fatalf("graph --orbit: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(data), "digraph") {
		t.Errorf("orbit file = %q, %v", data, err)
	}

	_, err = run(t, t.TempDir(), "graph", eightpoint, "--orbit", "8")
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("out-of-range orbit: err = %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}

	out, err = run(t, dir, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "empty") {
		t.Errorf("clearing an empty cache printed %q", out)
	}

	if _, err := run(t, dir, buildArgs()...); err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err = run(t, dir, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cleared") {
		t.Errorf("cache clear printed %q", out)
	}

	_, err = run(t, dir, "check", eightpoint)
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("check after clear: err = %v, want NOT_FOUND", err)
	}

	out, err = run(t, dir, "--no-cache", "cache", "path")
	if err != nil || strings.TrimSpace(out) != "none" {
		t.Errorf("--no-cache path = %q, %v", out, err)
	}
}

func TestResolveCacheLocation(t *testing.T) {
	t.Setenv(envCache, "redis://localhost:6379/0")
	c := New(io.Discard, LogInfo)
	loc, err := c.resolveCacheLocation()
	if err != nil || loc != "redis://localhost:6379/0" {
		t.Errorf("env location = %q, %v", loc, err)
	}

	c.cacheLocation = "/tmp/flag"
	if loc, _ := c.resolveCacheLocation(); loc != "/tmp/flag" {
		t.Errorf("--cache should win over the environment, got %q", loc)
	}

	t.Setenv(envCache, "")
	t.Setenv("XDG_CACHE_HOME", "/xdg")
	c.cacheLocation = ""
	if loc, _ := c.resolveCacheLocation(); loc != filepath.Join("/xdg", appName) {
		t.Errorf("XDG location = %q", loc)
	}
}

func TestParseBaseFlag(t *testing.T) {
	base, err := parseBaseFlag("")
	if err != nil || base != nil {
		t.Errorf("empty flag = %v, %v", base, err)
	}
	base, err = parseBaseFlag("3.1.4")
	if err != nil || len(base) != 3 || base[2] != 4 {
		t.Errorf("dotted flag = %v, %v", base, err)
	}

	path := filepath.Join(t.TempDir(), "b.base")
	if err := os.WriteFile(path, []byte("2.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	base, err = parseBaseFlag("@" + path)
	if err != nil || len(base) != 2 || base[0] != 2 {
		t.Errorf("file flag = %v, %v", base, err)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the command name")
	}
	if _, err := run(t, t.TempDir(), "completion", "tcsh"); err == nil {
		t.Error("expected an error for an unsupported shell")
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "cell"); got != "1 cell" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(3, "cell"); got != "3 cells" {
		t.Errorf("plural(3) = %q", got)
	}
}
