package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDispatch_HelpUnknownAndUsage(t *testing.T) {
	out := captureOut(t)
	cfg := withTempConfig(t, "http://unused")
	ctx := context.Background()

	if code := Dispatch(ctx, cfg, nil); code != 2 {
		t.Fatalf("no args: expected 2, got %d", code)
	}
	if !strings.Contains(out.String(), "Stash CLI") {
		t.Fatalf("global usage not printed: %q", out.String())
	}

	out.Reset()
	if code := Dispatch(ctx, cfg, []string{"help", "upload"}); code != 0 {
		t.Fatalf("help upload: expected 0, got %d", code)
	}
	if !strings.Contains(out.String(), "Usage: upload <subjectId> <file> [file...]") {
		t.Fatalf("unexpected help: %q", out.String())
	}

	out.Reset()
	if code := Dispatch(ctx, cfg, []string{"frobnicate"}); code != 2 {
		t.Fatalf("unknown: expected 2, got %d", code)
	}
	if !strings.Contains(out.String(), "Unknown command: frobnicate") {
		t.Fatalf("unexpected output: %q", out.String())
	}

	out.Reset()
	if code := Dispatch(ctx, cfg, []string{"login", "only-email"}); code != 2 {
		t.Fatalf("bad args: expected 2, got %d", code)
	}
	if !strings.Contains(out.String(), "Usage: login <email> <password>") {
		t.Fatalf("usage not printed: %q", out.String())
	}

	out.Reset()
	if code := Dispatch(ctx, cfg, []string{"subjects"}); code != 1 {
		t.Fatalf("not logged in: expected 1, got %d", code)
	}
	if !strings.Contains(out.String(), "subjects error: not logged in") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestFormatGlobalUsage_ListsAllCommands(t *testing.T) {
	usage := FormatGlobalUsage()
	for _, name := range []string{"register", "login", "logout", "subjects", "subject-add", "subject-rm",
		"upload", "files", "download", "rm", "resync", "drive"} {
		if _, ok := Get(name); !ok {
			t.Fatalf("command %q not registered", name)
		}
		if !strings.Contains(usage, name) {
			t.Fatalf("usage does not mention %q", name)
		}
	}
}

func TestDispatch_UnauthorizedHint(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusUnauthorized, "Not authorized", nil)
	}))
	defer ts.Close()

	out := captureOut(t)
	cfg := withTempConfig(t, ts.URL)
	loggedIn(t, cfg, "stale")

	if code := Dispatch(context.Background(), cfg, []string{"files"}); code != 1 {
		t.Fatalf("expected 1, got %d", code)
	}
	if !strings.Contains(out.String(), "files error: server status 401: Not authorized") ||
		!strings.Contains(out.String(), "run `stash login`") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestDispatch_HelpFlag(t *testing.T) {
	out := captureOut(t)
	if code := Dispatch(context.Background(), withTempConfig(t, "http://unused"), []string{"--help"}); code != 0 {
		t.Fatalf("expected 0, got %d", code)
	}
	for _, group := range []string{"Account:", "Subjects:", "Files:", "Remote storage:"} {
		if !strings.Contains(out.String(), group) {
			t.Fatalf("usage misses group %q: %q", group, out.String())
		}
	}
}
