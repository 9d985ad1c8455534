package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cardlens/cardlens/internal/config"
)

// initTestDataRepo points HOME at a temp dir, writes a config whose data dir
// is a real git repo with a baseline commit, and returns that data dir.
func initTestDataRepo(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, ".cardlens"), 0o755); err != nil {
		t.Fatal(err)
	}

	repo := filepath.Join(home, ".cardlens", "catalog")
	if err := os.MkdirAll(repo, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{
		{"-C", repo, "init"},
		{"-C", repo, "config", "user.email", "test@cardlens.local"},
		{"-C", repo, "config", "user.name", "Cardlens Test"},
	} {
		if err := gitRun(args...); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}

	if err := os.WriteFile(filepath.Join(repo, "cards.csv"), []byte("id,name,set,number,hp,image_path\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{
		{"-C", repo, "add", "."},
		{"-C", repo, "commit", "-m", "initial"},
	} {
		if err := gitRun(args...); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}

	if err := config.Save(&config.Config{DataDir: repo}); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return repo
}

func TestPush_NoRemoteCommitsLocally(t *testing.T) {
	repo := initTestDataRepo(t)

	// A changed catalog must end up committed even without an origin remote.
	if err := os.WriteFile(filepath.Join(repo, "cards.csv"),
		[]byte("id,name,set,number,hp,image_path\nsv3-86,Charmeleon,sv3,86,90,images/sv3/86.jpg\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	flagPushMessage = "catalog update"
	defer func() { flagPushMessage = "" }()
	if err := runPush(pushCmd, nil); err != nil {
		t.Fatalf("runPush: %v", err)
	}

	out, err := gitOutput(repo, "log", "--oneline")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "catalog update") {
		t.Errorf("commit not created:\n%s", out)
	}
	dirty, err := gitOutput(repo, "status", "--porcelain")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(dirty) != "" {
		t.Errorf("repo still dirty after push:\n%s", dirty)
	}
}

func TestPush_CleanRepoIsNoop(t *testing.T) {
	repo := initTestDataRepo(t)

	before, _ := gitOutput(repo, "rev-parse", "HEAD")
	if err := runPush(pushCmd, nil); err != nil {
		t.Fatalf("runPush on clean repo: %v", err)
	}
	after, _ := gitOutput(repo, "rev-parse", "HEAD")
	if before != after {
		t.Error("clean repo should not gain commits")
	}
}

func TestPush_RequiresGitRepo(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, ".cardlens"), 0o755); err != nil {
		t.Fatal(err)
	}
	dataDir := filepath.Join(home, ".cardlens", "catalog")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := config.Save(&config.Config{DataDir: dataDir}); err != nil {
		t.Fatal(err)
	}

	err := runPush(pushCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "not a git repository") {
		t.Fatalf("expected not-a-git-repository error, got %v", err)
	}
}
