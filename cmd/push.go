package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardlens/cardlens/internal/config"
)

var flagPushMessage string

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Commit and push the catalog data directory",
	Long: `Snapshot the data dir into git: stage everything, commit, rebase onto
the remote and push. The data dir must already be a git repository; large
image trees are usually kept out of git via .gitignore.`,
	Args: cobra.NoArgs,
	RunE: runPush,
}

func init() {
	pushCmd.Flags().StringVarP(&flagPushMessage, "message", "m", "", "Commit message (default: timestamped snapshot)")
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	if err := checkGitAvailable(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'cardlens init' first.", err)
	}

	repo := cfg.DataDir
	if _, err := os.Stat(filepath.Join(repo, ".git")); err != nil {
		return fmt.Errorf("data dir %s is not a git repository\n"+
			"  Initialize it once with: git -C %s init", repo, repo)
	}

	// Warn about the image tree if it is not ignored; card scans are large
	// binaries that don't belong in history.
	if _, err := os.Stat(cfg.ImagesDir()); err == nil {
		if _, err := gitOutput(repo, "check-ignore", "-q", "images"); err != nil {
			printWarn("", "images/ is not git-ignored; consider adding it to .gitignore")
		}
	}

	printInfo("", "git add -A")
	if err := gitRun("-C", repo, "add", "-A"); err != nil {
		return fmt.Errorf("git add failed: %w", err)
	}

	status, err := gitOutput(repo, "status", "--porcelain")
	if err != nil {
		return fmt.Errorf("git status failed: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		printSkip("", "no changes to commit")
		return nil
	}

	msg := flagPushMessage
	if msg == "" {
		hostname, _ := os.Hostname()
		msg = fmt.Sprintf("cardlens: snapshot from %s", hostname)
	}
	printInfo("", fmt.Sprintf("git commit -m %q", msg))
	if out, err := gitOutput(repo, "commit", "-m", msg); err != nil {
		return fmt.Errorf("git commit failed: %s", strings.TrimSpace(out))
	}

	if _, err := gitOutput(repo, "remote", "get-url", "origin"); err != nil {
		printSkip("", "no 'origin' remote configured; committed locally only")
		return nil
	}

	branch, err := gitOutput(repo, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return fmt.Errorf("cannot determine current branch: %w", err)
	}
	branch = strings.TrimSpace(branch)

	printInfo("", fmt.Sprintf("git pull --rebase origin %s", branch))
	if out, err := gitOutput(repo, "pull", "--rebase", "origin", branch); err != nil {
		return fmt.Errorf("rebase failed — resolve conflicts, then 'git rebase --continue':\n%s",
			strings.TrimSpace(out))
	}

	printInfo("", "git push")
	if _, err := gitOutput(repo, "push", "-u", "origin", branch); err != nil {
		return fmt.Errorf("git push failed: %w", err)
	}

	printOK("", fmt.Sprintf("pushed to origin/%s", branch))
	return nil
}
