package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "cardlens",
	Short:        "Cardlens CLI — identify trading cards from photos",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `Cardlens keeps a local catalog of trading cards with per-card image
embeddings, and identifies a photographed card by exact cosine-similarity
search against that catalog.`,
}

// checkGitAvailable returns a clear error if git is not found on PATH.
func checkGitAvailable() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is not installed or not on PATH\n" +
			"  'cardlens push' needs git to snapshot the catalog.\n" +
			"  Install git from https://git-scm.com and try again.")
	}
	return nil
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// gitRun executes a git sub-command and streams output to stdout/stderr.
// It is a thin convenience wrapper used by multiple commands.
func gitRun(args ...string) error {
	c := exec.Command("git", args...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

// gitOutput executes a git sub-command in repo and captures combined output.
func gitOutput(repo string, args ...string) (string, error) {
	full := append([]string{"-C", repo}, args...)
	c := exec.Command("git", full...)
	var buf bytes.Buffer
	c.Stdout = &buf
	c.Stderr = &buf
	err := c.Run()
	return buf.String(), err
}
