package source

import (
	"context"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Local clones go through the file transport, which runs git-upload-pack.
func requireUploadPack(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git-upload-pack"); err != nil {
		t.Skip("git-upload-pack not in PATH")
	}
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Add(name); err != nil {
		t.Fatal(err)
	}
	_, err = w.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "fed", Email: "fed@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestGitRepository(t *testing.T) {
	requireUploadPack(t)
	dir := t.TempDir()
	upstream, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	commitFile(t, upstream, dir, "walletshell.yaml", testDocument)

	repo := &GitRepository{Name: "settings", URL: &url.URL{Path: dir}, Path: "walletshell.yaml"}
	ctx := context.Background()
	if err := repo.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if string(repo.GetRawData()) != testDocument {
		t.Errorf("Expected raw data to match the committed file")
	}

	// nothing changed upstream
	if err := repo.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	commitFile(t, upstream, dir, "walletshell.yaml", "asset_ticker: XFED\n")
	if err := repo.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if v, ok := repo.GetData("asset_ticker"); !ok || v != "XFED" {
		t.Errorf("Expected asset_ticker XFED after pull, got %v", v)
	}
}

func TestGitRepositoryMissingFile(t *testing.T) {
	requireUploadPack(t)
	dir := t.TempDir()
	upstream, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	commitFile(t, upstream, dir, "other.yaml", testDocument)

	repo := &GitRepository{URL: &url.URL{Path: dir}, Path: "walletshell.yaml"}
	if err := repo.Refresh(context.Background()); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
