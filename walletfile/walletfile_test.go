package walletfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeFilename(t *testing.T) {
	testCases := []struct {
		raw  string
		want string
	}{
		{raw: "", want: ""},
		{raw: "mywallet", want: "mywallet.wal"},
		{raw: "mywallet.", want: "mywallet.wal"},
		{raw: "mywallet.wal", want: "mywallet.wal"},
		{raw: "my.wallet", want: "my.wallet.wal"},
		{raw: "/home/fed/wallets/main", want: "/home/fed/wallets/main.wal"},
	}
	for _, tc := range testCases {
		if got := NormalizeFilename(tc.raw, DefaultExt); got != tc.want {
			t.Errorf("Expected %q for %q, got %q", tc.want, tc.raw, got)
		}
	}
}

func TestNormalizeFilenameSingleExtension(t *testing.T) {
	for _, raw := range []string{"a", "a.", "a.b", "a.wal", "dir/a", "a.wallet"} {
		got := NormalizeFilename(raw, "wal")
		if !strings.HasSuffix(got, ".wal") {
			t.Errorf("Expected %q to end with .wal", got)
		}
		if strings.HasSuffix(got, ".wal.wal") {
			t.Errorf("Expected a single extension in %q", got)
		}
	}
	if got := NormalizeFilename("a", ".wal"); got != "a.wal" {
		t.Errorf("Expected leading dot in ext to be ignored, got %q", got)
	}
}

func TestPathPredicates(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.wal")
	if err := os.WriteFile(file, []byte("wallet"), 0o600); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.wal")

	if !IsFileExist(file) || !IsFileExist(dir) {
		t.Errorf("Expected existing paths to exist")
	}
	if IsFileExist(missing) || IsFileExist("") {
		t.Errorf("Expected missing and blank paths not to exist")
	}

	if !IsWritableDirectory(dir) {
		t.Errorf("Expected temp dir to be a writable directory")
	}
	if IsWritableDirectory(file) || IsWritableDirectory("") || IsWritableDirectory(missing) {
		t.Errorf("Expected file, blank and missing paths not to be writable directories")
	}

	if !IsPathWriteable(file) || !IsPathWriteable(dir) {
		t.Errorf("Expected file and dir to be writable")
	}
	if IsPathWriteable("") || IsPathWriteable(missing) {
		t.Errorf("Expected blank and missing paths not to be writable")
	}

	if !IsRegularFileAndWritable(file) {
		t.Errorf("Expected file to be a writable regular file")
	}
	if IsRegularFileAndWritable(dir) || IsRegularFileAndWritable("") {
		t.Errorf("Expected dir and blank path not to be writable regular files")
	}
}

func TestReadOnlyFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses file permissions")
	}
	file := filepath.Join(t.TempDir(), "ro.wal")
	if err := os.WriteFile(file, []byte("wallet"), 0o400); err != nil {
		t.Fatal(err)
	}
	if IsPathWriteable(file) || IsRegularFileAndWritable(file) {
		t.Errorf("Expected read-only file not to be writable")
	}
	_, err := ValidatePath(context.Background(), file, "", true, DefaultExt)
	if !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath, got %v", err)
	}
}

func TestValidatePathBlank(t *testing.T) {
	_, err := ValidatePath(context.Background(), "", "", false, DefaultExt)
	if !errors.Is(err, ErrBlankPath) {
		t.Fatalf("Expected ErrBlankPath, got %v", err)
	}
	if !strings.Contains(err.Error(), "blank") {
		t.Errorf("Expected message to mention blank, got %q", err.Error())
	}
}

func TestValidatePathDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := ValidatePath(context.Background(), dir, "", false, DefaultExt)
	if !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath for a directory, got %v", err)
	}

	// A directory that already carries the wallet extension.
	walDir := filepath.Join(dir, "looks-like.wal")
	if err := os.Mkdir(walDir, 0o700); err != nil {
		t.Fatal(err)
	}
	_, err = ValidatePath(context.Background(), filepath.Join(dir, "looks-like"), "", false, DefaultExt)
	if !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath for a directory named like a wallet, got %v", err)
	}
	var pathErr *PathError
	if !errors.As(err, &pathErr) || pathErr.Message != invalidPathMessage {
		t.Errorf("Expected the user facing message, got %v", err)
	}
}

func TestValidatePathMissingExisting(t *testing.T) {
	dir := t.TempDir()
	_, err := ValidatePath(context.Background(), filepath.Join(dir, "nope"), "", true, DefaultExt)
	if !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath, got %v", err)
	}
}

func TestValidatePathResolves(t *testing.T) {
	dir := t.TempDir()

	got, err := ValidatePath(context.Background(), "new-wallet", dir, false, DefaultExt)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "new-wallet.wal")
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	got, err = ValidatePath(context.Background(), filepath.Join(dir, "sub", "..", "other."), "", false, DefaultExt)
	if err != nil {
		t.Fatal(err)
	}
	want = filepath.Join(dir, "other.wal")
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	existing := filepath.Join(dir, "existing.wal")
	if err := os.WriteFile(existing, []byte("wallet"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = ValidatePath(context.Background(), filepath.Join(dir, "existing"), "", true, DefaultExt)
	if err != nil {
		t.Fatal(err)
	}
	if got != existing {
		t.Errorf("Expected %q, got %q", existing, got)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("Expected an absolute path, got %q", got)
	}
}

func TestValidatePathCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ValidatePath(ctx, "wallet", "", false, DefaultExt)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
