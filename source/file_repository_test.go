package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testDocument = `---
asset_ticker: FED
wallet_service_rpc_port: 31876
remote_node_list_fallback:
  - 202.182.106.252:30158
  - 213.136.89.252:30158
address_book_obfuscate_entries: true
`

func TestFileRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(testDocument), 0o600); err != nil {
		t.Fatal(err)
	}
	repo := &FileRepository{Name: "settings", Path: path}
	if err := repo.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if repo.GetName() != "settings" {
		t.Errorf("Expected name settings, got %s", repo.GetName())
	}
	if string(repo.GetRawData()) != testDocument {
		t.Errorf("Expected raw data to match the file")
	}
	ticker, ok := repo.GetData("asset_ticker")
	if !ok || ticker != "FED" {
		t.Errorf("Expected asset_ticker FED, got %v", ticker)
	}
	port, ok := repo.GetData("wallet_service_rpc_port")
	if !ok || port != 31876 {
		t.Errorf("Expected port 31876, got %v", port)
	}
	if _, ok := repo.GetData("missing"); ok {
		t.Errorf("Expected missing key not to be present")
	}
}

func TestFileRepositoryKeepsLastGoodDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(testDocument), 0o600); err != nil {
		t.Fatal(err)
	}
	repo := &FileRepository{Path: path}
	if err := repo.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("asset_ticker: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := repo.Refresh(context.Background()); err == nil {
		t.Error("Expected error for malformed yaml")
	}
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := repo.Refresh(context.Background()); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("Expected ErrEmptyDocument, got %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := repo.Refresh(context.Background()); err == nil {
		t.Error("Expected error for a missing file")
	}

	if string(repo.GetRawData()) != testDocument {
		t.Errorf("Expected the first document to survive failed refreshes")
	}
}

func TestFileRepositorySequenceDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.json")
	if err := os.WriteFile(path, []byte(`["1.2.3.4:30158"]`), 0o600); err != nil {
		t.Fatal(err)
	}
	repo := &FileRepository{Path: path}
	if err := repo.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.GetData("nodes"); ok {
		t.Errorf("Expected no keys for a sequence document")
	}
	if string(repo.GetRawData()) != `["1.2.3.4:30158"]` {
		t.Errorf("Expected raw sequence document, got %q", repo.GetRawData())
	}
}

func TestGetRawDataReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(testDocument), 0o600); err != nil {
		t.Fatal(err)
	}
	repo := &FileRepository{Path: path}
	if err := repo.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	raw := repo.GetRawData()
	for i := range raw {
		raw[i] = 'x'
	}
	if string(repo.GetRawData()) != testDocument {
		t.Errorf("Expected stored document to be unaffected by changes to a returned copy")
	}
}
