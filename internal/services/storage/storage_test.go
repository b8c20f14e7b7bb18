package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	testFile := filepath.Join(dir, "ledger.csv")
	original := []byte("Date,Customer,Number,Type,Amount,Matching\n2024-01-05,Al Noor Trading,SAL-2024-001,invoice,1500.00,alnoor-jan\n")

	if err := store.WriteFile(testFile, original, 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	read, err := store.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch before encryption")
	}

	passphrase := "collections2024"
	if err := store.EnableEncryption(passphrase); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	if !store.IsEncrypted() {
		t.Error("Expected IsEncrypted() to return true")
	}

	rawData, _ := os.ReadFile(testFile)
	if !isAgeEncrypted(rawData) {
		t.Error("File should be encrypted on disk")
	}

	read, err = store.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read encrypted file: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch after encryption: got %q, want %q", string(read), string(original))
	}

	store.Lock()
	if _, err := store.ReadFile(testFile); err == nil {
		t.Error("Expected read to fail while locked")
	}

	if err := store.Unlock(passphrase); err != nil {
		t.Fatalf("Failed to unlock: %v", err)
	}

	read, err = store.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read after unlock: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch after unlock")
	}

	if err := store.DisableEncryption(passphrase); err != nil {
		t.Fatalf("Failed to disable encryption: %v", err)
	}

	if store.IsEncrypted() {
		t.Error("Expected IsEncrypted() to return false after disable")
	}

	rawData, _ = os.ReadFile(testFile)
	if isAgeEncrypted(rawData) {
		t.Error("File should be decrypted on disk")
	}
	if string(rawData) != string(original) {
		t.Errorf("Raw content mismatch after decryption")
	}
}

func TestUnlockWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	testFile := filepath.Join(dir, "sales.csv")
	if err := store.WriteFile(testFile, []byte("Date,Number,Customer,Amount\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := store.EnableEncryption("rightpassphrase"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	store.Lock()
	if err := store.Unlock("wrongpassphrase"); err == nil {
		t.Error("Expected unlock to fail with wrong passphrase")
	}
	if store.IsUnlocked() {
		t.Error("Store should remain locked after failed unlock")
	}
}

func TestWriteEncryptsWhenUnlocked(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.EnableEncryption("stockroom123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	path := filepath.Join(dir, "transactions.csv")
	content := []byte("ID,Date,SKU,Warehouse,Type,Pieces\n")
	if err := store.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	raw, _ := os.ReadFile(path)
	if !isAgeEncrypted(raw) {
		t.Error("New file should be written encrypted")
	}

	read, err := store.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	if string(read) != string(content) {
		t.Errorf("Roundtrip mismatch: got %q, want %q", string(read), string(content))
	}
}
