package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"

	"stablestake/core/types"
	"stablestake/native/stablestake"
	"stablestake/storage/journal"
)

const testConfig = `
DataDir = %q
ChainID = 97

[Ledger]
Owner = "0x00000000000000000000000000000000000000a1"
FeesWallet = "0x00000000000000000000000000000000000000f1"
InvestmentWallet = "0x00000000000000000000000000000000000000b1"
CreateDepositFee = 50

[Auth]
HMACSecret = "ctl-secret"
Issuer = "stablestake"

[Journal]
Driver = "sqlite"
DSN = "journal.db"
`

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "stablestake.toml")
	if err := os.WriteFile(path, []byte(fmt.Sprintf(testConfig, dir)), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir, path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValidateCommand(t *testing.T) {
	_, path := writeConfig(t)
	out, _, err := execute(t, "--config", path, "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.HasPrefix(out, "ok: chain 97 (testnet)") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "validate"); err == nil {
		t.Fatalf("expected missing config to fail")
	}
}

func TestTokenCommand(t *testing.T) {
	_, path := writeConfig(t)
	out, _, err := execute(t, "--config", path, "token", "0x0000000000000000000000000000000000001111")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(out), &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte("ctl-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer("stablestake"))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	subject, _ := parsed.Claims.GetSubject()
	if subject != "0x0000000000000000000000000000000000001111" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if _, _, err := execute(t, "--config", path, "token", "alice"); err == nil {
		t.Fatalf("expected invalid address to fail")
	}
}

func TestExportCommand(t *testing.T) {
	dir, path := writeConfig(t)
	j, err := journal.Open("sqlite", filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	evt := stablestake.WrapEvent(&types.Event{
		Type:       stablestake.EventTypeDepositCreated,
		Attributes: map[string]string{"account": "0x0000000000000000000000000000000000001111", "amount": "100"},
	})
	if err := j.Append(context.Background(), evt); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = j.Close()

	out, errOut, err := execute(t, "--config", path, "export", "--format", "csv")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, stablestake.EventTypeDepositCreated) {
		t.Fatalf("export missing event: %s", out)
	}
	sum := sha256.Sum256([]byte(out))
	if !strings.Contains(errOut, "1 records, sha256 "+hex.EncodeToString(sum[:])) {
		t.Fatalf("unexpected summary %q", errOut)
	}

	target := filepath.Join(dir, "events.jsonl")
	if _, _, err := execute(t, "--config", path, "export", "--format", "jsonl", "-o", target); err != nil {
		t.Fatalf("export to file: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil || !strings.Contains(string(data), `"amount":"100"`) {
		t.Fatalf("unexpected file export %q %v", data, err)
	}
	if _, _, err := execute(t, "--config", path, "export", "--format", "xml"); err == nil {
		t.Fatalf("expected unsupported format to fail")
	}
}
