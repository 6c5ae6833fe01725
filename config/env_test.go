package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleEnv = `{
	"name": "sandbox",
	"values": [
		{"key": "base_url", "value": "https://sandbox.example.test/v1", "enabled": true},
		{"key": "public_key", "value": "cHVibGlj", "enabled": true},
		{"key": "private_key", "value": "cHJpdmF0ZQ==", "enabled": true},
		{"key": "account_id_cards_usd", "value": "acct-usd", "enabled": true},
		{"key": "account_id_cards_gbp", "value": "acct-gbp", "enabled": true},
		{"key": "account_id_cards_eur", "value": "acct-eur", "enabled": false}
	]
}`

func TestParse(t *testing.T) {
	env, err := Parse([]byte(sampleEnv))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if env.BaseURL != "https://sandbox.example.test/v1" {
		t.Errorf("unexpected base URL: %s", env.BaseURL)
	}
	if env.PublicKey != "cHVibGlj" {
		t.Errorf("unexpected public key: %s", env.PublicKey)
	}
	if env.PrivateKey != "cHJpdmF0ZQ==" {
		t.Errorf("unexpected private key: %s", env.PrivateKey)
	}

	usd, err := env.AccountID("USD")
	if err != nil || usd != "acct-usd" {
		t.Errorf("expected acct-usd, got %q (%v)", usd, err)
	}
	gbp, err := env.AccountID("gbp")
	if err != nil || gbp != "acct-gbp" {
		t.Errorf("expected case-insensitive lookup, got %q (%v)", gbp, err)
	}

	// Disabled entries are ignored.
	if _, err := env.AccountID("EUR"); err == nil {
		t.Error("expected disabled EUR account to be absent")
	}
}

func TestParse_DefaultBaseURL(t *testing.T) {
	data := `{"values": [
		{"key": "public_key", "value": "a", "enabled": true},
		{"key": "private_key", "value": "b", "enabled": true},
		{"key": "account_id_cards_usd", "value": "acct", "enabled": true}
	]}`
	env, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if env.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %s", env.BaseURL)
	}
}

func TestParse_MissingCredentials(t *testing.T) {
	cases := map[string]string{
		"no public key": `{"values": [
			{"key": "private_key", "value": "b", "enabled": true},
			{"key": "account_id_cards_usd", "value": "acct", "enabled": true}
		]}`,
		"disabled private key": `{"values": [
			{"key": "public_key", "value": "a", "enabled": true},
			{"key": "private_key", "value": "b", "enabled": false},
			{"key": "account_id_cards_usd", "value": "acct", "enabled": true}
		]}`,
		"no accounts": `{"values": [
			{"key": "public_key", "value": "a", "enabled": true},
			{"key": "private_key", "value": "b", "enabled": true}
		]}`,
	}
	for name, data := range cases {
		if _, err := Parse([]byte(data)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.json")
	if err := os.WriteFile(path, []byte(sampleEnv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	env, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	currencies := env.Currencies()
	if len(currencies) != 2 {
		t.Errorf("expected 2 currencies, got %v", currencies)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for a missing file")
	}
}
