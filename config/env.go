// Package config loads gateway credentials from a Postman-style environment
// file: a JSON document whose "values" array carries key/value pairs with an
// enabled flag. Disabled entries are ignored.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultBaseURL is the sandbox base path used when the environment file
// does not override it.
const DefaultBaseURL = "https://api.test.paysafe.com/paymenthub/v1"

// accountKeyPrefix is the key prefix for per-currency card account IDs,
// e.g. account_id_cards_usd.
const accountKeyPrefix = "account_id_cards_"

// Environment holds the resolved gateway credentials.
type Environment struct {
	// BaseURL is the gateway base path.
	BaseURL string

	// PublicKey authenticates read-only discovery calls. Pre-encoded for
	// the Basic scheme.
	PublicKey string

	// PrivateKey authenticates mutating calls and payment reads.
	// Pre-encoded for the Basic scheme.
	PrivateKey string

	// accounts maps a lowercase currency code to its card account ID.
	accounts map[string]string
}

// envFile is the on-disk shape of a Postman environment export.
type envFile struct {
	Values []envValue `json:"values"`
}

type envValue struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

// Load reads and parses an environment file.
func Load(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read environment file: %w", err)
	}
	return Parse(data)
}

// Parse parses an environment document.
func Parse(data []byte) (*Environment, error) {
	var file envFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse environment file: %w", err)
	}

	env := &Environment{
		BaseURL:  DefaultBaseURL,
		accounts: make(map[string]string),
	}
	for _, v := range file.Values {
		if !v.Enabled {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(v.Key))
		switch {
		case key == "base_url":
			env.BaseURL = v.Value
		case key == "public_key":
			env.PublicKey = v.Value
		case key == "private_key":
			env.PrivateKey = v.Value
		case strings.HasPrefix(key, accountKeyPrefix):
			currency := strings.TrimPrefix(key, accountKeyPrefix)
			env.accounts[currency] = v.Value
		}
	}

	if err := env.validate(); err != nil {
		return nil, err
	}
	return env, nil
}

func (e *Environment) validate() error {
	if e.PublicKey == "" {
		return fmt.Errorf("environment file: public_key missing or disabled")
	}
	if e.PrivateKey == "" {
		return fmt.Errorf("environment file: private_key missing or disabled")
	}
	if len(e.accounts) == 0 {
		return fmt.Errorf("environment file: no %s* entries", accountKeyPrefix)
	}
	return nil
}

// AccountID returns the card account for a currency.
func (e *Environment) AccountID(currency string) (string, error) {
	account, ok := e.accounts[strings.ToLower(currency)]
	if !ok {
		return "", fmt.Errorf("environment file: no card account for currency %s", currency)
	}
	return account, nil
}

// Currencies returns the currencies the environment carries an account for.
func (e *Environment) Currencies() []string {
	currencies := make([]string, 0, len(e.accounts))
	for currency := range e.accounts {
		currencies = append(currencies, strings.ToUpper(currency))
	}
	return currencies
}
