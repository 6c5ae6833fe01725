package input

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider()

	inputs, err := p.Inputs(context.Background())
	if err != nil {
		t.Fatalf("Inputs failed: %v", err)
	}

	if inputs.Card.CardNum != "4000000000002503" {
		t.Errorf("unexpected card number: %s", inputs.Card.CardNum)
	}
	if inputs.Card.CardExpiry.Month != "02" || inputs.Card.CardExpiry.Year != "2026" {
		t.Errorf("unexpected expiry: %+v", inputs.Card.CardExpiry)
	}
	if inputs.Profile.Email != "john.doe@paysafe.com" {
		t.Errorf("unexpected email: %s", inputs.Profile.Email)
	}
	if inputs.Billing.Country != "US" || inputs.Billing.State != "FL" {
		t.Errorf("unexpected billing: %+v", inputs.Billing)
	}
	if inputs.CustomerIP == "" {
		t.Error("expected a customer IP")
	}
}

func TestPromptProvider_EmptyAnswersKeepDefaults(t *testing.T) {
	// Thirteen empty lines, one per prompt.
	in := strings.NewReader(strings.Repeat("\n", 13))
	var out bytes.Buffer
	p := NewPromptProvider(in, &out)

	inputs, err := p.Inputs(context.Background())
	if err != nil {
		t.Fatalf("Inputs failed: %v", err)
	}

	defaults := Defaults()
	if inputs.Card.CardNum != defaults.Card.CardNum {
		t.Errorf("expected default card, got %s", inputs.Card.CardNum)
	}
	if !strings.Contains(out.String(), "card number") {
		t.Error("expected the card number prompt to be written")
	}
}

func TestPromptProvider_OverridesFields(t *testing.T) {
	answers := []string{
		"4111111111111111", // card number
		"12",               // expiry month
		"2030",             // expiry year
		"",                 // cvv
		"Jane Roe",         // holder name
		"Jane",             // first name
		"Roe",              // last name
		"",                 // email
		"",                 // street
		"",                 // city
		"",                 // zip
		"GB",               // country
		"",                 // state
	}
	in := strings.NewReader(strings.Join(answers, "\n") + "\n")
	var out bytes.Buffer
	p := NewPromptProvider(in, &out)

	inputs, err := p.Inputs(context.Background())
	if err != nil {
		t.Fatalf("Inputs failed: %v", err)
	}

	if inputs.Card.CardNum != "4111111111111111" {
		t.Errorf("expected override, got %s", inputs.Card.CardNum)
	}
	if inputs.Card.CardExpiry.Month != "12" || inputs.Card.CardExpiry.Year != "2030" {
		t.Errorf("expected expiry override, got %+v", inputs.Card.CardExpiry)
	}
	if inputs.Card.CVV != Defaults().Card.CVV {
		t.Errorf("expected default cvv, got %s", inputs.Card.CVV)
	}
	if inputs.Profile.FirstName != "Jane" || inputs.Profile.LastName != "Roe" {
		t.Errorf("expected profile override, got %+v", inputs.Profile)
	}
	if inputs.Billing.Country != "GB" {
		t.Errorf("expected country override, got %s", inputs.Billing.Country)
	}
}

func TestPromptProvider_EOFKeepsDefaults(t *testing.T) {
	p := NewPromptProvider(strings.NewReader(""), &bytes.Buffer{})

	inputs, err := p.Inputs(context.Background())
	if err != nil {
		t.Fatalf("Inputs failed: %v", err)
	}
	if inputs.Card.CardNum != Defaults().Card.CardNum {
		t.Errorf("expected defaults on EOF, got %s", inputs.Card.CardNum)
	}
}

func TestPromptProvider_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPromptProvider(strings.NewReader("\n"), &bytes.Buffer{})
	if _, err := p.Inputs(ctx); err == nil {
		t.Error("expected context error")
	}
}
