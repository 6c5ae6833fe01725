// Package input supplies the tokenization inputs of a run: card, customer
// profile, and billing address. The static provider carries the sandbox's
// published test card; the prompt provider lets an operator override any
// field interactively.
package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"payconf/gateway"
)

// Inputs bundles everything the payment handle needs beyond the session.
type Inputs struct {
	Card       gateway.Card
	Profile    gateway.Profile
	Billing    gateway.BillingDetails
	CustomerIP string
}

// Provider yields the tokenization inputs for a run.
type Provider interface {
	// Inputs returns the card, profile, and billing details to tokenize.
	Inputs(ctx context.Context) (*Inputs, error)
}

// Defaults returns the sandbox test inputs: a published simulator card and a
// fixed customer identity.
func Defaults() *Inputs {
	return &Inputs{
		Card: gateway.Card{
			CardNum:    "4000000000002503",
			CardExpiry: gateway.CardExpiry{Month: "02", Year: "2026"},
			CVV:        "111",
			HolderName: "John Doe",
		},
		Profile: gateway.Profile{
			FirstName: "John",
			LastName:  "Doe",
			Email:     "john.doe@paysafe.com",
		},
		Billing: gateway.BillingDetails{
			NickName: "Home",
			Street:   "5335 Gate Pkwy",
			City:     "Jacksonville",
			Zip:      "32256",
			Country:  "US",
			State:    "FL",
		},
		CustomerIP: "172.0.0.1",
	}
}

// StaticProvider always returns the sandbox defaults.
type StaticProvider struct{}

var _ Provider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider of the fixed sandbox inputs.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

// Inputs returns the sandbox defaults.
func (p *StaticProvider) Inputs(_ context.Context) (*Inputs, error) {
	return Defaults(), nil
}

// PromptProvider asks the operator for each field, using the sandbox default
// when the answer is empty.
type PromptProvider struct {
	in  *bufio.Reader
	out io.Writer
}

var _ Provider = (*PromptProvider)(nil)

// NewPromptProvider creates an interactive provider over the given streams.
func NewPromptProvider(in io.Reader, out io.Writer) *PromptProvider {
	return &PromptProvider{in: bufio.NewReader(in), out: out}
}

// Inputs prompts for each tokenization field.
func (p *PromptProvider) Inputs(ctx context.Context) (*Inputs, error) {
	inputs := Defaults()

	prompts := []struct {
		label string
		field *string
	}{
		{"card number", &inputs.Card.CardNum},
		{"expiry month", &inputs.Card.CardExpiry.Month},
		{"expiry year", &inputs.Card.CardExpiry.Year},
		{"cvv", &inputs.Card.CVV},
		{"holder name", &inputs.Card.HolderName},
		{"first name", &inputs.Profile.FirstName},
		{"last name", &inputs.Profile.LastName},
		{"email", &inputs.Profile.Email},
		{"street", &inputs.Billing.Street},
		{"city", &inputs.Billing.City},
		{"zip", &inputs.Billing.Zip},
		{"country", &inputs.Billing.Country},
		{"state", &inputs.Billing.State},
	}

	for _, prompt := range prompts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		answer, err := p.ask(prompt.label, *prompt.field)
		if err != nil {
			return nil, err
		}
		if answer != "" {
			*prompt.field = answer
		}
	}

	return inputs, nil
}

func (p *PromptProvider) ask(label, fallback string) (string, error) {
	fmt.Fprintf(p.out, "%s [%s]: ", label, fallback)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimSpace(line), nil
}
