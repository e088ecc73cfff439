package cta

import "strings"

const DefaultVariant = "default"

type Block struct {
	Variant     string `json:"variant"`
	Heading     string `json:"heading"`
	Body        string `json:"body"`
	ButtonLabel string `json:"buttonLabel"`
	Href        string `json:"href"`
}

// Catalog maps variant ids to CTA content.
type Catalog map[string]Block

func DefaultCatalog() Catalog {
	return Catalog{
		DefaultVariant: {
			Variant:     DefaultVariant,
			Heading:     "Ready to get started?",
			Body:        "Tell us about your project and we will get back to you within one business day.",
			ButtonLabel: "Contact us",
			Href:        "/contact",
		},
		"services": {
			Variant:     "services",
			Heading:     "See how we can help",
			Body:        "Browse the services we offer and find the right fit for your team.",
			ButtonLabel: "View services",
			Href:        "/services",
		},
		"newsletter": {
			Variant:     "newsletter",
			Heading:     "Enjoyed this post?",
			Body:        "Get new articles in your inbox. No spam, unsubscribe any time.",
			ButtonLabel: "Subscribe",
			Href:        "/newsletter",
		},
	}
}

// Resolve returns the block for variant, or the default block when the
// variant is empty or unknown.
func (c Catalog) Resolve(variant string) Block {
	if b, ok := c[strings.ToLower(strings.TrimSpace(variant))]; ok {
		return b
	}
	return c[DefaultVariant]
}
