package util

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator compares strings the way a Brazilian Portuguese reader orders them:
// accents and case only break ties between otherwise equal strings.
type Collator struct {
	mu sync.Mutex
	c  *collate.Collator
}

func NewCollator() *Collator {
	return &Collator{c: collate.New(language.BrazilianPortuguese)}
}

func (c *Collator) Compare(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c.CompareString(a, b)
}

var (
	defaultCollator     *Collator
	defaultCollatorOnce sync.Once
)

// CompareLocale compares with the shared pt-BR collator.
func CompareLocale(a, b string) int {
	defaultCollatorOnce.Do(func() { defaultCollator = NewCollator() })
	return defaultCollator.Compare(a, b)
}
