package mock

import "github.com/fwojciec/webqa"

var _ webqa.Converter = (*Converter)(nil)

// Converter is a mock implementation of webqa.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
