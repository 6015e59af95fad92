package pricing

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/amirasaad/remitquote/pkg/pricing"
)

//go:embed pricing.yaml
var pricingYAML []byte

// LoadTable loads the pricing table from a YAML file or the embedded default.
// If path is empty, it uses the embedded content.
func LoadTable(path string) (*pricing.Table, error) {
	data := pricingYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read pricing file: %w", err)
		}
		data = b
	}
	return pricing.Parse(data)
}
