package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/cartsaver/backend/internal/domain"
)

// TextBuilder produces a deterministic French recap of a comparison. It is
// both the default generator and the fallback when the LLM client fails.
type TextBuilder struct{}

// NewTextBuilder creates a new deterministic summary builder
func NewTextBuilder() *TextBuilder {
	return &TextBuilder{}
}

// Generate builds the recap text. It never fails.
func (b *TextBuilder) Generate(_ context.Context, s *domain.ComparisonSummary) (string, error) {
	if s == nil || len(s.StoreTotals) == 0 {
		return "Aucun produit de votre liste n'a pu être trouvé dans les circulaires en cours.", nil
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Le panier revient moins cher chez %s (%.2f $).",
		s.BestStore, s.StoreTotals[s.BestStore])

	if s.TotalSavings > 0 {
		fmt.Fprintf(&sb, " Économie possible de %.2f $ (%.1f %%) par rapport au magasin le plus cher.",
			s.TotalSavings, s.SavingsPercentage)
	}

	total := len(s.Products)
	found := total - len(s.MissingProducts)
	if total > 0 {
		fmt.Fprintf(&sb, " %d produit(s) sur %d trouvé(s).", found, total)
	}

	if len(s.MissingProducts) > 0 {
		fmt.Fprintf(&sb, " Introuvables : %s.", strings.Join(s.MissingProducts, ", "))
	}

	return sb.String(), nil
}
