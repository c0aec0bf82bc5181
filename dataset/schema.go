package dataset

import (
	"fmt"
	"strings"
	"unicode"
)

// Schema names the features of each record. The zero Schema accepts any
// dimensionality, fixed by the first record.
type Schema struct {
	Name   string
	Fields []string
}

var (
	// PurchaseSchema describes purchase-history records.
	PurchaseSchema = Schema{
		Name: "purchase",
		Fields: []string{
			"firstPurchaseDate",
			"lastPurchaseDate",
			"totalOrders",
			"totalQuantity",
			"averagePurchasePrice",
		},
	}

	// DemographicSchema describes demographic records.
	DemographicSchema = Schema{
		Name:   "demographic",
		Fields: []string{"age", "income", "spendingScore", "frequency"},
	}
)

// Dim returns the number of fields, or 0 for a free schema.
func (s Schema) Dim() int { return len(s.Fields) }

// IsZero reports whether s places no constraint on records.
func (s Schema) IsZero() bool { return len(s.Fields) == 0 }

// FieldName returns the name of feature i, or "f<i>" when unnamed.
func (s Schema) FieldName(i int) string {
	if i < len(s.Fields) {
		return s.Fields[i]
	}
	return fmt.Sprintf("f%d", i)
}

// ParseSchema resolves a schema by name. The empty string and "none" yield
// the zero Schema.
func ParseSchema(name string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "free":
		return Schema{}, nil
	case PurchaseSchema.Name:
		return PurchaseSchema, nil
	case DemographicSchema.Name:
		return DemographicSchema, nil
	default:
		return Schema{}, fmt.Errorf("unknown schema %q", name)
	}
}

// normalize folds a column name so "spending_score", "Spending Score" and
// "spendingScore" compare equal.
func normalize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
