package taxinvoice

import (
	"github.com/erp/taxinvoice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Operand is one input of a formula. Present is false for blank or unparsable values.
type Operand struct {
	Value   decimal.Decimal
	Present bool
}

// Formula computes a derived value from operands given in DerivationRule.Inputs order.
// ok=false means the inputs are insufficient and the target must be cleared.
type Formula func(in []Operand) (value decimal.Decimal, ok bool)

// DerivationRule describes how one derived field is computed
type DerivationRule struct {
	Target  FieldName
	Inputs  []FieldName
	Formula Formula
}

// TaxBaseRule computes DPP = max(total_harga_jual - potongan_harga, 0).
// Cleared only when both inputs are blank; a single blank input counts as zero.
func TaxBaseRule() DerivationRule {
	return DerivationRule{
		Target: FieldTaxBase,
		Inputs: []FieldName{FieldTotalSalePrice, FieldDiscount},
		Formula: func(in []Operand) (decimal.Decimal, bool) {
			total, discount := in[0], in[1]
			if !total.Present && !discount.Present {
				return decimal.Zero, false
			}
			base := valueobject.NewMoneyIDR(total.Value).
				MustSubtract(valueobject.NewMoneyIDR(discount.Value)).
				NonNegative().
				RoundToUnit()
			return base.Amount(), true
		},
	}
}

// VATAmountRule computes PPN = DPP * ppn_percentage / 100.
// Cleared when either input is blank.
func VATAmountRule() DerivationRule {
	return DerivationRule{
		Target: FieldVATAmount,
		Inputs: []FieldName{FieldTaxBase, FieldVATPercentage},
		Formula: func(in []Operand) (decimal.Decimal, bool) {
			base, rate := in[0], in[1]
			if !base.Present || !rate.Present {
				return decimal.Zero, false
			}
			vat := valueobject.NewMoneyIDR(base.Value).ApplyRate(rate.Value).RoundToUnit()
			return vat.Amount(), true
		},
	}
}

// DefaultRules returns the Faktur Pajak derivation rules in evaluation order
func DefaultRules() []DerivationRule {
	return []DerivationRule{
		TaxBaseRule(),
		VATAmountRule(),
	}
}
