package taxinvoice

import (
	"fmt"
	"strings"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// FieldName identifies an editable field of a tax invoice
type FieldName string

const (
	FieldDocumentNumber  FieldName = "nomor_faktur"          // Tax document number (DDD.DDD-DD.DDDDDDDD)
	FieldTaxDate         FieldName = "tanggal_faktur"        // Tax document date
	FieldTotalSalePrice  FieldName = "total_harga_jual"      // Total sale price
	FieldDiscount        FieldName = "potongan_harga"        // Price discount
	FieldDownPayment     FieldName = "uang_muka"             // Down payment received
	FieldTaxBase         FieldName = "dasar_pengenaan_pajak" // DPP, derived
	FieldVATPercentage   FieldName = "ppn_percentage"        // PPN rate in percent
	FieldVATAmount       FieldName = "ppn_rp"                // PPN amount, derived
	FieldLuxuryTaxAmount FieldName = "ppnbm_rp"              // PPnBM amount
	FieldNotes           FieldName = "keterangan"            // Free-form remark
)

// String returns the string representation of FieldName
func (n FieldName) String() string {
	return string(n)
}

// FieldKind describes how a raw field value is interpreted
type FieldKind string

const (
	FieldKindText       FieldKind = "TEXT"
	FieldKindMoney      FieldKind = "MONEY"
	FieldKindPercentage FieldKind = "PERCENTAGE"
	FieldKindDate       FieldKind = "DATE"
)

// IsNumeric reports whether values of this kind are parsed as numbers
func (k FieldKind) IsNumeric() bool {
	return k == FieldKindMoney || k == FieldKindPercentage
}

// FieldSpec declares one field of the editable document
type FieldSpec struct {
	Name     FieldName
	Label    string
	Kind     FieldKind
	Required bool
}

// Field is a named slot in the document under edit
type Field struct {
	Name    FieldName `json:"name"`
	Value   string    `json:"value"`
	Touched bool      `json:"touched"`
}

// Schema is the ordered set of fields a document carries
type Schema struct {
	specs []FieldSpec
	index map[FieldName]int
}

// NewSchema creates a schema. Duplicate names are a programming error.
func NewSchema(specs ...FieldSpec) *Schema {
	s := &Schema{
		specs: make([]FieldSpec, 0, len(specs)),
		index: make(map[FieldName]int, len(specs)),
	}
	for _, spec := range specs {
		if _, dup := s.index[spec.Name]; dup {
			panic(fmt.Sprintf("taxinvoice: duplicate field %q in schema", spec.Name))
		}
		s.index[spec.Name] = len(s.specs)
		s.specs = append(s.specs, spec)
	}
	return s
}

// Specs returns the field specs in declared order
func (s *Schema) Specs() []FieldSpec {
	out := make([]FieldSpec, len(s.specs))
	copy(out, s.specs)
	return out
}

// Has reports whether name is declared
func (s *Schema) Has(name FieldName) bool {
	_, ok := s.index[name]
	return ok
}

// Spec returns the spec for name, panicking on unknown names
func (s *Schema) Spec(name FieldName) FieldSpec {
	i, ok := s.index[name]
	if !ok {
		panic(fmt.Sprintf("taxinvoice: unknown field %q", name))
	}
	return s.specs[i]
}

// Lookup resolves an externally supplied field name.
// Unlike Spec it returns a recoverable error, for use at the request boundary.
func (s *Schema) Lookup(raw string) (FieldName, error) {
	name := FieldName(strings.TrimSpace(raw))
	if !s.Has(name) {
		return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown field: %s", raw))
	}
	return name, nil
}

// DefaultSchema is the field layout of the Faktur Pajak editor
func DefaultSchema() *Schema {
	return NewSchema(
		FieldSpec{Name: FieldDocumentNumber, Label: "Nomor Faktur", Kind: FieldKindText, Required: true},
		FieldSpec{Name: FieldTaxDate, Label: "Tanggal Faktur", Kind: FieldKindDate, Required: true},
		FieldSpec{Name: FieldTotalSalePrice, Label: "Total Harga Jual", Kind: FieldKindMoney, Required: true},
		FieldSpec{Name: FieldDiscount, Label: "Potongan Harga", Kind: FieldKindMoney},
		FieldSpec{Name: FieldDownPayment, Label: "Uang Muka", Kind: FieldKindMoney},
		FieldSpec{Name: FieldTaxBase, Label: "Dasar Pengenaan Pajak", Kind: FieldKindMoney, Required: true},
		FieldSpec{Name: FieldVATPercentage, Label: "PPN (%)", Kind: FieldKindPercentage, Required: true},
		FieldSpec{Name: FieldVATAmount, Label: "PPN (Rp)", Kind: FieldKindMoney, Required: true},
		FieldSpec{Name: FieldLuxuryTaxAmount, Label: "PPnBM (Rp)", Kind: FieldKindMoney},
		FieldSpec{Name: FieldNotes, Label: "Keterangan", Kind: FieldKindText},
	)
}

// ParseAmount parses a raw numeric field value.
// Blank or unparsable input reports ok=false: the value is missing, not zero.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "%")
	m, err := valueobject.ParseMoneyIDR(s)
	if err != nil {
		return decimal.Zero, false
	}
	return m.Amount(), true
}

// IsBlank reports whether a raw value is empty after trimming
func IsBlank(raw string) bool {
	return strings.TrimSpace(raw) == ""
}
