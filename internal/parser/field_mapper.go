package parser

import "github.com/srininfo19-png/Salesdashboard-GRT/internal/model"

// FieldAliases maps each canonical field to the header spellings seen in exports from
// the billing system, in priority order.
var FieldAliases = map[string][]string{
	model.KeySalesmanCode:   {"SalesmanCode", "Salesman Code", "SALEMANCO", "Code", "Staff Code", "EmpID"},
	model.KeySalesmanName:   {"SalesmanName", "Salesman Name", "SALESMANNAME", "Name", "Staff Name"},
	model.KeyShowRoom:       {"ShowRoom", "Showroom", "Show Room", "Branch"},
	model.KeyBillMo:         {"BillMo", "Bill Month", "BillMonth", "Month", "Date"},
	model.KeyCounter:        {"Counter", "Count", "Department"},
	model.KeyTotalSales:     {"TotalSales", "Total Sales", "TotalSale", "Total Sale", "Sales", "Net Sales"},
	model.KeyCrossSales:     {"CrossSales", "Cross Sales", "CrossSale", "Cross Sale"},
	model.KeyTrainingStatus: {"TrainingStatus", "Training Status", "Training", "Status"},
}

// FieldMapper resolves sheet headers to canonical fields
type FieldMapper struct {
	aliases map[string][]string
}

// NewFieldMapper builds a mapper over the default header aliases
func NewFieldMapper() *FieldMapper {
	return &FieldMapper{aliases: FieldAliases}
}

// Map returns the column index per canonical field. An exact alias match wins over a
// case- and space-insensitive one; aliases are tried in order within each pass.
func (m *FieldMapper) Map(headers []string) (map[string]int, []FieldMapping) {
	exact := make(map[string]int, len(headers))
	folded := make(map[string]int, len(headers))
	for i, h := range headers {
		h = NormalizeColumnName(h)
		if h == "" {
			continue
		}
		if _, ok := exact[h]; !ok {
			exact[h] = i
		}
		f := FoldColumnName(h)
		if _, ok := folded[f]; !ok {
			folded[f] = i
		}
	}

	indexes := make(map[string]int, len(model.CanonicalKeys))
	var mappings []FieldMapping
	for _, field := range model.CanonicalKeys {
		idx, ok := m.resolve(field, exact, folded)
		if !ok {
			continue
		}
		indexes[field] = idx
		mappings = append(mappings, FieldMapping{
			ColumnIndex: idx,
			ColumnName:  NormalizeColumnName(headers[idx]),
			Field:       field,
		})
	}
	return indexes, mappings
}

func (m *FieldMapper) resolve(field string, exact, folded map[string]int) (int, bool) {
	aliases := m.aliases[field]
	for _, a := range aliases {
		if idx, ok := exact[a]; ok {
			return idx, true
		}
	}
	for _, a := range aliases {
		if idx, ok := folded[FoldColumnName(a)]; ok {
			return idx, true
		}
	}
	return 0, false
}
