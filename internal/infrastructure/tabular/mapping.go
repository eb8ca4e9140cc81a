package tabular

import (
	"fmt"
	"strings"
)

// NormalizeHeader lowercases a header and folds spaces, dashes and dots
// into underscores, so "Amount Paid" and "amount-paid" compare equal.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(h)
	for strings.Contains(h, "__") {
		h = strings.ReplaceAll(h, "__", "_")
	}
	return strings.Trim(h, "_")
}

// Remap rekeys every row by canonical field name.
//
// explicit maps a canonical field to a source header and wins over
// aliases, which map a canonical field to header spellings tried after the
// field name itself. Fields that match no column are left out of the rows.
func Remap(table *Table, fields []string, explicit map[string]string, aliases map[string][]string) (map[string]string, error) {
	byNorm := make(map[string]string, len(table.Headers))
	for _, h := range table.Headers {
		if h != "" {
			byNorm[NormalizeHeader(h)] = h
		}
	}

	resolved := make(map[string]string, len(fields))
	for _, field := range fields {
		if src, ok := explicit[field]; ok && src != "" {
			h, found := byNorm[NormalizeHeader(src)]
			if !found {
				return nil, fmt.Errorf("mapped column %q for %s not found in file", src, field)
			}
			resolved[field] = h
			continue
		}
		candidates := append([]string{field}, aliases[field]...)
		for _, c := range candidates {
			if h, found := byNorm[NormalizeHeader(c)]; found {
				resolved[field] = h
				break
			}
		}
	}

	for _, row := range table.Rows {
		data := make(map[string]string, len(resolved))
		for field, h := range resolved {
			data[field] = row.Data[h]
		}
		row.Data = data
	}
	return resolved, nil
}
