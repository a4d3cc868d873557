package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notabhay/ghibligroceries/internal/domain"
)

// enhancedQuery builds the mode-dependent filter and rank ladder for
// AI-enhanced search, returning the statement and its positional args.
//
// The rank ladder is identical in both modes: exact name match to the
// corrected query, name contains corrected query, name contains each
// keyword in list order, description contains corrected query, description
// contains each keyword in list order, else lowest tier. Ties within a
// tier break on name.
func enhancedQuery(p domain.EnhancedParams, limit int) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	contains := func(s string) string { return "%" + s + "%" }

	b.WriteString(productSelect)
	b.WriteString(" WHERE ")

	if len(p.Categories) > 0 {
		// Category-constrained mode: the filter is category membership
		// only. Keywords never narrow the result set here, they just rank.
		conds := make([]string, 0, len(p.Categories))
		for _, name := range p.Categories {
			conds = append(conds, "c.category_name ILIKE "+arg(contains(name)))
		}
		b.WriteString("(" + strings.Join(conds, " OR ") + ")")
	} else {
		// Keyword-fallback mode: corrected query and keywords form the
		// filter over both name and description.
		var conds []string
		if p.CorrectedQuery != "" {
			conds = append(conds,
				"p.name ILIKE "+arg(contains(p.CorrectedQuery)),
				"p.description ILIKE "+arg(contains(p.CorrectedQuery)),
			)
		}
		for _, kw := range p.Keywords {
			if kw == "" {
				continue
			}
			conds = append(conds,
				"p.name ILIKE "+arg(contains(kw)),
				"p.description ILIKE "+arg(contains(kw)),
			)
		}
		if len(conds) == 0 {
			// Callers guard against fully empty params; this keeps the
			// statement valid if only blank keywords slipped through.
			conds = append(conds, "1=0")
		}
		b.WriteString("(" + strings.Join(conds, " OR ") + ")")
	}

	b.WriteString(" ORDER BY CASE")
	tier := 1
	when := func(cond string) {
		fmt.Fprintf(&b, " WHEN %s THEN %d", cond, tier)
		tier++
	}

	if p.CorrectedQuery != "" {
		when("lower(p.name) = lower(" + arg(p.CorrectedQuery) + ")")
		when("p.name ILIKE " + arg(contains(p.CorrectedQuery)))
	}
	for _, kw := range p.Keywords {
		if kw == "" {
			continue
		}
		when("p.name ILIKE " + arg(contains(kw)))
	}
	if p.CorrectedQuery != "" {
		when("p.description ILIKE " + arg(contains(p.CorrectedQuery)))
	}
	for _, kw := range p.Keywords {
		if kw == "" {
			continue
		}
		when("p.description ILIKE " + arg(contains(kw)))
	}

	fmt.Fprintf(&b, " ELSE %d END, p.name ASC LIMIT %s", tier, arg(limit))

	return b.String(), args
}
