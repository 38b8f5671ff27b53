package coverage

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reDollar = regexp.MustCompile(`\$([\d,]+)`)
	reRental = regexp.MustCompile(`(?i)\$([\d,]+) each day/maximum (\d+) days`)
)

// fieldRule is one branch of the per-line dispatch. Rules are evaluated in
// order and the first whose match reports true owns the line, even when its
// extractor finds nothing usable.
type fieldRule struct {
	name    string
	match   func(a *accumulator, lower string) bool
	extract func(a *accumulator, line string)
}

var fieldRules = []fieldRule{
	{
		name: KeyBodilyInjury,
		match: func(a *accumulator, l string) bool {
			return a.bodilyInjury == nil && strings.Contains(l, "bodily injury")
		},
		extract: func(a *accumulator, line string) {
			a.bodilyInjury = splitLimit(line)
		},
	},
	{
		name: KeyPropertyDamage,
		match: func(a *accumulator, l string) bool {
			return a.propertyDamage == nil && strings.Contains(l, "property damage")
		},
		extract: func(a *accumulator, line string) {
			a.propertyDamage = firstAmount(line)
		},
	},
	{
		name: KeyUninsuredMotorist,
		match: func(a *accumulator, l string) bool {
			return a.uninsuredMotorist == nil && strings.Contains(l, "uninsured") && strings.Contains(l, "motorist")
		},
		extract: func(a *accumulator, line string) {
			a.uninsuredMotorist = splitLimit(line)
		},
	},
	{
		name: KeyComprehensiveDeductible,
		match: func(a *accumulator, l string) bool {
			return a.comprehensive == nil && strings.Contains(l, "comprehensive")
		},
		extract: func(a *accumulator, line string) {
			a.comprehensive = firstAmount(line)
		},
	},
	{
		name: KeyCollisionDeductible,
		match: func(a *accumulator, l string) bool {
			return a.collision == nil && strings.Contains(l, "collision")
		},
		extract: func(a *accumulator, line string) {
			a.collision = firstAmount(line)
		},
	},
	{
		name: KeyPersonalInjuryProtection,
		match: func(_ *accumulator, l string) bool {
			return strings.Contains(l, "personal injury protection")
		},
		extract: func(a *accumulator, line string) {
			if v := firstAmount(line); v != nil {
				a.pip = v
			}
		},
	},
	{
		name: KeyMedicalPayments,
		match: func(_ *accumulator, l string) bool {
			return strings.Contains(l, "medical payment") || strings.Contains(l, "medpay")
		},
		extract: func(a *accumulator, line string) {
			if v := firstAmount(line); v != nil {
				a.medicalPayments = v
			}
		},
	},
	{
		name: KeyRentalReimbursement,
		match: func(_ *accumulator, l string) bool {
			return strings.Contains(l, "rental reimbursement")
		},
		extract: func(a *accumulator, line string) {
			if r := rentalLimit(line); r != nil {
				a.rental = r
			}
		},
	},
}

// matchFields runs the field rules over every line once.
func matchFields(lines []string, a *accumulator) {
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, r := range fieldRules {
			if r.match(a, lower) {
				r.extract(a, line)
				break
			}
		}
	}
}

// dollarAmounts returns every "$1,234" token on the line with commas removed.
// Tokens that do not parse (e.g. "$,") are dropped.
func dollarAmounts(line string) []int64 {
	var out []int64
	for _, m := range reDollar.FindAllStringSubmatch(line, -1) {
		if v, ok := parseAmount(m[1]); ok {
			out = append(out, v)
		}
	}
	return out
}

func parseAmount(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func firstAmount(line string) *int64 {
	amts := dollarAmounts(line)
	if len(amts) == 0 {
		return nil
	}
	v := Round100(amts[0])
	return &v
}

func splitLimit(line string) *SplitLimit {
	amts := dollarAmounts(line)
	if len(amts) < 2 {
		return nil
	}
	return &SplitLimit{
		PerPerson:   Round100(amts[0]),
		PerAccident: Round100(amts[1]),
	}
}

func rentalLimit(line string) *RentalLimit {
	m := reRental.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	perDay, ok := parseAmount(m[1])
	if !ok {
		return nil
	}
	days, ok := parseAmount(m[2])
	if !ok {
		return nil
	}
	return &RentalLimit{PerDay: perDay, MaxDays: days}
}
