package coverage

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// keyAliases maps a squashed (lowercase, no separators) field name to its
// canonical key.
var keyAliases = map[string]string{
	"bodilyinjury":          KeyBodilyInjury,
	"bi":                    KeyBodilyInjury,
	"bodilyinjuryliability": KeyBodilyInjury,
	"bodilyinjurylimit":     KeyBodilyInjury,
	"bodilyinjurycoverage":  KeyBodilyInjury,

	"propertydamage":          KeyPropertyDamage,
	"pd":                      KeyPropertyDamage,
	"propertydamageliability": KeyPropertyDamage,
	"propertydamagelimit":     KeyPropertyDamage,
	"propertydamagecoverage":  KeyPropertyDamage,

	"uninsuredmotorist":              KeyUninsuredMotorist,
	"um":                             KeyUninsuredMotorist,
	"uninsuredmotorists":             KeyUninsuredMotorist,
	"uninsuredmotoristcoverage":      KeyUninsuredMotorist,
	"uninsuredmotoristbodilyinjury":  KeyUninsuredMotorist,
	"uninsuredunderinsuredmotorist":  KeyUninsuredMotorist,
	"uninsuredmotoristsbodilyinjury": KeyUninsuredMotorist,

	"comprehensivedeductible": KeyComprehensiveDeductible,
	"comprehensive":           KeyComprehensiveDeductible,
	"comp":                    KeyComprehensiveDeductible,
	"compdeductible":          KeyComprehensiveDeductible,
	"otherthancollision":      KeyComprehensiveDeductible,

	"collisiondeductible": KeyCollisionDeductible,
	"collision":           KeyCollisionDeductible,
	"coll":                KeyCollisionDeductible,

	"personalinjuryprotection": KeyPersonalInjuryProtection,
	"pip":                      KeyPersonalInjuryProtection,

	"medicalpayments":         KeyMedicalPayments,
	"medicalpayment":          KeyMedicalPayments,
	"medpay":                  KeyMedicalPayments,
	"medpayments":             KeyMedicalPayments,
	"medicalpaymentscoverage": KeyMedicalPayments,

	"rentalreimbursement":   KeyRentalReimbursement,
	"rental":                KeyRentalReimbursement,
	"rentalcar":             KeyRentalReimbursement,
	"transportationexpense": KeyRentalReimbursement,

	"drivers":  KeyDrivers,
	"driver":   KeyDrivers,
	"vehicles": KeyVehicles,
	"vehicle":  KeyVehicles,

	"perperson":     KeyPerPerson,
	"eachperson":    KeyPerPerson,
	"peraccident":   KeyPerAccident,
	"eachaccident":  KeyPerAccident,
	"peroccurrence": KeyPerAccident,
	"perday":        KeyPerDay,
	"eachday":       KeyPerDay,
	"daily":         KeyPerDay,
	"maxdays":       KeyMaxDays,
	"maximumdays":   KeyMaxDays,

	"firstname":         KeyFirstName,
	"lastname":          KeyLastName,
	"year":              KeyYear,
	"make":              KeyMake,
	"model":             KeyModel,
	"vin":               KeyVIN,
	"garagingzip":       KeyGaragingZIP,
	"garagingzipcode":   KeyGaragingZIP,
	"zip":               KeyGaragingZIP,
	"zipcode":           KeyGaragingZIP,
	"primaryuse":        KeyPrimaryUse,
	"annualmiles":       KeyAnnualMiles,
	"annualmileage":     KeyAnnualMiles,
	"ownershiplength":   KeyOwnershipLength,
	"lengthofownership": KeyOwnershipLength,
}

// wrapperKeys are single-key object wrappers that get replaced by their value.
var wrapperKeys = map[string]struct{}{
	"value":      {},
	"amount":     {},
	"limit":      {},
	"coverage":   {},
	"deductible": {},
}

// NormalizeKey maps an arbitrary field name to its canonical form. Unknown
// names only get their first character upper-cased.
func NormalizeKey(key string) string {
	squashed := strings.ToLower(strings.NewReplacer("_", "", " ", "", "-", "").Replace(key))
	if canon, ok := keyAliases[squashed]; ok {
		return canon
	}
	return upperFirst(key)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// flattenWrappers replaces nested {"amount": x}-style objects by x. Children
// are flattened first so stacked wrappers collapse fully.
func flattenWrappers(n Node) Node {
	switch t := n.(type) {
	case Object:
		out := make(Object, 0, len(t))
		for _, m := range t {
			out = append(out, Member{Key: m.Key, Value: unwrap(flattenWrappers(m.Value))})
		}
		return out
	case List:
		out := make(List, 0, len(t))
		for _, v := range t {
			out = append(out, unwrap(flattenWrappers(v)))
		}
		return out
	default:
		return n
	}
}

func unwrap(n Node) Node {
	obj, ok := n.(Object)
	if !ok || len(obj) != 1 {
		return n
	}
	if _, ok := wrapperKeys[strings.ToLower(obj[0].Key)]; !ok {
		return n
	}
	return obj[0].Value
}

// normalizeKeys rewrites every object key to its canonical form. When two
// keys collapse to the same name the later value wins.
func normalizeKeys(n Node) Node {
	switch t := n.(type) {
	case Object:
		out := make(Object, 0, len(t))
		for _, m := range t {
			out = out.Set(NormalizeKey(m.Key), normalizeKeys(m.Value))
		}
		return out
	case List:
		out := make(List, 0, len(t))
		for _, v := range t {
			out = append(out, normalizeKeys(v))
		}
		return out
	default:
		return n
	}
}
