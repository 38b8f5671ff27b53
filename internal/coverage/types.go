// Package coverage turns declaration-page text into normalized coverage fields.
package coverage

// Canonical result keys.
const (
	KeyBodilyInjury             = "BodilyInjury"
	KeyPropertyDamage           = "PropertyDamage"
	KeyUninsuredMotorist        = "UninsuredMotorist"
	KeyComprehensiveDeductible  = "ComprehensiveDeductible"
	KeyCollisionDeductible      = "CollisionDeductible"
	KeyPersonalInjuryProtection = "PersonalInjuryProtection"
	KeyMedicalPayments          = "MedicalPayments"
	KeyRentalReimbursement      = "RentalReimbursement"
	KeyDrivers                  = "Drivers"
	KeyVehicles                 = "Vehicles"

	KeyPerPerson   = "PerPerson"
	KeyPerAccident = "PerAccident"
	KeyPerDay      = "PerDay"
	KeyMaxDays     = "MaxDays"

	KeyFirstName       = "FirstName"
	KeyLastName        = "LastName"
	KeyYear            = "Year"
	KeyMake            = "Make"
	KeyModel           = "Model"
	KeyVIN             = "VIN"
	KeyGaragingZIP     = "GaragingZIP"
	KeyPrimaryUse      = "PrimaryUse"
	KeyAnnualMiles     = "AnnualMiles"
	KeyOwnershipLength = "OwnershipLength"
)

// CoverageResult is the canonical JSON-compatible mapping returned by both
// extraction paths. Fields are present only when detected.
type CoverageResult = Object

// SplitLimit is a per-person / per-accident limit pair.
type SplitLimit struct {
	PerPerson   int64
	PerAccident int64
}

// RentalLimit is captured raw: no rounding is applied.
type RentalLimit struct {
	PerDay  int64
	MaxDays int64
}

type DriverRecord struct {
	FirstName string
	LastName  string
}

// VehicleRecord holds one vehicle block. Year, Make and Model are set when the
// block was opened by a header line; the rest are optional.
type VehicleRecord struct {
	Year  string
	Make  string
	Model string

	VIN             *string
	GaragingZIP     *string
	PrimaryUse      *string
	AnnualMiles     *string
	OwnershipLength *string

	hasHeader bool
}

func (v VehicleRecord) empty() bool {
	return !v.hasHeader && v.VIN == nil && v.GaragingZIP == nil &&
		v.PrimaryUse == nil && v.AnnualMiles == nil && v.OwnershipLength == nil
}

func (d DriverRecord) object() Object {
	return Object{
		{Key: KeyFirstName, Value: Text(d.FirstName)},
		{Key: KeyLastName, Value: Text(d.LastName)},
	}
}

func (v VehicleRecord) object() Object {
	var o Object
	if v.hasHeader {
		o = append(o,
			Member{Key: KeyYear, Value: Text(v.Year)},
			Member{Key: KeyMake, Value: Text(v.Make)},
			Member{Key: KeyModel, Value: Text(v.Model)},
		)
	}
	for _, f := range []struct {
		key string
		val *string
	}{
		{KeyVIN, v.VIN},
		{KeyGaragingZIP, v.GaragingZIP},
		{KeyPrimaryUse, v.PrimaryUse},
		{KeyAnnualMiles, v.AnnualMiles},
		{KeyOwnershipLength, v.OwnershipLength},
	} {
		if f.val != nil {
			o = append(o, Member{Key: f.key, Value: Text(*f.val)})
		}
	}
	return o
}

// accumulator collects one document's fields during a single pass. A non-nil
// latched field has been found and is never revisited.
type accumulator struct {
	bodilyInjury      *SplitLimit
	propertyDamage    *int64
	uninsuredMotorist *SplitLimit
	comprehensive     *int64
	collision         *int64
	pip               *int64
	medicalPayments   *int64
	rental            *RentalLimit

	drivers  []DriverRecord
	vehicles []VehicleRecord
}

func (a *accumulator) result() CoverageResult {
	out := Object{}
	if a.bodilyInjury != nil {
		out = append(out, Member{Key: KeyBodilyInjury, Value: Object{
			{Key: KeyPerPerson, Value: Integer(a.bodilyInjury.PerPerson)},
			{Key: KeyPerAccident, Value: Integer(a.bodilyInjury.PerAccident)},
		}})
	}
	if a.propertyDamage != nil {
		out = append(out, Member{Key: KeyPropertyDamage, Value: Object{
			{Key: KeyPerAccident, Value: Integer(*a.propertyDamage)},
		}})
	}
	if a.uninsuredMotorist != nil {
		out = append(out, Member{Key: KeyUninsuredMotorist, Value: Object{
			{Key: KeyPerPerson, Value: Integer(a.uninsuredMotorist.PerPerson)},
			{Key: KeyPerAccident, Value: Integer(a.uninsuredMotorist.PerAccident)},
		}})
	}
	scalars := []struct {
		key string
		val *int64
	}{
		{KeyComprehensiveDeductible, a.comprehensive},
		{KeyCollisionDeductible, a.collision},
		{KeyPersonalInjuryProtection, a.pip},
		{KeyMedicalPayments, a.medicalPayments},
	}
	for _, s := range scalars {
		if s.val != nil {
			out = append(out, Member{Key: s.key, Value: Integer(*s.val)})
		}
	}
	if a.rental != nil {
		out = append(out, Member{Key: KeyRentalReimbursement, Value: Object{
			{Key: KeyPerDay, Value: Integer(a.rental.PerDay)},
			{Key: KeyMaxDays, Value: Integer(a.rental.MaxDays)},
		}})
	}
	if len(a.drivers) > 0 {
		list := make(List, 0, len(a.drivers))
		for _, d := range a.drivers {
			list = append(list, d.object())
		}
		out = append(out, Member{Key: KeyDrivers, Value: list})
	}
	if len(a.vehicles) > 0 {
		list := make(List, 0, len(a.vehicles))
		for _, v := range a.vehicles {
			list = append(list, v.object())
		}
		out = append(out, Member{Key: KeyVehicles, Value: list})
	}
	return out
}
