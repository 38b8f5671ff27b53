package coverage

import (
	"regexp"
	"strings"
)

const driversStartMarker = "drivers and household residents"

var (
	reDriverName      = regexp.MustCompile(`^([A-Z][a-zA-Z]*)[\s\p{Zs}]+([A-Z][a-zA-Z\s\p{Zs}\-]+)`)
	reVehicleHeader   = regexp.MustCompile(`^(\d{4}) ([a-zA-Z]+) [a-zA-Z0-9 ]+`)
	reVIN             = regexp.MustCompile(`^vin: ([a-zA-Z0-9]+)`)
	reGaragingZIP     = regexp.MustCompile(`^garaging zip code: (\d{5})`)
	rePrimaryUse      = regexp.MustCompile(`^primary use of the vehicle: (.+)`)
	reAnnualMiles     = regexp.MustCompile(`^annual miles: ([\d,\- ]+)`)
	reOwnershipLength = regexp.MustCompile(`^length of vehicle ownership when policy started or vehicle added: (.+)`)
)

type sectionState int

const (
	outsideSection sectionState = iota
	insideSection
)

// driverSection tracks whether the current line sits inside the drivers list.
type driverSection struct {
	state sectionState
}

// step advances the state machine and reports whether line is a candidate
// driver line.
func (s *driverSection) step(lower string) bool {
	if strings.Contains(lower, driversStartMarker) {
		s.state = insideSection
		return false
	}
	if s.state == outsideSection {
		return false
	}
	if lower == "" || strings.Contains(lower, "additional information") || strings.Contains(lower, "form") {
		s.state = outsideSection
		return false
	}
	return true
}

func segmentDrivers(lines []string, a *accumulator) {
	var sec driverSection
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !sec.step(strings.ToLower(trimmed)) {
			continue
		}
		m := reDriverName.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		a.drivers = append(a.drivers, DriverRecord{
			FirstName: m[1],
			LastName:  strings.TrimSpace(m[2]),
		})
	}
}

// segmentVehicles scans every line; a header line flushes the open record and
// starts a new one, detail lines overwrite fields on the open record.
func segmentVehicles(lines []string, a *accumulator) {
	var cur VehicleRecord
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := reVehicleHeader.FindStringSubmatch(trimmed); m != nil {
			if !cur.empty() {
				a.vehicles = append(a.vehicles, cur)
			}
			cur = VehicleRecord{
				Year:      m[1],
				Make:      m[2],
				Model:     strings.TrimSpace(trimmed[len(m[1])+1+len(m[2]):]),
				hasHeader: true,
			}
		}

		lower := strings.ToLower(trimmed)
		if m := reVIN.FindStringSubmatch(lower); m != nil {
			cur.VIN = strPtr(m[1])
		}
		if m := reGaragingZIP.FindStringSubmatch(lower); m != nil {
			cur.GaragingZIP = strPtr(m[1])
		}
		if m := rePrimaryUse.FindStringSubmatch(lower); m != nil {
			cur.PrimaryUse = strPtr(strings.TrimSpace(m[1]))
		}
		if m := reAnnualMiles.FindStringSubmatch(lower); m != nil {
			cur.AnnualMiles = strPtr(strings.TrimSpace(m[1]))
		}
		if m := reOwnershipLength.FindStringSubmatch(lower); m != nil {
			cur.OwnershipLength = strPtr(strings.TrimSpace(m[1]))
		}
	}
	if !cur.empty() {
		a.vehicles = append(a.vehicles, cur)
	}
}

func strPtr(s string) *string { return &s }
