package coverage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drivers(text string) []DriverRecord {
	var a accumulator
	segmentDrivers(splitLines(text), &a)
	return a.drivers
}

func vehicles(text string) []VehicleRecord {
	var a accumulator
	segmentVehicles(splitLines(text), &a)
	return a.vehicles
}

func TestSegmentDrivers_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []DriverRecord
	}{
		{
			name: "blank line closes",
			text: "DRIVERS AND HOUSEHOLD RESIDENTS\nJohn Smith\n\nPeter Parker",
			want: []DriverRecord{{FirstName: "John", LastName: "Smith"}},
		},
		{
			name: "form line closes",
			text: "Drivers and household residents\nJohn Smith\nPolicy Form A-100\nBruce Wayne",
			want: []DriverRecord{{FirstName: "John", LastName: "Smith"}},
		},
		{
			name: "additional information closes",
			text: "Drivers and household residents\nJane Doe\nAdditional Information\nClark Kent",
			want: []DriverRecord{{FirstName: "Jane", LastName: "Doe"}},
		},
		{
			name: "marker reopens",
			text: "Drivers and household residents\nJane Doe\n\nDrivers and household residents (continued)\nClark Kent",
			want: []DriverRecord{
				{FirstName: "Jane", LastName: "Doe"},
				{FirstName: "Clark", LastName: "Kent"},
			},
		},
		{
			name: "non matching lines skipped",
			text: "Drivers and household residents\nexcluded driver\nMary Jo O-Neil\n42 listed",
			want: []DriverRecord{{FirstName: "Mary", LastName: "Jo O-Neil"}},
		},
		{
			name: "non-breaking spaces",
			text: "Drivers and Household Residents\nJohn\u00a0Smith\nMary\u2002Jo\u00a0O-Neil\u00a0\n",
			want: []DriverRecord{
				{FirstName: "John", LastName: "Smith"},
				{FirstName: "Mary", LastName: "Jo\u00a0O-Neil"},
			},
		},
		{
			name: "names outside section ignored",
			text: "John Smith\nJane Doe",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, drivers(tt.text))
		})
	}
}

func TestDriverSection_Step(t *testing.T) {
	var s driverSection
	assert.False(t, s.step("john smith"))
	assert.False(t, s.step("drivers and household residents"))
	assert.Equal(t, insideSection, s.state)
	assert.True(t, s.step("john smith"))
	assert.False(t, s.step(""))
	assert.Equal(t, outsideSection, s.state)
	assert.False(t, s.step("jane doe"))
}

func TestSegmentVehicles_FlushOnHeader(t *testing.T) {
	text := strings.Join([]string{
		"2018 Honda Civic LX",
		"VIN: ABC123",
		"Garaging ZIP Code: 12345",
		"  2020 Ford F 150 Super Cab  ",
		"Annual Miles: 7,500",
		"VIN: XYZ789",
		"VIN: XYZ790",
	}, "\n")
	got := vehicles(text)
	require.Len(t, got, 2)

	assert.Equal(t, "2018", got[0].Year)
	assert.Equal(t, "Honda", got[0].Make)
	assert.Equal(t, "Civic LX", got[0].Model)
	assert.Equal(t, "abc123", *got[0].VIN)
	assert.Equal(t, "12345", *got[0].GaragingZIP)
	assert.Nil(t, got[0].AnnualMiles)

	assert.Equal(t, "2020", got[1].Year)
	assert.Equal(t, "Ford", got[1].Make)
	assert.Equal(t, "F 150 Super Cab", got[1].Model)
	assert.Equal(t, "7,500", *got[1].AnnualMiles)
	assert.Equal(t, "xyz790", *got[1].VIN)
	assert.Nil(t, got[1].GaragingZIP)
}

func TestSegmentVehicles_DetailsWithoutHeader(t *testing.T) {
	got := vehicles("VIN: ABC123\nPrimary use of the vehicle: Pleasure\n2019 Subaru Outback")
	require.Len(t, got, 2)
	assert.Equal(t, Object{
		{Key: KeyVIN, Value: Text("abc123")},
		{Key: KeyPrimaryUse, Value: Text("pleasure")},
	}, got[0].object())
	assert.Equal(t, Object{
		{Key: KeyYear, Value: Text("2019")},
		{Key: KeyMake, Value: Text("Subaru")},
		{Key: KeyModel, Value: Text("Outback")},
	}, got[1].object())
}

func TestSegmentVehicles_None(t *testing.T) {
	assert.Empty(t, vehicles("Policy period 01/01/2024\nGaraging ZIP Code: 1234"))
}
