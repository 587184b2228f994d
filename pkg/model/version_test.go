package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveVersion_IsInstalled(t *testing.T) {
	installed := []InstalledVersion{
		{Name: "2.5.4.810", Path: "/apps/2.5.4.810"},
		{Name: "3.9.0.1459", Path: "/apps/3.9.0.1459"},
	}

	tests := []struct {
		name     string
		version  string
		expected bool
	}{
		{name: "substring of installed name", version: "2.5.4", expected: true},
		{name: "another installed release", version: "3.9.0", expected: true},
		{name: "not installed", version: "4.0.0", expected: false},
		{name: "empty label never matches", version: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ArchiveVersion{Version: tt.version}
			assert.Equal(t, tt.expected, a.IsInstalled(installed))
		})
	}
}

func TestArchiveVersion_IsInstalledIsNotUnique(t *testing.T) {
	installed := []InstalledVersion{{Name: "5.3.0.1964"}}
	beta := ArchiveVersion{Version: "5.3.0", Persona: "5.3.0 (Beta1)"}
	latest := ArchiveVersion{Version: "5.3.0", Persona: "5.3.0 (Latest)"}

	assert.True(t, beta.IsInstalled(installed))
	assert.True(t, latest.IsInstalled(installed))
}

func TestParseVersion(t *testing.T) {
	v := ParseVersion("v5.3.0.1964")
	require.NotNil(t, v)
	assert.Equal(t, []int{5, 3, 0, 1964}, v.Segments())

	assert.Nil(t, ParseVersion("not-a-version"))
	assert.Nil(t, ParseVersion(""))
}

func TestSortInstalled(t *testing.T) {
	versions := []InstalledVersion{
		{Name: "10.0.0"},
		{Name: "custom-build"},
		{Name: "2.5.4"},
		{Name: "3.9.0"},
		{Name: "alpha"},
	}

	SortInstalled(versions)

	names := make([]string, 0, len(versions))
	for _, v := range versions {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"2.5.4", "3.9.0", "10.0.0", "alpha", "custom-build"}, names)
}

func TestTotalSizeMB(t *testing.T) {
	assert.InDelta(t, 0.0, TotalSizeMB(nil), 0.0001)
	assert.InDelta(t, 350.5, TotalSizeMB([]InstalledVersion{{SizeMB: 100}, {SizeMB: 250.5}}), 0.0001)
}

func TestRiskLevel_Valid(t *testing.T) {
	assert.True(t, RiskLow.Valid())
	assert.True(t, RiskMedium.Valid())
	assert.True(t, RiskHigh.Valid())
	assert.False(t, RiskLevel("Extreme").Valid())
}
