package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/model"
)

func TestCurated(t *testing.T) {
	list, err := Curated()
	require.NoError(t, err)
	require.Len(t, list, 6)

	personas := make([]string, 0, len(list))
	for _, a := range list {
		personas = append(personas, a.Persona)
		assert.True(t, a.RiskLevel.Valid(), a.Persona)
		assert.NotEmpty(t, a.DownloadURL)
		assert.Len(t, a.Features, 3)
	}
	assert.Equal(t, []string{"Offline Purist", "Audio Engineer", "Classic Pro", "Modern Stable", "Creator", "Power User"}, personas)
	assert.Equal(t, "2.5.4", list[1].Version)
	assert.Equal(t, model.RiskHigh, list[4].RiskLevel)
}

func TestCurated_ReturnsCopy(t *testing.T) {
	list, err := Curated()
	require.NoError(t, err)
	list[0].Features[0] = "changed"
	list[0].Version = "9.9.9"

	again, err := Curated()
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", again[0].Version)
	assert.Equal(t, "Clean UI", again[0].Features[0])
}

func TestAll(t *testing.T) {
	list, err := All()
	require.NoError(t, err)
	require.Len(t, list, 85)

	first, last := list[0], list[len(list)-1]
	assert.Equal(t, "5.4.0 (Beta6)", first.Persona)
	assert.Equal(t, DescLastCompatible, first.Description)
	assert.Equal(t, model.RiskHigh, first.RiskLevel)
	assert.Equal(t, "1.0.0 (Latest)", last.Persona)
	assert.Equal(t, DescStable, last.Description)
	assert.Equal(t, model.RiskLow, last.RiskLevel)
	for _, a := range list {
		assert.Empty(t, a.Features)
	}
}

func TestRiskFor(t *testing.T) {
	tests := map[string]model.RiskLevel{
		"5.4.0":   model.RiskHigh,
		"4.0.0":   model.RiskHigh,
		"3.9.0":   model.RiskMedium,
		"2.9.0":   model.RiskLow,
		"1.0.0":   model.RiskLow,
		"garbage": model.RiskHigh,
	}
	for in, want := range tests {
		assert.Equal(t, want, RiskFor(in), in)
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, DescLastCompatible, Describe("5.4.0 (Beta6)"))
	assert.Equal(t, DescPrerelease, Describe("5.4.0 (Beta5)"))
	assert.Equal(t, DescPrerelease, Describe("5.3.0 (Test1)"))
	assert.Equal(t, DescStable, Describe("4.7.0 (Latest)"))
	assert.Equal(t, DescRelease, Describe("4.7.0"))
}

func TestFind(t *testing.T) {
	a, err := Find("3.9.0")
	require.NoError(t, err)
	assert.Equal(t, "Creator", a.Persona)

	a, err = Find("power user")
	require.NoError(t, err)
	assert.Equal(t, "4.0.0", a.Version)

	a, err = Find("5.3.0 (Test2)")
	require.NoError(t, err)
	assert.Equal(t, "5.3.0", a.Version)
	assert.Equal(t, DescPrerelease, a.Description)

	a, err = Find("4.7.0")
	require.NoError(t, err)
	assert.Equal(t, "4.7.0 (Latest)", a.Persona)

	_, err = Find("0.1.0")
	assert.ErrorIs(t, err, errors.ErrArchiveNotFound)
}
