package domain_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syngenta/meteobe/internal/domain"
)

func testMaps(t *testing.T) (precip, temp, wind domain.DomainMap) {
	t.Helper()
	var err error
	precip, err = domain.NewDomainMap(map[string]string{
		domain.DefaultKey: domain.DomainNEMSGlobal,
		"DE":              domain.DomainERA5T,
	})
	require.NoError(t, err)
	temp, err = domain.NewDomainMap(map[string]string{
		domain.DefaultKey: domain.DomainNEMSGlobal,
		"DE":              domain.DomainERA5,
	})
	require.NoError(t, err)
	wind, err = domain.NewDomainMap(map[string]string{
		domain.DefaultKey: domain.DomainERA5T,
	})
	require.NoError(t, err)
	return precip, temp, wind
}

func TestBuildWeatherQuery_FiveBlocks(t *testing.T) {
	precip, temp, wind := testMaps(t)

	blocks := domain.BuildWeatherQuery("DE", precip, temp, wind)
	require.Len(t, blocks, 5)

	assert.Equal(t, domain.DomainNEMSGlobal, blocks[0].Domain)
	assert.Len(t, blocks[0].Codes, 21)

	assert.Equal(t, domain.DomainERA5, blocks[1].Domain) // resolved temperature
	assert.Len(t, blocks[1].Codes, 3)

	assert.Equal(t, domain.DomainERA5T, blocks[2].Domain) // resolved precipitation
	require.Len(t, blocks[2].Codes, 1)
	assert.Equal(t, domain.CodePrecipitation, blocks[2].Codes[0].Code)
	assert.Equal(t, domain.AggSum, blocks[2].Codes[0].Aggregation)

	assert.Equal(t, domain.DomainERA5T, blocks[3].Domain) // resolved wind
	require.Len(t, blocks[3].Codes, 4)
	assert.Empty(t, blocks[3].Codes[3].Aggregation, "wind direction has no aggregation")

	assert.Equal(t, domain.DomainERA5, blocks[4].Domain)
	assert.Equal(t, domain.ResolutionHourly, blocks[4].TimeResolution)
	require.Len(t, blocks[4].Transformations, 1)
	assert.Equal(t, "aggregateDaily", blocks[4].Transformations[0].Type)
	assert.Equal(t, domain.AggMean, blocks[4].Transformations[0].Aggregation)
}

func TestBuildWeatherQuery_FixedBlocksCountryIndependent(t *testing.T) {
	precip, temp, wind := testMaps(t)

	de := domain.BuildWeatherQuery("DE", precip, temp, wind)
	zz := domain.BuildWeatherQuery("ZZ", precip, temp, wind)

	if diff := cmp.Diff(de[0], zz[0]); diff != "" {
		t.Errorf("general-atmosphere block varies with country (-DE +ZZ):\n%s", diff)
	}
	if diff := cmp.Diff(de[4], zz[4]); diff != "" {
		t.Errorf("UV block varies with country (-DE +ZZ):\n%s", diff)
	}
}

func TestBuildWeatherQuery_UnmappedCountryUsesDefaults(t *testing.T) {
	precip, temp, wind := testMaps(t)

	blocks := domain.BuildWeatherQuery("ZZ", precip, temp, wind)
	assert.Equal(t, domain.DomainNEMSGlobal, blocks[1].Domain)
	assert.Equal(t, domain.DomainNEMSGlobal, blocks[2].Domain)
	assert.Equal(t, domain.DomainERA5T, blocks[3].Domain)
}

func TestBuildWeatherQuery_GapFillOnlyOnUVBlock(t *testing.T) {
	precip, temp, wind := testMaps(t)

	blocks := domain.BuildWeatherQuery("DE", precip, temp, wind)

	raw, err := json.Marshal(blocks[4])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"gapFillDomain":null`)

	for i, block := range blocks[:4] {
		raw, err := json.Marshal(block)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "gapFillDomain", "block %d", i)
	}
}

func TestBuildSoilQuery_DepthBands(t *testing.T) {
	shallow := domain.BuildSoilQuery(0, 30)
	deep := domain.BuildSoilQuery(0, 60)

	assert.Equal(t, domain.DomainSoilGrids2, shallow.Domain)
	require.Len(t, shallow.Codes, 11)
	require.Len(t, deep.Codes, 11)

	for i := range shallow.Codes {
		s, d := shallow.Codes[i], deep.Codes[i]
		assert.Equal(t, s.Code, d.Code)
		assert.Equal(t, s.Level, d.Level)

		if s.Code == domain.CodeOrganicCarbonStocks {
			// Fixed band regardless of requested depths.
			assert.Equal(t, s, d)
			assert.Equal(t, "0-30 cm", s.Level)
			assert.Zero(t, s.StartDepth)
			assert.Zero(t, s.EndDepth)
			continue
		}
		assert.Equal(t, "aggregated", s.Level)
		assert.Equal(t, 0, s.StartDepth)
		assert.Equal(t, 30, s.EndDepth)
		assert.Equal(t, 60, d.EndDepth)
	}
}

func TestBuildPayload(t *testing.T) {
	window := domain.TimeWindow{
		Start: date(2021, 3, 1),
		End:   date(2021, 9, 30),
	}
	queries := []domain.Query{domain.BuildSoilQuery(0, 30)}

	p := domain.BuildPayload(-23.55, -46.63, window, queries)

	assert.Equal(t, [][]float64{{-46.63, -23.55}}, p.Geometry.Coordinates, "lon,lat order")
	assert.Equal(t, []string{"2021-03-01T+10:00/2021-09-30T+10:00"}, p.TimeIntervals)
	assert.Equal(t, "none", p.TimeIntervalsAlignment)
	assert.Equal(t, "CELSIUS", p.Units.Temperature)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `"mode":"preferLandWithMatchingElevation"`)
	// Wind direction and UV specs omit aggregation entirely.
	assert.False(t, strings.Contains(body, `"aggregation":""`))
}
