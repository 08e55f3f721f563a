package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzneal/geodesy"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "osgb36", cfg.Grid)
	assert.Empty(t, cfg.DefinitionsFile)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 1024, cfg.ChunkSize)
	assert.Equal(t, 0, cfg.GridRefDigits)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsTextfile)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("OSGRID_GRID", "irish")
	t.Setenv("OSGRID_DEFINITIONS", "/etc/osgrid/grids.yaml")
	t.Setenv("OSGRID_WORKERS", "8")
	t.Setenv("OSGRID_CHUNK_SIZE", "256")
	t.Setenv("OSGRID_GRIDREF_DIGITS", "6")
	t.Setenv("OSGRID_LOG_LEVEL", "debug")
	t.Setenv("OSGRID_LOG_FORMAT", "json")
	t.Setenv("OSGRID_METRICS_TEXTFILE", "/var/lib/node_exporter/osgrid.prom")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "irish", cfg.Grid)
	assert.Equal(t, "/etc/osgrid/grids.yaml", cfg.DefinitionsFile)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 256, cfg.ChunkSize)
	assert.Equal(t, 6, cfg.GridRefDigits)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/var/lib/node_exporter/osgrid.prom", cfg.MetricsTextfile)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"workers not a number", "OSGRID_WORKERS", "many"},
		{"zero workers", "OSGRID_WORKERS", "0"},
		{"negative chunk size", "OSGRID_CHUNK_SIZE", "-1"},
		{"odd digits", "OSGRID_GRIDREF_DIGITS", "5"},
		{"too many digits", "OSGRID_GRIDREF_DIGITS", "12"},
		{"log format", "OSGRID_LOG_FORMAT", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidate_EmptyGrid(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	cfg.Grid = ""
	assert.Error(t, cfg.Validate())
}

const irishGrid = `
ellipsoids:
  - name: airy1830-modified
    a: 6377340.189
    b: 6356034.447
    scale_factor: 1.000035
datums:
  - name: ire65
    ellipsoid: airy1830-modified
    height_offset: 0
    origin_lat: 53.5
    origin_long: -8
    false_easting: 200000
    false_northing: 250000
helmerts:
  - name: wgs84-ire65
    scale_ppm: -8.15
    rx_arcsec: 1.042
    ry_arcsec: 0.214
    rz_arcsec: 0.631
    tx: -482.53
    ty: 130.596
    tz: -564.557
  - name: ire65-wgs84
    scale_ppm: 8.15
    rx_arcsec: -1.042
    ry_arcsec: -0.214
    rz_arcsec: -0.631
    tx: 482.53
    ty: -130.596
    tz: 564.557
grids:
  - name: irish
    source: wgs84
    datum: ire65
    to_grid: wgs84-ire65
    from_grid: ire65-wgs84
`

func TestParseDefinitions(t *testing.T) {
	defs, err := ParseDefinitions(strings.NewReader(irishGrid))
	require.NoError(t, err)
	require.Len(t, defs.Ellipsoids, 1)
	require.Len(t, defs.Datums, 1)
	require.Len(t, defs.Helmerts, 2)
	require.Len(t, defs.Grids, 1)

	assert.Equal(t, 6377340.189, defs.Ellipsoids[0].A)
	assert.Equal(t, 53.5, defs.Datums[0].OriginLat)
	assert.Equal(t, -8.15, defs.Helmerts[0].ScalePPM)
	assert.Equal(t, "ire65-wgs84", defs.Grids[0].FromGrid)
}

func TestParseDefinitions_Empty(t *testing.T) {
	defs, err := ParseDefinitions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, defs.Grids)
}

func TestParseDefinitions_UnknownField(t *testing.T) {
	_, err := ParseDefinitions(strings.NewReader("projections: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding definitions")
}

func TestLoadDefinitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grids.yaml")
	require.NoError(t, os.WriteFile(path, []byte(irishGrid), 0o600))

	defs, err := LoadDefinitions(path)
	require.NoError(t, err)
	assert.Len(t, defs.Grids, 1)

	_, err = LoadDefinitions(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening definitions")
}

func TestRegistry_BuiltIn(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"osgb36"}, r.GridNames())

	g, err := r.Grid("osgb36")
	require.NoError(t, err)
	e, n, err := g.Project([]float64{51.5074}, []float64{-0.1278}, geodesy.Degrees)
	require.NoError(t, err)
	assert.InDelta(t, 530028.79, e[0], 0.01)
	assert.InDelta(t, 180380.13, n[0], 0.01)

	_, err = r.Grid("lambert")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "osgb36")
}

func TestRegistry_AiryIsBare(t *testing.T) {
	r := NewRegistry()
	airy, ok := r.Ellipsoid("airy1830")
	require.True(t, ok)
	assert.Equal(t, 6377563.396, airy.A())
	assert.Zero(t, airy.HeightOffset())

	_, ok = r.Ellipsoid("bessel1841")
	assert.False(t, ok)
}

func TestRegistry_Add(t *testing.T) {
	defs, err := ParseDefinitions(strings.NewReader(irishGrid))
	require.NoError(t, err)

	r := NewRegistry()
	require.NoError(t, r.Add(defs))
	assert.Equal(t, []string{"irish", "osgb36"}, r.GridNames())

	g, err := r.Grid("irish")
	require.NoError(t, err)
	origin := g.Datum().Origin()
	assert.InDelta(t, 53.5, origin.Lat.Degrees(), 1e-12)
	assert.Equal(t, 200000.0, origin.FalseEasting)

	// Dublin, O 15900 34680 on the Irish grid
	e, n, err := g.Project([]float64{53.3498}, []float64{-6.2603}, geodesy.Degrees)
	require.NoError(t, err)
	assert.InDelta(t, 315900.37, e[0], 0.01)
	assert.InDelta(t, 234680.32, n[0], 0.01)
}

func TestRegistry_AddCollectsErrors(t *testing.T) {
	defs := &Definitions{
		Ellipsoids: []EllipsoidDef{
			{Name: "flat", A: 1, B: 2},
			{Name: "sphere-ish", A: 6378000, B: 6356000},
		},
		Datums: []DatumDef{
			{Name: "nowhere", Ellipsoid: "missing"},
			{Name: "ok", Ellipsoid: "sphere-ish", OriginLat: 10},
			{Name: "polar", Ellipsoid: "sphere-ish", OriginLat: 95},
		},
		Grids: []GridDef{
			{Name: "broken", Source: "wgs84", Datum: "ok", ToGrid: "nope", FromGrid: "nope"},
		},
	}

	r := NewRegistry()
	err := r.Add(defs)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `ellipsoid "flat"`)
	assert.Contains(t, msg, `datum "nowhere"`)
	assert.Contains(t, msg, `datum "polar"`)
	assert.Contains(t, msg, `grid "broken"`)
	assert.NotContains(t, msg, `datum "ok"`)
	assert.Equal(t, []string{"osgb36"}, r.GridNames())
}
