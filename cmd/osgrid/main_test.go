package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Stdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--gridref-digits", "4", "--log-level", "error"},
		strings.NewReader("lat,long\n51.5074,-0.1278\n"), &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "easting,northing,gridref\n530028.795,180380.127,TQ 30 80\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRun_FilesAndMetrics(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.csv")
	prom := filepath.Join(dir, "osgrid.prom")
	require.NoError(t, os.WriteFile(input, []byte("50.0,-5.0\n52.2053,0.1218\n"), 0o600))

	t.Setenv("OSGRID_METRICS_TEXTFILE", prom)
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-o", output, "-w", "2", input}, strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "easting,northing\n185105.580,15406.642\n545088.457,258462.991\n", string(got))

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "osgrid_rows_projected_total 2")
	assert.Contains(t, stderr.String(), "projection complete")
}

func TestRun_Definitions(t *testing.T) {
	defs := filepath.Join(t.TempDir(), "grids.yaml")
	require.NoError(t, os.WriteFile(defs, []byte(`
grids:
  - name: osgb36-copy
    source: wgs84
    datum: osgb36
    to_grid: wgs84-osgb36
    from_grid: osgb36-wgs84
`), 0o600))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--definitions", defs, "--grid", "osgb36-copy"},
		strings.NewReader("51.5074,-0.1278\n"), &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "easting,northing\n530028.795,180380.127\n", stdout.String())
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown grid", []string{"--grid", "mars"}, `unknown grid "mars"`},
		{"bad digits", []string{"--gridref-digits", "3"}, "OSGRID_GRIDREF_DIGITS"},
		{"two inputs", []string{"a.csv", "b.csv"}, "at most one input file"},
		{"missing input", []string{filepath.Join(t.TempDir(), "none.csv")}, "opening input"},
		{"missing definitions", []string{"--definitions", filepath.Join(t.TempDir(), "none.yaml")}, "opening definitions"},
		{"unknown flag", []string{"--zone", "30"}, "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, strings.NewReader(""), &stdout, &stderr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
