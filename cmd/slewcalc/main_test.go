package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRun_FlagsText(t *testing.T) {
	var out bytes.Buffer
	err := run(Options{
		Reference:  "0,0",
		Candidates: []string{"2,0", "0, 1"},
		Format:     "text",
	}, nil, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "nearest #1")
	assert.Contains(t, out.String(), "azimuth 90.00")
}

func TestRun_YAMLFileAndFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
reference: {latitude: "0", longitude: "0"}
candidates:
  - {latitude: "-1", longitude: "0"}
  - {latitude: "5", longitude: "5"}
`), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(Options{Input: path, Format: "yaml"}, nil, &out))

	var got output
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 0, got.Index)
	assert.Equal(t, "180.00", got.Azimuth)
}

func TestRun_StdinJSONPlusFlags(t *testing.T) {
	stdin := strings.NewReader(`{"reference":{"latitude":"0","longitude":"0"},"candidates":[{"latitude":"3","longitude":"0"}]}`)

	var out bytes.Buffer
	require.NoError(t, run(Options{Input: "-", Candidates: []string{"0,-1"}, Format: "json"}, stdin, &out))
	assert.Contains(t, out.String(), `"index": 1`)
	assert.Contains(t, out.String(), `"azimuth": "270.00"`)
}

func TestRun_NoCandidates(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(Options{Reference: "10,10", Format: "text"}, nil, &out))
	assert.Equal(t, "no candidates\n", out.String())
}

func TestRun_ValidationMessages(t *testing.T) {
	err := run(Options{Reference: "0,0", Candidates: []string{"1,1", "abc,1"}, Format: "text"}, nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidate 1 latitude: Invalid value. Only decimal format is allowed")

	err = run(Options{Reference: "91,0", Format: "text"}, nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Latitude must be between -90 and 90")

	require.NoError(t, run(Options{Reference: "91,0", NoRangeCheck: true, Format: "text"}, nil, &bytes.Buffer{}))
}

func TestRun_GeoJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(Options{Reference: "0,0", Candidates: []string{"1,2"}, Format: "geojson"}, nil, &out))
	assert.Contains(t, out.String(), `"FeatureCollection"`)
	assert.Contains(t, out.String(), `"nearest"`)
}

func TestLoadPoints_RequiresReference(t *testing.T) {
	_, err := loadPoints(Options{Candidates: []string{"1,1"}}, nil)
	assert.Error(t, err)

	_, err = splitPair("12")
	assert.Error(t, err)
}
