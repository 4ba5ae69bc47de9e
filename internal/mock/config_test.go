package mock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9999
users:
  alice: wonderland
brands:
  - id: 7
    name: Lada
cars:
  - brandId: 7
    specification: Niva
    price: 9000
    releaseDateTime: "1977-04-05"
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, "wonderland", cfg.Users["alice"])
	require.Len(t, cfg.Cars, 1)

	s := newStore(cfg)
	cars := s.listCars()
	require.Len(t, cars, 1)
	assert.Equal(t, "Lada", cars[0].Brand.Name)
	assert.Equal(t, 1977, cars[0].ReleaseDateTime.Year())
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cars:\n  - brandId: 1\n"), 0644))
	_, err := LoadConfig(bad)
	assert.ErrorContains(t, err, "unknown brandId")

	txt := filepath.Join(dir, "mock.txt")
	require.NoError(t, os.WriteFile(txt, []byte("{}"), 0644))
	_, err = LoadConfig(txt)
	assert.ErrorContains(t, err, "unsupported")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock.json")
	require.NoError(t, SaveConfig(DefaultConfig(), path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Brands, len(demoBrands))
	assert.Len(t, cfg.Cars, len(demoCars))
}
