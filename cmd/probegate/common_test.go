package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probegate-dev/probegate/internal/catalog"
	"github.com/probegate-dev/probegate/internal/config"
)

const testCatalogYAML = `
schema_version: sandbox_catalog_v1
catalog:
  key: test_v1
scope:
  categories: [fs, net]
  policy_layers: [os_sandbox, agent_policy]
capabilities:
  - id: cap_fs_read_workspace_tree
    category: fs
    layer: os_sandbox
    description: Read files under the workspace root
  - id: cap_net_outbound_http
    category: net
    layer: agent_policy
    description: Open outbound HTTP connections
`

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogYAML), 0o644))
	return path
}

func TestResolveCatalog_ServesThroughRepository(t *testing.T) {
	repo := catalog.NewRepository()

	idx, path, err := resolveCatalog(writeTestCatalog(t), &config.SystemConfig{}, repo)
	require.NoError(t, err)
	require.NotEmpty(t, path)

	got, err := repo.Get("test_v1")
	require.NoError(t, err)
	assert.Same(t, idx, got)
}

func TestLoadConfiguredCatalogs(t *testing.T) {
	catA := writeTestCatalog(t)
	catB := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(catB,
		[]byte(strings.Replace(testCatalogYAML, "key: test_v1", "key: other_v1", 1)), 0o644))

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
catalogs:
  - name: primary
    path: %s
  - name: secondary
    path: %s
`, catA, catB)), 0o644))

	sys, err := config.LoadSystemConfig(cfgPath)
	require.NoError(t, err)

	repo, err := loadConfiguredCatalogs(sys)
	require.NoError(t, err)
	assert.Equal(t, []string{"other_v1", "test_v1"}, repo.Keys())

	idx, err := repo.Get("test_v1")
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
}

func TestLoadConfiguredCatalogs_DuplicateKey(t *testing.T) {
	cat := writeTestCatalog(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
catalogs:
  - name: one
    path: %s
  - name: two
    path: %s
`, cat, cat)), 0o644))

	sys, err := config.LoadSystemConfig(cfgPath)
	require.NoError(t, err)

	_, err = loadConfiguredCatalogs(sys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestCollectProbes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"alpha", "beta", ".hidden"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/usr/bin/env bash\n"), 0o755))
	}
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "gamma"), []byte("#!/usr/bin/env bash\n"), 0o755))

	probes, err := collectProbes([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "alpha"),
		filepath.Join(dir, "beta"),
		filepath.Join(sub, "gamma"),
	}, probes)
}

func TestCollectProbes_FileAndDirDeduplicated(t *testing.T) {
	dir := t.TempDir()
	probe := filepath.Join(dir, "alpha")
	require.NoError(t, os.WriteFile(probe, []byte("x"), 0o755))

	probes, err := collectProbes([]string{probe, dir})
	require.NoError(t, err)
	assert.Equal(t, []string{probe}, probes)
}

func TestCollectProbes_Missing(t *testing.T) {
	_, err := collectProbes([]string{filepath.Join(t.TempDir(), "absent")})
	require.Error(t, err)
}

func TestCollectProbes_EmptyDir(t *testing.T) {
	_, err := collectProbes([]string{t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no probes found")
}
