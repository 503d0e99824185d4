package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Len(t, cfg.Concepts, 10)
	assert.NotEmpty(t, cfg.Prompts.Explanation.User)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := `
prompts:
  explanation:
    user: "Explain {concept}."
concepts:
  - name: 图论
    description: 研究图的数学分支
    related: [算法, 数据结构]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Explain {concept}.", cfg.Prompts.Explanation.User)
	assert.Empty(t, cfg.Prompts.Exercises.User)
	require.Len(t, cfg.Concepts, 1)
	assert.Equal(t, "图论", cfg.Concepts[0].Name)
	assert.Equal(t, []string{"算法", "数据结构"}, cfg.Concepts[0].RelatedConcepts)
}

func TestLoadConfigRejectsNamelessConcept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concepts:\n  - description: x\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompts: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
