package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromYAML 验证YAML配置能被正确加载并补齐默认值
func TestLoadConfigFromYAML(t *testing.T) {
	yamlContent := `
screening:
  default_threshold: 0.6
  vocabulary: ["python", "go", "kubernetes"]
  enable_noun_fallback: false
mysql:
  host: "db.internal"
  port: 3306
  database: "screening"
tika:
  server_url: "http://tika:9998"
server:
  address: ":9000"
`
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err, "无法创建临时目录")
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err, "无法写入临时配置文件")

	config, err := LoadConfig(configPath)
	require.NoError(t, err, "加载合法配置不应返回错误")
	require.NotNil(t, config)

	assert.Equal(t, 0.6, config.Screening.DefaultThreshold)
	assert.Equal(t, []string{"python", "go", "kubernetes"}, config.Screening.Vocabulary)
	assert.False(t, config.Screening.NounFallbackEnabled(), "显式关闭的名词短语兜底应为false")
	assert.Equal(t, "db.internal", config.MySQL.Host)
	assert.Equal(t, ":9000", config.Server.Address)

	// 未配置的项应被默认值补齐
	assert.Equal(t, "text-embedding-v3", config.Aliyun.Embedding.Model)
	assert.Equal(t, 1024, config.Aliyun.Embedding.Dimensions)
	assert.Equal(t, 60, config.Tika.TimeoutSeconds)
}

// TestNounFallbackDefaultsToEnabled 验证名词短语兜底未配置时默认开启
func TestNounFallbackDefaultsToEnabled(t *testing.T) {
	cfg := ScreeningConfig{}
	assert.True(t, cfg.NounFallbackEnabled(), "未配置时名词短语兜底应默认开启")
}

// TestLoadConfigMissingFileInTest 测试环境下缺少配置文件时应回退到默认配置
func TestLoadConfigMissingFileInTest(t *testing.T) {
	config, err := LoadConfig(filepath.Join(os.TempDir(), "does-not-exist-xyz.yaml"))
	require.NoError(t, err, "测试环境中缺少配置文件不应报错")
	require.NotNil(t, config)
	assert.Equal(t, 0.45, config.Screening.DefaultThreshold, "默认阈值与预期不符")
	assert.Equal(t, ":8080", config.Server.Address)
}

// TestEnvOverride 验证环境变量覆盖API密钥
func TestEnvOverride(t *testing.T) {
	yamlContent := `
aliyun:
  api_key: "from_yaml"
`
	tmpDir, err := os.MkdirTemp("", "config-test-env")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	t.Setenv("ALIYUN_API_KEY", "from_env")
	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "from_env", config.Aliyun.APIKey, "环境变量应覆盖YAML中的API密钥")
}
