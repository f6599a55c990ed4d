package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthLogin_StoresCredentials(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	originalGetConfigDir := getConfigDirFunc
	originalGetConfigPath := getConfigPathFunc
	defer func() {
		getConfigDirFunc = originalGetConfigDir
		getConfigPathFunc = originalGetConfigPath
	}()

	getConfigDirFunc = func() (string, error) { return tempDir, nil }
	getConfigPathFunc = func() (string, error) { return configPath, nil }

	apiURL := "http://localhost:8080"

	err := runAuthLogin(testToken, apiURL)
	require.NoError(t, err)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, testToken, config.Token)
	assert.Equal(t, apiURL, config.APIURL)
}

func TestAuthLogin_OverwritesExisting(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	originalGetConfigDir := getConfigDirFunc
	originalGetConfigPath := getConfigPathFunc
	defer func() {
		getConfigDirFunc = originalGetConfigDir
		getConfigPathFunc = originalGetConfigPath
	}()

	getConfigDirFunc = func() (string, error) { return tempDir, nil }
	getConfigPathFunc = func() (string, error) { return configPath, nil }

	oldToken := "old.token.sig"
	oldURL := "http://old.example.com"
	err := SaveGlobalConfig(&GlobalConfig{Token: oldToken, APIURL: oldURL})
	require.NoError(t, err)

	newToken := "new.token.sig"
	newURL := "http://new.example.com"
	err = runAuthLogin(newToken, newURL)
	require.NoError(t, err)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, newToken, config.Token)
	assert.Equal(t, newURL, config.APIURL)
}

func TestAuthLogin_ValidatesTokenFormat(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	originalGetConfigDir := getConfigDirFunc
	originalGetConfigPath := getConfigPathFunc
	defer func() {
		getConfigDirFunc = originalGetConfigDir
		getConfigPathFunc = originalGetConfigPath
	}()

	getConfigDirFunc = func() (string, error) { return tempDir, nil }
	getConfigPathFunc = func() (string, error) { return configPath, nil }

	invalidToken := "not-a-jwt"
	err := runAuthLogin(invalidToken, "http://localhost:8080")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token format")

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestAuthLogout_ClearsGlobalConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	originalGetConfigDir := getConfigDirFunc
	originalGetConfigPath := getConfigPathFunc
	defer func() {
		getConfigDirFunc = originalGetConfigDir
		getConfigPathFunc = originalGetConfigPath
	}()

	getConfigDirFunc = func() (string, error) { return tempDir, nil }
	getConfigPathFunc = func() (string, error) { return configPath, nil }

	err := SaveGlobalConfig(&GlobalConfig{Token: testToken, APIURL: "http://localhost:8080"})
	require.NoError(t, err)

	err = runAuthLogout()
	require.NoError(t, err)

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestAuthLogout_IdempotentWhenNoConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	originalGetConfigDir := getConfigDirFunc
	originalGetConfigPath := getConfigPathFunc
	defer func() {
		getConfigDirFunc = originalGetConfigDir
		getConfigPathFunc = originalGetConfigPath
	}()

	getConfigDirFunc = func() (string, error) { return tempDir, nil }
	getConfigPathFunc = func() (string, error) { return configPath, nil }

	err := runAuthLogout()
	require.NoError(t, err)

	err = runAuthLogout()
	require.NoError(t, err)
}

func TestAuthStatus_ShowsGlobalSource(t *testing.T) {
	t.Setenv("STUDYHALL_TOKEN", "")
	t.Setenv("STUDYHALL_API_URL", "")

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	originalGetConfigDir := getConfigDirFunc
	originalGetConfigPath := getConfigPathFunc
	defer func() {
		getConfigDirFunc = originalGetConfigDir
		getConfigPathFunc = originalGetConfigPath
	}()

	getConfigDirFunc = func() (string, error) { return tempDir, nil }
	getConfigPathFunc = func() (string, error) { return configPath, nil }

	err := SaveGlobalConfig(&GlobalConfig{Token: testToken, APIURL: "http://localhost:8080"})
	require.NoError(t, err)

	err = runAuthStatus(false)
	require.NoError(t, err)
}

func TestAuthStatus_ShowsEnvSource(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	originalGetConfigDir := getConfigDirFunc
	originalGetConfigPath := getConfigPathFunc
	defer func() {
		getConfigDirFunc = originalGetConfigDir
		getConfigPathFunc = originalGetConfigPath
	}()

	getConfigDirFunc = func() (string, error) { return tempDir, nil }
	getConfigPathFunc = func() (string, error) { return configPath, nil }

	t.Setenv("STUDYHALL_TOKEN", testToken)
	t.Setenv("STUDYHALL_API_URL", "http://env.example.com")

	err := runAuthStatus(false)
	require.NoError(t, err)
}

func TestAuthStatus_ShowsNoAuth(t *testing.T) {
	t.Setenv("STUDYHALL_TOKEN", "")
	t.Setenv("STUDYHALL_API_URL", "")

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	originalGetConfigDir := getConfigDirFunc
	originalGetConfigPath := getConfigPathFunc
	defer func() {
		getConfigDirFunc = originalGetConfigDir
		getConfigPathFunc = originalGetConfigPath
	}()

	getConfigDirFunc = func() (string, error) { return tempDir, nil }
	getConfigPathFunc = func() (string, error) { return configPath, nil }

	err := runAuthStatus(false)
	require.NoError(t, err)
}

func TestAuthStatus_JSONOutput(t *testing.T) {
	t.Setenv("STUDYHALL_TOKEN", "")
	t.Setenv("STUDYHALL_API_URL", "")

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.json")

	originalGetConfigDir := getConfigDirFunc
	originalGetConfigPath := getConfigPathFunc
	defer func() {
		getConfigDirFunc = originalGetConfigDir
		getConfigPathFunc = originalGetConfigPath
	}()

	getConfigDirFunc = func() (string, error) { return tempDir, nil }
	getConfigPathFunc = func() (string, error) { return configPath, nil }

	apiURL := "http://localhost:8080"
	err := SaveGlobalConfig(&GlobalConfig{Token: testToken, APIURL: apiURL})
	require.NoError(t, err)

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err = runAuthStatus(true)
	require.NoError(t, err)

	w.Close()
	os.Stdout = oldStdout

	var buf [4096]byte
	n, _ := r.Read(buf[:])
	output := string(buf[:n])

	var result map[string]interface{}
	err = json.Unmarshal([]byte(output), &result)
	require.NoError(t, err)
	assert.Equal(t, true, result["authenticated"])
	assert.Equal(t, "global_config", result["source"])
	assert.Equal(t, maskToken(testToken), result["token"])
	assert.Equal(t, apiURL, result["api_url"])
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "jwt token",
			input:    testToken,
			expected: "eyJhbGc...dXJl",
		},
		{
			name:     "short token",
			input:    "short",
			expected: "***",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskToken(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}
