// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarFor(t *testing.T) {
	v, err := VarFor(ServiceNVD)
	require.NoError(t, err)
	assert.Equal(t, "NIST_API", v)

	v, err = VarFor(ServiceVulnCheck)
	require.NoError(t, err)
	assert.Equal(t, "VULNCHECK_API", v)

	_, err = VarFor("shodan")
	assert.Error(t, err)
}

func TestSave_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	require.NoError(t, Save(path, NISTKeyVar, "abc-123"))

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"NIST_API": "abc-123"}, env)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSave_ReplacesKeyAndKeepsOthers(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NIST_API=\"old\"\nOTHER=value\n"), 0o600))

	require.NoError(t, Save(path, NISTKeyVar, "new"))
	require.NoError(t, Save(path, VulnCheckKeyVar, "vulncheck_key"))

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"NIST_API":      "new",
		"OTHER":         "value",
		"VULNCHECK_API": "vulncheck_key",
	}, env)
}

func TestLoad_MissingFile(t *testing.T) {
	assert.NoError(t, Load(filepath.Join(t.TempDir(), ".env")))
}

func TestLoad_ExportsKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NIST_API=\"from-file\"\nVULNCHECK_API=vc\n"), 0o600))

	t.Setenv(NISTKeyVar, "")
	t.Setenv(VulnCheckKeyVar, "")
	require.NoError(t, os.Unsetenv(NISTKeyVar))
	require.NoError(t, os.Unsetenv(VulnCheckKeyVar))

	require.NoError(t, Load(path))
	assert.Equal(t, Keys{NIST: "from-file", VulnCheck: "vc"}, FromEnv())
}

func TestLoad_DoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NIST_API=from-file\n"), 0o600))

	t.Setenv(NISTKeyVar, "from-env")
	require.NoError(t, Load(path))
	assert.Equal(t, "from-env", FromEnv().NIST)
}
