package securefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

var fastKDF = Options{
	KDF: Envelope{Version: 1, ArgonTime: 1, ArgonMemory: 8 * 1024, ArgonThreads: 1, ArgonKeyLen: 32},
	AAD: []byte("token-session:test:v1"),
}

func TestWriteReadEncryptedJSON(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/cfg/app/secret.json"

	require.NoError(t, WriteEncryptedJSON(fsys, path, payload{Name: "a", Value: 7}, []byte("correct horse"), fastKDF))

	raw, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"name"`)

	got, err := ReadEncryptedJSON[payload](fsys, path, []byte("correct horse"), fastKDF)
	require.NoError(t, err)
	assert.Equal(t, payload{Name: "a", Value: 7}, got)

	exists, err := afero.Exists(fsys, path+".tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReadEncryptedJSONWrongPassword(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/secret.json"
	require.NoError(t, WriteEncryptedJSON(fsys, path, payload{Name: "a"}, []byte("one password"), fastKDF))

	_, err := ReadEncryptedJSON[payload](fsys, path, []byte("another password"), fastKDF)
	assert.ErrorIs(t, err, ErrInvalidPasswordOrCorrupt)
}

func TestReadEncryptedJSONAADMismatch(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/secret.json"
	require.NoError(t, WriteEncryptedJSON(fsys, path, payload{Name: "a"}, []byte("pw-pw-pw"), fastKDF))

	other := fastKDF
	other.AAD = []byte("somewhere else")
	_, err := ReadEncryptedJSON[payload](fsys, path, []byte("pw-pw-pw"), other)
	assert.ErrorIs(t, err, ErrInvalidPasswordOrCorrupt)
}

func TestReadEncryptedJSONMissingFile(t *testing.T) {
	_, err := ReadEncryptedJSON[payload](afero.NewMemMapFs(), "/nope.json", []byte("pw"), fastKDF)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPathCandidates(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SNAP_REAL_HOME", "")
	t.Setenv("TOKEN_SESSION_ENV", "dev")

	paths, err := PathCandidates("token-session-client", "wallet.json")
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	assert.Equal(t, filepath.Join(home, ".config", "token-session-client", "develop", "wallet.json"), paths[0])

	_, err = PathCandidates("", "wallet.json")
	assert.Error(t, err)
}

func TestEnvFolder(t *testing.T) {
	cases := map[string]string{"": "", "prod": "", "LOCAL": "local", "development": "develop"}
	for in, want := range cases {
		t.Setenv("TOKEN_SESSION_ENV", in)
		got, err := EnvFolder()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	t.Setenv("TOKEN_SESSION_ENV", "staging")
	_, err := EnvFolder()
	assert.Error(t, err)
}
