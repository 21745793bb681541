package crypto

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvKeyring(t *testing.T) {
	t.Setenv(KeyEnv, "")
	_, err := envKeyring{}.GetKey()
	assert.True(t, errors.Is(err, ErrKeyNotFound))
	assert.False(t, envKeyring{}.IsAvailable())

	t.Setenv(KeyEnv, "s3cret")
	key, err := envKeyring{}.GetKey()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", key)
	assert.True(t, envKeyring{}.IsAvailable())
}

func TestChainKeyring_PrefersPrimary(t *testing.T) {
	secondary := &StaticKeyring{Key: "stored"}
	k := &chainKeyring{primary: &StaticKeyring{Key: "env"}, secondary: secondary}

	key, err := k.GetKey()
	require.NoError(t, err)
	assert.Equal(t, "env", key)

	k.primary = &StaticKeyring{}
	key, err = k.GetKey()
	require.NoError(t, err)
	assert.Equal(t, "stored", key)

	require.NoError(t, k.SetKey("new"))
	assert.Equal(t, "new", secondary.Key)
}

func TestStaticKeyring(t *testing.T) {
	k := &StaticKeyring{}
	assert.True(t, errors.Is(k.SetKey(""), ErrEmptyKey))

	_, err := k.GetKey()
	assert.True(t, errors.Is(err, ErrKeyNotFound))

	require.NoError(t, k.SetKey("pw"))
	key, err := k.GetKey()
	require.NoError(t, err)
	assert.Equal(t, "pw", key)

	require.NoError(t, k.DeleteKey())
	assert.True(t, errors.Is(k.DeleteKey(), ErrKeyNotFound))
}
