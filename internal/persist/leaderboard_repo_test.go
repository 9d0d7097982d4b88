package persist

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailsHash(t *testing.T) {
	a := DetailsHash(`{"bodies":[]}`)
	assert.Len(t, a, 32)
	assert.Equal(t, a, DetailsHash(`{"bodies":[]}`))
	assert.NotEqual(t, a, DetailsHash(`{"bodies":[{}]}`))
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	body, err := fs.ReadFile(migrations, names[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "details_hash")
}
