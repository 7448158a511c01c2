package ygggo_upsert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRows_JSONBatchKeepsKeyOrder(t *testing.T) {
	in, err := DecodeRows([]byte(`[{"name":"John","id":1},{"name":"Mike","id":2,"active":null}]`))
	require.NoError(t, err)
	require.Equal(t, 2, in.Len())
	assert.False(t, in.IsSingle())

	rows := in.Rows()
	assert.Equal(t, []string{"name", "id"}, rows[0].Columns())
	assert.Equal(t, []any{"John", 1}, rows[0].Values())
	assert.Equal(t, []any{"Mike", 2, nil}, rows[1].Values())
}

func TestDecodeRows_YAMLSingle(t *testing.T) {
	in, err := DecodeRows([]byte("id: 3\nname: Ann\nscore: 9.5\nactive: true\n"))
	require.NoError(t, err)
	assert.True(t, in.IsSingle())

	stmt, err := BuildInsertOnDuplicate("users", in)
	require.NoError(t, err)
	assert.Equal(t, []any{3, "Ann", 9.5, true}, stmt.Params)
}

func TestDecodeRows_Errors(t *testing.T) {
	_, err := DecodeRows([]byte(`[]`))
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = DecodeRows([]byte(``))
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = DecodeRows([]byte(`[{"id":1}, 5]`))
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = DecodeRows([]byte(`"just a string"`))
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = DecodeRows([]byte(`[{"id":1,"tags":["a","b"]}]`))
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = DecodeRows([]byte(`{"id": [1,`))
	assert.Error(t, err)
}

func TestDecodeRows_DuplicateKey(t *testing.T) {
	_, err := DecodeRows([]byte(`[{"id":1,"name":"a"},{"id":2,"id":3}]`))
	assert.ErrorIs(t, err, ErrInvalidShape)
}
