package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONRoundTrip(t *testing.T) {
	data, err := JSON.Marshal(map[string]int{"count": 42})
	assert.Nil(t, err)
	var out map[string]int
	assert.Nil(t, JSON.Unmarshal(data, &out))
	assert.Equal(t, map[string]int{"count": 42}, out)
}

func TestJSONEncodesNil(t *testing.T) {
	data, err := JSON.Marshal(nil)
	assert.Nil(t, err)
	assert.Equal(t, []byte("null"), data)
	var out *int
	assert.Nil(t, JSON.Unmarshal(data, &out))
	assert.Nil(t, out)
}

func TestCBORRoundTrip(t *testing.T) {
	data, err := CBOR.Marshal([]int64{1, 2, 3})
	assert.Nil(t, err)
	var out []int64
	assert.Nil(t, CBOR.Unmarshal(data, &out))
	assert.Equal(t, []int64{1, 2, 3}, out)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "json", JSON.Name())
	assert.Equal(t, "cbor", CBOR.Name())
}
