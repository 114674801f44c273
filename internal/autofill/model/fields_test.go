package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields_UnmarshalKeepsOrder(t *testing.T) {
	var f Fields
	require.NoError(t, json.Unmarshal([]byte(`{"lastName":"L","firstName":"F","age":42,"adult":true,"x":null}`), &f))

	assert.Equal(t, Fields{
		{Name: "lastName", Raw: "L"},
		{Name: "firstName", Raw: "F"},
		{Name: "age", Raw: json.Number("42")},
		{Name: "adult", Raw: true},
		{Name: "x", Raw: nil},
	}, f)
}

func TestFields_UnmarshalDuplicateKeys(t *testing.T) {
	var f Fields
	require.NoError(t, json.Unmarshal([]byte(`{"firstName":"A","lastName":"B","firstName":"C"}`), &f))

	assert.Equal(t, Fields{
		{Name: "firstName", Raw: "C"},
		{Name: "lastName", Raw: "B"},
	}, f)
}

func TestFields_UnmarshalRejectsNonObject(t *testing.T) {
	var f Fields
	assert.Error(t, json.Unmarshal([]byte(`["firstName"]`), &f))

	var req struct {
		Data Fields `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"data":null}`), &req))
	assert.Empty(t, req.Data)
}
