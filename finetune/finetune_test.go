package finetune_test

import (
	"testing"

	"github.com/jrsteele09/go-admin-console/finetune"
	"github.com/stretchr/testify/require"
)

func TestPageNormalise(t *testing.T) {
	p := finetune.Page{Total: 21}
	p.Normalise(2, 10)

	require.NotNil(t, p.Data)
	require.Equal(t, 2, p.Page)
	require.Equal(t, 10, p.Limit)
	require.Equal(t, 3, p.TotalPages)
	require.True(t, p.HasNext())
	require.True(t, p.HasPrevious())
}

func TestPageNormaliseKeepsServerValues(t *testing.T) {
	p := finetune.Page{Total: 5, Page: 1, Limit: 5, TotalPages: 4}
	p.Normalise(3, 10)

	require.Equal(t, 1, p.Page)
	require.Equal(t, 5, p.Limit)
	require.Equal(t, 4, p.TotalPages)
	require.False(t, p.HasPrevious())
}

func TestEmptyPage(t *testing.T) {
	p := finetune.Page{}
	p.Normalise(1, 10)

	require.Empty(t, p.Data)
	require.Equal(t, 0, p.TotalPages)
	require.False(t, p.HasNext())
}

func TestRequestValidate(t *testing.T) {
	require.NoError(t, finetune.Request{Prompt: "p", Response: "r"}.Validate())
	require.Error(t, finetune.Request{Prompt: " ", Response: "r"}.Validate())
	require.Error(t, finetune.Request{Prompt: "p"}.Validate())
}
