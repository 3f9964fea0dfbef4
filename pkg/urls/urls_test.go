package urls

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Role
	}{
		{
			name: "model",
			url:  "https://huggingface.co/org/model",
			want: RoleModel,
		},
		{
			name: "model with revision path",
			url:  "https://huggingface.co/org/model/tree/main",
			want: RoleModel,
		},
		{
			name: "dataset",
			url:  "https://huggingface.co/datasets/org/data",
			want: RoleDataset,
		},
		{
			name: "code",
			url:  "https://github.com/org/repo",
			want: RoleCode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyInvalid(t *testing.T) {
	var invalidErr *InvalidURLError
	var domainErr *UnsupportedDomainError

	_, err := Classify("")
	require.Error(t, err)
	assert.True(t, errors.As(err, &invalidErr))

	_, err = Classify("not a url")
	require.Error(t, err)
	assert.True(t, errors.As(err, &invalidErr))

	_, err = Classify("https://huggingface.co/")
	require.Error(t, err)
	assert.True(t, errors.As(err, &invalidErr))

	_, err = Classify("https://gitlab.com/org/repo")
	require.Error(t, err)
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "gitlab.com", domainErr.Host)
	assert.Contains(t, err.Error(), "gitlab.com")
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "model", RoleModel.String())
	assert.Equal(t, "code", RoleCode.String())
	assert.Equal(t, "dataset", RoleDataset.String())
	assert.Equal(t, "unknown", RoleUnknown.String())
}
