package docker

import (
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xames3/conman/internal/model"
)

// TestSummaryFromContainer verifies the API-to-domain mapping,
// including the leading-slash strip on names.
func TestSummaryFromContainer(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	c := types.Container{
		ID:      "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2",
		Names:   []string{"/dev", "/alias"},
		Image:   "ubuntu:24.04",
		State:   "exited",
		Status:  "Exited (0) 2 hours ago",
		Created: created.Unix(),
	}

	summary := summaryFromContainer(c)
	assert.Equal(t, c.ID, summary.ID)
	assert.Equal(t, "dev", summary.Name)
	assert.Equal(t, "ubuntu:24.04", summary.Image)
	assert.Equal(t, "exited", summary.State)
	assert.Equal(t, "Exited (0) 2 hours ago", summary.Status)
	assert.True(t, summary.CreatedAt.Equal(created))
	assert.Equal(t, "a1b2c3d4e5f6", summary.ShortID())
}

// TestSummaryFromContainer_NoNames covers the degenerate case of a
// container the API reports without any name.
func TestSummaryFromContainer_NoNames(t *testing.T) {
	summary := summaryFromContainer(types.Container{ID: "abc"})
	assert.Empty(t, summary.Name)
}

// TestPickContainer verifies exact-name resolution and the user error
// for unknown names.
func TestPickContainer(t *testing.T) {
	summaries := []model.ContainerSummary{
		{ID: "aaa", Name: "dev"},
		{ID: "bbb", Name: "dev2"},
	}

	t.Run("exact match", func(t *testing.T) {
		found, err := pickContainer(summaries, "dev")
		require.NoError(t, err)
		assert.Equal(t, "aaa", found.ID)
	})

	t.Run("no prefix matching", func(t *testing.T) {
		found, err := pickContainer(summaries, "dev2")
		require.NoError(t, err)
		assert.Equal(t, "bbb", found.ID)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := pickContainer(summaries, "prod")
		require.Error(t, err)

		cliErr, ok := err.(*model.CLIError)
		require.True(t, ok)
		assert.Equal(t, model.ExitFailure, cliErr.Code)
		assert.Equal(t, "no such container: prod", cliErr.Message)
	})

	t.Run("empty listing", func(t *testing.T) {
		_, err := pickContainer(nil, "dev")
		assert.Error(t, err)
	})
}
