package flatfile

import (
	"testing"

	"github.com/mesh-intelligence/tracker/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkTable(t *testing.T) {
	for _, kind := range media {
		t.Run(kind, func(t *testing.T) {
			links := attach(t, kind, t.TempDir()).Memberships()

			require.NoError(t, links.Link(1, 7))
			require.NoError(t, links.Link(1, 7))
			require.NoError(t, links.Link(1, 8))
			require.NoError(t, links.Link(2, 7))

			all, err := links.All()
			require.NoError(t, err)
			assert.Equal(t, []types.Membership{
				{ProjectID: 1, UserID: 7},
				{ProjectID: 1, UserID: 8},
				{ProjectID: 2, UserID: 7},
			}, all)

			require.NoError(t, links.Unlink(9, 9), "unlinking an absent pair is a no-op")
			require.NoError(t, links.Unlink(1, 8))

			n, err := links.UnlinkUser(7)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			require.NoError(t, links.Link(3, 1))
			require.NoError(t, links.Link(3, 2))
			n, err = links.UnlinkProject(3)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			all, err = links.All()
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}
