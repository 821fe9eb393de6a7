package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homepageYAML = `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Empty:
        - abbr: EM
- Social:
    - Reddit:
        - icon: reddit.png
          href: https://reddit.com/{{HOMEPAGE_VAR_SUB}}
`

func TestHomepageReader(t *testing.T) {
	r := NewHomepageReader(writeFile(t, "bookmarks.yaml", homepageYAML))
	require.True(t, r.Available())

	ib, err := r.Read(context.Background())
	require.NoError(t, err)

	assert.Empty(t, ib.BookmarkBar.Children)
	require.Equal(t, []string{"Developer", "Social"}, names(ib.OtherBookmarks.Children))

	dev := ib.OtherBookmarks.Children[0]
	assert.True(t, dev.IsFolder)
	assert.Equal(t, []string{"Github"}, names(dev.Children))
	assert.Equal(t, "https://github.com/", dev.Children[0].URL)

	social := ib.OtherBookmarks.Children[1]
	assert.Equal(t, "https://reddit.com/", social.Children[0].URL)
	assert.Equal(t, 2, ib.NumberOfBookmarks())
}

func TestHomepageReader_Invalid(t *testing.T) {
	_, err := NewHomepageReader(writeFile(t, "bookmarks.yaml", "key: [unclosed")).Read(context.Background())
	assert.Error(t, err)
}
