package flatfile

import (
	"os"
	"strings"
	"testing"

	"github.com/mesh-intelligence/tracker/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLFileLayout(t *testing.T) {
	b := attach(t, types.BackendXML, t.TempDir())

	_, err := b.Retrospectives().Create(types.Retrospective{
		SprintID:     3,
		Summary:      "a <good> sprint & more",
		Improvements: []string{"tests", "docs"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(b.Path(types.TableRetrospectives))
	require.NoError(t, err)
	doc := string(data)

	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.Contains(t, doc, "<retrospectives>")
	assert.Contains(t, doc, "<retrospective>")
	assert.Contains(t, doc, "<sprint_id>3</sprint_id>")
	assert.Contains(t, doc, "<summary>a &lt;good&gt; sprint &amp; more</summary>")
	assert.Contains(t, doc, "<improvements>tests;docs</improvements>")

	got, ok, err := b.Retrospectives().FindByID(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a <good> sprint & more", got.Summary)
	assert.Equal(t, []string{"tests", "docs"}, got.Improvements)
	assert.Nil(t, got.Positives)
}

func TestXMLHandwrittenDocument(t *testing.T) {
	b := attach(t, types.BackendXML, t.TempDir())
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<sprints>
  <sprint><id>1</id><start_date>2024-01-01</start_date><end_date>2024-01-14</end_date><project_id>1</project_id></sprint>
  <note>not a sprint</note>
  <sprint><id>2</id><start_date>soon</start_date><end_date>2024-01-28</end_date><project_id>1</project_id></sprint>
  <sprint><project_id>2</project_id><end_date>2024-02-14</end_date><start_date>2024-02-01</start_date><id>3</id></sprint>
</sprints>
`
	require.NoError(t, os.WriteFile(b.Path(types.TableSprints), []byte(doc), 0o644))

	all, err := b.Sprints().FindAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(3), all[1].ID)
	assert.Equal(t, int64(2), all[1].ProjectID)

	_, _, err = b.Sprints().FindByID(2)
	assert.ErrorIs(t, err, types.ErrMalformedRecord)
}

func TestXMLUnreadableDocument(t *testing.T) {
	b := attach(t, types.BackendXML, t.TempDir())

	t.Run("syntax error before root", func(t *testing.T) {
		require.NoError(t, os.WriteFile(b.Path(types.TableUsers), []byte("<users id=></users>"), 0o644))
		_, err := b.Users().FindAll()
		assert.ErrorIs(t, err, types.ErrMalformedRecord)
	})

	t.Run("wrong root element", func(t *testing.T) {
		require.NoError(t, os.WriteFile(b.Path(types.TableUsers), []byte("<projects></projects>"), 0o644))
		_, err := b.Users().FindAll()
		assert.ErrorIs(t, err, types.ErrMalformedRecord)
	})

	t.Run("truncated record", func(t *testing.T) {
		require.NoError(t, os.WriteFile(b.Path(types.TableUsers), []byte("<users><user>"), 0o644))
		all, err := b.Users().FindAll()
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestXMLDamagedRecordDoesNotHideOthers(t *testing.T) {
	b := attach(t, types.BackendXML, t.TempDir())
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<projects>
  <project><id>1</id><name>Alpha</name><description></description></project>
  <project><id>2</id><name>Beta</nam><description></description></project>
  <project>
    <id>3</id><name>Gamma</name><description>after the damage</description>
  </project>
  <project><id>4</id><name>Delta</name><description></description></project>
</projects>
`
	require.NoError(t, os.WriteFile(b.Path(types.TableProjects), []byte(doc), 0o644))

	all, err := b.Projects().FindAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "Gamma", all[1].Name)
	assert.Equal(t, "after the damage", all[1].Description)
	assert.Equal(t, "Delta", all[2].Name)

	_, ok, err := b.Projects().FindByID(2)
	require.NoError(t, err)
	assert.False(t, ok)

	// A write keeps the readable records and drops the damaged one.
	require.NoError(t, b.Projects().Update(types.Project{ID: 3, Name: "Gamma", Description: "fixed"}))
	all, err = b.Projects().FindAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "fixed", all[1].Description)
}
