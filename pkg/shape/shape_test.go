package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/hyper-mcp/pkg/textquery"
)

func obj(name, ct, data string) textquery.Object {
	return textquery.Object{Name: name, ContentType: ct, Data: []byte(data)}
}

func TestInspect_JSONArray(t *testing.T) {
	out := Inspect(obj("movies.json", "", `[{"title":"Dune","year":2021},{"title":"Alien","year":1979},"stray"]`), nil)

	assert.Equal(t, "json", out.Format)
	assert.False(t, out.Skipped)
	assert.Equal(t, 2, out.DocCount)
	assert.True(t, out.AllMatch)
	require.NotNil(t, out.Schema)
	assert.Equal(t, "object", out.Schema.Type)

	paths := make(map[string]string)
	for _, fs := range out.FieldStats {
		paths[fs.Path] = fs.Type
	}
	assert.Equal(t, "string", paths["title"])
	assert.Contains(t, paths, "year")
}

func TestInspect_YAMLObject(t *testing.T) {
	out := Inspect(obj("conf.yaml", "", "name: demo\nreplicas: 3\n"), nil)

	assert.Equal(t, "yaml", out.Format)
	assert.Equal(t, 1, out.DocCount)
	require.NotNil(t, out.Schema)
	assert.NotNil(t, out.Schema.Properties)
}

func TestInspect_JSONScalar(t *testing.T) {
	out := Inspect(obj("n.json", "application/json", `42`), nil)

	assert.Zero(t, out.DocCount)
	require.NotNil(t, out.Schema)
	assert.Equal(t, "integer", out.Schema.Type)
}

func TestInspect_TruncatedJSONIsSkipped(t *testing.T) {
	out := Inspect(obj("cut.json", "", `[{"title":"Du`), nil)

	assert.True(t, out.Skipped)
	assert.NotEmpty(t, out.SkipReason)
}

func TestInspect_CSV(t *testing.T) {
	data := "title,year,seen\nDune,2021,true\nAlien,1979,false\nTron,,true\n"
	out := Inspect(obj("movies.csv", "", data), nil)

	require.NotNil(t, out.CSV)
	assert.True(t, out.CSV.HasHeader)
	assert.Equal(t, 3, out.CSV.Rows)
	require.Len(t, out.CSV.Columns, 3)

	assert.Equal(t, CSVColumn{Name: "title", Type: "string", Distinct: 3, Examples: []string{"Dune", "Alien", "Tron"}}, out.CSV.Columns[0])
	assert.Equal(t, "integer", out.CSV.Columns[1].Type)
	assert.Equal(t, 1, out.CSV.Columns[1].Empty)
	assert.Equal(t, "boolean", out.CSV.Columns[2].Type)
}

func TestInspect_CSVWithoutHeader(t *testing.T) {
	out := Inspect(obj("n.csv", "text/csv", "1,2\n3,4\n"), nil)

	require.NotNil(t, out.CSV)
	assert.False(t, out.CSV.HasHeader)
	assert.Equal(t, 2, out.CSV.Rows)
	assert.Equal(t, "column_1", out.CSV.Columns[0].Name)
	assert.Equal(t, "integer", out.CSV.Columns[0].Type)
}

func TestInspect_XML(t *testing.T) {
	data := `<?xml version="1.0"?>
<catalog region="eu">
  <movie id="1"><title>Dune</title></movie>
  <movie id="2"><title>Alien</title><year>1979</year></movie>
</catalog>`
	out := Inspect(obj("catalog.xml", "", data), nil)

	require.NotNil(t, out.XML)
	root := out.XML.Root
	assert.Equal(t, "catalog", root.Name)
	assert.Equal(t, []string{"region"}, root.Attributes)
	require.Len(t, root.Children, 1)

	movie := root.Children[0]
	assert.Equal(t, "movie", movie.Name)
	assert.Equal(t, 2, movie.Count)
	require.Len(t, movie.Children, 2)
	assert.Equal(t, "title", movie.Children[0].Name)
	assert.True(t, movie.Children[0].HasText)
	assert.Equal(t, "year", movie.Children[1].Name)
	assert.Equal(t, 1, movie.Children[1].Count)
	assert.Equal(t, 6, out.XML.Elements)
}

func TestInspect_XMLDepthLimit(t *testing.T) {
	out := Inspect(obj("deep.xml", "", `<a><b><c><d/></c></b></a>`), &Options{MaxXMLDepth: 2})

	require.NotNil(t, out.XML)
	b := out.XML.Root.Children[0]
	assert.True(t, b.Truncated)
	assert.Empty(t, b.Children)
}

func TestInspect_HTML(t *testing.T) {
	data := `<html><head><title> Catalog </title><meta name="description" content="All movies"></head>
<body>
  <ul id="list"><li class="movie">Dune</li><li class="movie">Alien</li></ul>
  <a href="/next">next</a>
  <form action="/search" method="get"><input name="q"><select name="genre"></select></form>
</body></html>`
	out := Inspect(obj("index.html", "text/html", data), nil)

	require.NotNil(t, out.HTML)
	h := out.HTML
	assert.Equal(t, "Catalog", h.Title)
	assert.Equal(t, "All movies", h.Meta["description"])
	assert.Equal(t, []string{"list"}, h.IDs)
	assert.Equal(t, []TagCount{{Name: "movie", Count: 2}}, h.Classes)
	assert.Equal(t, TagCount{Name: "li", Count: 2}, h.Tags[0])
	assert.Equal(t, 1, h.Links)
	require.Len(t, h.Forms, 1)
	assert.Equal(t, HTMLForm{Action: "/search", Method: "GET", Inputs: []string{"q", "genre"}}, h.Forms[0])
}

func TestInspect_FormAndText(t *testing.T) {
	form := Inspect(obj("f", "application/x-www-form-urlencoded", "tag=a&q=dune&tag=b"), nil)
	assert.Equal(t, []FormKey{
		{Key: "q", Count: 1, Examples: []string{"dune"}},
		{Key: "tag", Count: 2, Examples: []string{"a", "b"}},
	}, form.Form)

	text := Inspect(obj("notes.txt", "", "one\nthree\n"), nil)
	assert.Equal(t, &TextOutline{Lines: 2, LongestLine: 5}, text.Text)
}

func TestInspect_BinaryIsSkipped(t *testing.T) {
	out := Inspect(obj("logo.png", "image/png", "\x89PNG"), nil)

	assert.Equal(t, "binary", out.Format)
	assert.True(t, out.Skipped)
	assert.Contains(t, out.SkipReason, "image/png")
}
