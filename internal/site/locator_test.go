package site

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const sample = `<html><body>
<a href="/Home.aspx">Home</a>
<a href="/ExamResult.aspx?x=1">Exam Results</a>
<a href="#">B.E. ECC III Sem</a>
<a href="#">B.E. ECC V Sem</a>
<input id="txtRollNo" type="text">
</body></html>`

func parse(t *testing.T) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sample))
	require.NoError(t, err)
	return doc
}

func TestLocatorXPath(t *testing.T) {
	require.Equal(t, "//*[@id='txtRollNo']", ByID("txtRollNo").XPath())
	require.Equal(t,
		"//a[contains(@href, 'ExamResult.aspx')]",
		Locator{HrefContains: "ExamResult.aspx"}.XPath(),
	)
	require.Equal(t,
		"//a[contains(., 'ECC') and (contains(., 'III') or contains(., '3rd'))]",
		Locator{TextAll: []string{"ECC"}, TextAny: []string{"III", "3rd"}}.XPath(),
	)
}

func TestXPathLiteralQuotes(t *testing.T) {
	require.Equal(t, `"it's"`, xpathLiteral("it's"))
	require.Equal(t, `concat('a', "'", 'b"c')`, xpathLiteral(`a'b"c`))
}

func TestLocatorFind(t *testing.T) {
	doc := parse(t)

	sel := Locator{HrefContains: "ExamResult.aspx"}.Find(doc)
	require.Equal(t, "Exam Results", sel.Text())

	sel = Locator{TextAll: []string{"ECC"}, TextAny: []string{"III", "3rd"}}.Find(doc)
	require.Equal(t, "B.E. ECC III Sem", sel.Text())

	sel = ByID("txtRollNo").Find(doc)
	require.Equal(t, 1, sel.Length())

	sel = Locator{TextAll: []string{"MECH"}}.Find(doc)
	require.Equal(t, 0, sel.Length())
}

func TestDefaultAdapter(t *testing.T) {
	a := Default()
	require.Len(t, a.Steps, 4)
	require.True(t, a.Steps[1].Optional)
	require.True(t, a.Steps[3].Gate)
	require.Equal(t, RollInputID, a.Marker.ID)
	require.Equal(t, SubmitButtonID, a.Submit.ID)
}
