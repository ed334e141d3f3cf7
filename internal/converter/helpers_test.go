package converter

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	nsMain = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRel  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPkg  = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// ledgerParts is a small workbook with cached formula results, a custom
// date format, a chart sheet, a very hidden sheet holding a merged cell and
// two defined names.
var ledgerParts = map[string]string{
	"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>
<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>
<Override PartName="/xl/worksheets/sheet2.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>
<Override PartName="/xl/chartsheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.chartsheet+xml"/>
<Override PartName="/xl/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"/>
</Types>`,
	"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="` + nsPkg + `">
<Relationship Id="rId1" Type="` + nsRel + `/officeDocument" Target="xl/workbook.xml"/>
</Relationships>`,
	"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="` + nsMain + `" xmlns:r="` + nsRel + `">
<sheets>
<sheet name="Data" sheetId="1" r:id="rId1"/>
<sheet name="Chart1" sheetId="3" r:id="rId4"/>
<sheet name="Secret" sheetId="2" state="veryHidden" r:id="rId2"/>
</sheets>
<definedNames>
<definedName name="Rate">Data!$B$2</definedName>
<definedName name="Local" localSheetId="2" comment="scoped">Secret!$A$1</definedName>
</definedNames>
</workbook>`,
	"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="` + nsPkg + `">
<Relationship Id="rId1" Type="` + nsRel + `/worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="` + nsRel + `/worksheet" Target="worksheets/sheet2.xml"/>
<Relationship Id="rId3" Type="` + nsRel + `/styles" Target="styles.xml"/>
<Relationship Id="rId4" Type="` + nsRel + `/chartsheet" Target="chartsheets/sheet1.xml"/>
</Relationships>`,
	"xl/styles.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<styleSheet xmlns="` + nsMain + `">
<numFmts count="1"><numFmt numFmtId="164" formatCode="yyyy-mm-dd"/></numFmts>
<fonts count="1"><font><sz val="11"/><name val="Calibri"/></font></fonts>
<fills count="1"><fill><patternFill patternType="none"/></fill></fills>
<borders count="1"><border><left/><right/><top/><bottom/><diagonal/></border></borders>
<cellStyleXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0"/></cellStyleXfs>
<cellXfs count="3">
<xf numFmtId="0" fontId="0" fillId="0" borderId="0" xfId="0"/>
<xf numFmtId="164" fontId="0" fillId="0" borderId="0" xfId="0" applyNumberFormat="1"/>
<xf numFmtId="2" fontId="0" fillId="0" borderId="0" xfId="0" applyNumberFormat="1"/>
</cellXfs>
</styleSheet>`,
	"xl/worksheets/sheet1.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="` + nsMain + `">
<dimension ref="A1:D4"/>
<sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>Item</t></is></c><c r="B1" t="inlineStr"><is><t>Qty</t></is></c></row>
<row r="2"><c r="A2" t="inlineStr"><is><t>apple</t></is></c><c r="B2"><v>3</v></c><c r="C2" s="2"><f>B2*2.5</f><v>7.5</v></c><c r="D2" s="1"><v>45306</v></c></row>
<row r="3"><c r="A3" t="b"><v>1</v></c><c r="B3"><v>2.25</v></c><c r="C3"><f>B3+1</f></c><c r="D3" t="str"><f>A2&amp;"!"</f><v>apple!</v></c></row>
<row r="4"><c r="A4" t="e"><f>1/0</f><v>#DIV/0!</v></c></row>
</sheetData>
</worksheet>`,
	"xl/worksheets/sheet2.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="` + nsMain + `">
<dimension ref="A1"/>
<sheetData>
<row r="1"><c r="A1"><v>42</v></c></row>
</sheetData>
<mergeCells count="1"><mergeCell ref="A1:B1"/></mergeCells>
</worksheet>`,
	"xl/chartsheets/sheet1.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<chartsheet xmlns="` + nsMain + `" xmlns:r="` + nsRel + `">
<sheetViews><sheetView workbookViewId="0"/></sheetViews>
</chartsheet>`,
}

// writePackage zips parts into dir/name and returns the path.
func writePackage(t *testing.T, dir, name string, parts map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	zw := zip.NewWriter(out)
	for partName, body := range parts {
		w, err := zw.Create(partName)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return path
}

func writeLedger(t *testing.T) string {
	t.Helper()
	return writePackage(t, t.TempDir(), "ledger.xlsx", ledgerParts)
}
