package converter

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Sheet visibility states as stored in xl/workbook.xml.
const (
	SheetVisible    = "visible"
	SheetHidden     = "hidden"
	SheetVeryHidden = "veryHidden"
)

// sheetInfo describes one entry of the workbook's sheet list.
type sheetInfo struct {
	Name  string
	State string
	Chart bool
}

// readSheetInfo reads sheet visibility and kind straight from the package,
// since excelize only exposes a visible/hidden flag.
func readSheetInfo(path string) (map[string]sheetInfo, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	workbookXML, err := readZipFile(&r.Reader, "xl/workbook.xml")
	if err != nil {
		return nil, err
	}
	relsXML, err := readZipFile(&r.Reader, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return nil, err
	}

	relTypes := parseRelationshipTypes(relsXML)
	result := make(map[string]sheetInfo)

	decoder := xml.NewDecoder(bytes.NewReader(workbookXML))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}

		info := sheetInfo{State: SheetVisible}
		var rID string
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "name":
				info.Name = attr.Value
			case "state":
				if attr.Value != "" {
					info.State = attr.Value
				}
			case "id":
				rID = attr.Value
			}
		}
		if info.Name == "" {
			continue
		}
		info.Chart = strings.HasSuffix(relTypes[rID], "/chartsheet")
		result[info.Name] = info
	}

	return result, nil
}

// parseRelationshipTypes maps relationship ids to their type URIs.
func parseRelationshipTypes(data []byte) map[string]string {
	result := make(map[string]string)
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, relType string
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "Id":
				id = attr.Value
			case "Type":
				relType = attr.Value
			}
		}
		if id != "" {
			result[id] = relType
		}
	}

	return result
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}
