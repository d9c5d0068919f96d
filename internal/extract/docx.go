package extract

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DOCX returns the body paragraphs in document order, one per line.
func DOCX(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer r.Close()

	paras, err := bodyParagraphs(r.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	return strings.Join(paras, "\n"), nil
}

// bodyParagraphs walks word/document.xml and collects the run text of each
// w:p that is a direct child of w:body. Paragraphs inside tables and text
// boxes are not included.
func bodyParagraphs(raw string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))

	var (
		stack     []string
		paras     []string
		cur       strings.Builder
		inPara    bool
		paraDepth int
		boxDepth  int
		inText    bool
	)

	parent := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case !inPara && name == "p" && parent() == "body":
				inPara = true
				paraDepth = len(stack)
				cur.Reset()
			case inPara && name == "txbxContent":
				boxDepth++
			case inPara && boxDepth == 0 && parent() == "r":
				switch name {
				case "t":
					inText = true
				case "tab":
					cur.WriteByte('\t')
				case "br", "cr":
					cur.WriteByte('\n')
				}
			}
			stack = append(stack, name)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch name := t.Name.Local; {
			case name == "t":
				inText = false
			case inPara && name == "txbxContent":
				boxDepth--
			case inPara && name == "p" && len(stack) == paraDepth:
				paras = append(paras, cur.String())
				inPara = false
			}

		case xml.CharData:
			if inPara && inText && boxDepth == 0 {
				cur.Write(t)
			}
		}
	}
	return paras, nil
}
