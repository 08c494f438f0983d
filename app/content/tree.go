package content

import (
	"bytes"
	"fmt"
	"strings"

	xpp "github.com/mmcdole/goxpp"
)

// ParseTree converts the root element of an XML document into a map.
// Attributes become "@name" keys, element text "#text", and children
// repeated under one name are collected into a list.
func ParseTree(data []byte) (map[string]any, error) {
	p := xpp.NewXMLPullParser(bytes.NewReader(data), false, nil)

	for {
		event, err := p.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read XML: %w", err)
		}
		if event == xpp.EndDocument {
			return nil, fmt.Errorf("document has no root element")
		}
		if event == xpp.StartTag {
			break
		}
	}

	value, err := readElement(p)
	if err != nil {
		return nil, err
	}

	switch root := value.(type) {
	case map[string]any:
		return root, nil
	case string:
		return map[string]any{"#text": root}, nil
	default:
		return map[string]any{}, nil
	}
}

// readElement consumes the element whose start tag was just read and
// returns nil, a string or a map.
func readElement(p *xpp.XMLPullParser) (any, error) {
	node := map[string]any{}
	for _, attr := range p.Attrs {
		node["@"+attr.Name.Local] = attr.Value
	}

	var text strings.Builder
	for {
		event, err := p.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read XML: %w", err)
		}

		switch event {
		case xpp.StartTag:
			name := p.Name
			child, err := readElement(p)
			if err != nil {
				return nil, err
			}
			addChild(node, name, child)
		case xpp.Text:
			text.WriteString(p.Text)
		case xpp.EndTag:
			value := strings.TrimSpace(text.String())
			if len(node) == 0 {
				if value == "" {
					return nil, nil
				}
				return value, nil
			}
			if value != "" {
				node["#text"] = value
			}
			return node, nil
		case xpp.EndDocument:
			return nil, fmt.Errorf("unexpected end of document")
		}
	}
}

func addChild(node map[string]any, name string, child any) {
	existing, ok := node[name]
	if !ok {
		node[name] = child
		return
	}
	if list, isList := existing.([]any); isList {
		node[name] = append(list, child)
		return
	}
	node[name] = []any{existing, child}
}
