package content

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// nitfBlocks walks body.content of a NITF document.
func nitfBlocks(data []byte) ([]Block, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse body markup: %w", err)
	}

	bodyContent := doc.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == "body.content"
	}).First()
	if bodyContent.Length() == 0 {
		return []Block{}, nil
	}

	blocks := []Block{}
	collectNITF(bodyContent, &blocks)
	return blocks, nil
}

func collectNITF(parent *goquery.Selection, blocks *[]Block) {
	parent.Children().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "p":
			if block, ok := textBlock(s); ok {
				*blocks = append(*blocks, block)
			}
		case "hl2":
			if text := strings.TrimSpace(s.Text()); text != "" {
				*blocks = append(*blocks, Block{Kind: BlockHeader, Content: text, Level: 2})
			}
		case "table":
			if html, err := goquery.OuterHtml(s); err == nil {
				*blocks = append(*blocks, Block{Kind: BlockRawHTML, Content: html})
			}
		case "block":
			collectNITF(s, blocks)
		}
	})
}

// markupBlocks converts an HTML fragment into blocks. Paragraphs nested in
// quotes or lists belong to their container.
func markupBlocks(html string) ([]Block, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse body markup: %w", err)
	}

	blocks := []Block{}
	doc.Find("p, h2, h3, h4, blockquote, ul, ol").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("blockquote, ul, ol").Length() > 0 {
			return
		}

		switch name := goquery.NodeName(s); name {
		case "p":
			if block, ok := textBlock(s); ok {
				blocks = append(blocks, block)
			}
		case "h2", "h3", "h4":
			if text := strings.TrimSpace(s.Text()); text != "" {
				blocks = append(blocks, Block{Kind: BlockHeader, Content: text, Level: int(name[1] - '0')})
			}
		case "blockquote":
			if text := strings.TrimSpace(s.Text()); text != "" {
				blocks = append(blocks, Block{Kind: BlockQuote, Content: text})
			}
		case "ul", "ol":
			var items []string
			s.Find("li").Each(func(_ int, li *goquery.Selection) {
				if text := strings.TrimSpace(li.Text()); text != "" {
					items = append(items, text)
				}
			})
			if len(items) > 0 {
				blocks = append(blocks, Block{Kind: BlockList, Ordered: name == "ol", Items: items})
			}
		}
	})

	return blocks, nil
}

func textBlock(s *goquery.Selection) (Block, bool) {
	if strings.TrimSpace(s.Text()) == "" {
		return Block{}, false
	}
	html, err := s.Html()
	if err != nil {
		return Block{}, false
	}
	return Block{Kind: BlockText, Content: strings.TrimSpace(html)}, true
}
