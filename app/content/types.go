package content

type BlockKind string

const (
	BlockText    BlockKind = "text"
	BlockHeader  BlockKind = "header"
	BlockRawHTML BlockKind = "raw_html"
	BlockQuote   BlockKind = "quote"
	BlockList    BlockKind = "list"
)

// Block is one typed piece of a story body, in reading order.
type Block struct {
	Kind    BlockKind
	Content string
	Level   int      // headers only
	Ordered bool     // lists only
	Items   []string // lists only
}

type Body struct {
	Blocks []Block
	// Tree is the JSON form of an XML body, keyed the xmltodict way
	// ("@attr", "#text", repeated children as lists). Nil for HTML bodies.
	Tree map[string]any
}
