package core

// Block types of the target content model.
const (
	BlockRichText = "rich_text"
	BlockHeading  = "heading"
	BlockImage    = "image"
	BlockQuote    = "block_quote"
	BlockRawHTML  = "raw_html"
)

// Block is one typed unit of page content. Value is a string for rich_text
// and raw_html, and one of the *Value structs for the others.
type Block struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// HeadingValue is the payload of a heading block.
type HeadingValue struct {
	Importance string `json:"importance"`
	Text       string `json:"text"`
}

// QuoteValue is the payload of a block_quote block.
type QuoteValue struct {
	Quote       string `json:"quote"`
	Attribution string `json:"attribution"`
}

// ImageValue is the payload of an image block.
type ImageValue struct {
	Image     int64  `json:"image"`
	Caption   string `json:"caption"`
	Alignment string `json:"alignment"`
	Link      string `json:"link"`
}

// RichText builds a rich_text block.
func RichText(html string) Block { return Block{Type: BlockRichText, Value: html} }

// RawHTML builds a raw_html block.
func RawHTML(html string) Block { return Block{Type: BlockRawHTML, Value: html} }

// Heading builds a heading block; importance is "h1".."h6".
func Heading(importance, text string) Block {
	return Block{Type: BlockHeading, Value: HeadingValue{Importance: importance, Text: text}}
}

// Quote builds a block_quote block.
func Quote(quote, attribution string) Block {
	return Block{Type: BlockQuote, Value: QuoteValue{Quote: quote, Attribution: attribution}}
}

// Image builds an image block.
func Image(v ImageValue) Block { return Block{Type: BlockImage, Value: v} }
