package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Format identifies the structured-data format of a front matter block.
type Format string

const (
	FormatYAML Format = "yaml" // --- ... --- (or ...)
	FormatTOML Format = "toml" // +++ ... +++
)

// KindFrontMatter is the node kind of FrontMatterBlock.
var KindFrontMatter = gmast.NewNodeKind("FrontMatter")

// FrontMatterBlock is a fenced metadata block on the first line of a document.
type FrontMatterBlock struct {
	gmast.BaseBlock
	Format Format
	// End is the byte offset just past the closing fence marker.
	End int
}

func (n *FrontMatterBlock) Kind() gmast.NodeKind { return KindFrontMatter }

func (n *FrontMatterBlock) IsRaw() bool { return true }

func (n *FrontMatterBlock) Dump(source []byte, level int) {
	gmast.DumpHelper(n, source, level, map[string]string{"Format": string(n.Format)}, nil)
}

// Raw returns the block content between the fences.
func (n *FrontMatterBlock) Raw(source []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}

// FrontMatter is a located metadata block.
type FrontMatter struct {
	Format Format
	Raw    []byte
	End    int
}

// LocateFrontMatter parses source and returns the first front matter block in
// document order.
func (p *Pipeline) LocateFrontMatter(source []byte) (FrontMatter, bool) {
	doc := p.Parse(source)

	var found *FrontMatterBlock
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if block, ok := n.(*FrontMatterBlock); ok {
			found = block
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	if found == nil {
		return FrontMatter{}, false
	}
	return FrontMatter{Format: found.Format, Raw: found.Raw(source), End: found.End}, true
}

type fences struct{}

// FrontMatterFences is a goldmark extension that parses a leading `---` (YAML)
// or `+++` (TOML) fenced block into a FrontMatterBlock and renders it as nothing.
// An opening fence without a closing fence is left to the other block parsers.
var FrontMatterFences goldmark.Extender = &fences{}

func (e *fences) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(util.Prioritized(fenceParser{}, 0)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(fenceRenderer{}, 0)))
}

type fenceParser struct{}

func (fenceParser) Trigger() []byte { return []byte{'-', '+'} }

func (fenceParser) Open(parent gmast.Node, reader text.Reader, _ parser.Context) (gmast.Node, parser.State) {
	if parent.Kind() != gmast.KindDocument {
		return nil, parser.NoChildren
	}
	if lineNum, _ := reader.Position(); lineNum != 0 {
		return nil, parser.NoChildren
	}

	line, segment := reader.PeekLine()
	format, ok := openingFence(line)
	if !ok {
		return nil, parser.NoChildren
	}
	if !hasClosingFence(reader.Source()[segment.Stop:], format) {
		return nil, parser.NoChildren
	}
	return &FrontMatterBlock{Format: format}, parser.NoChildren
}

func (fenceParser) Continue(node gmast.Node, reader text.Reader, _ parser.Context) parser.State {
	block := node.(*FrontMatterBlock)
	line, segment := reader.PeekLine()
	if isClosingFence(line, block.Format) {
		block.End = segment.Start + 3
		reader.Advance(segment.Len())
		return parser.Close
	}
	node.Lines().Append(segment)
	return parser.Continue | parser.NoChildren
}

func (fenceParser) Close(gmast.Node, text.Reader, parser.Context) {}

func (fenceParser) CanInterruptParagraph() bool { return false }

func (fenceParser) CanAcceptIndentedLine() bool { return false }

type fenceRenderer struct{}

func (fenceRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindFrontMatter, func(util.BufWriter, []byte, gmast.Node, bool) (gmast.WalkStatus, error) {
		return gmast.WalkSkipChildren, nil
	})
}

func trimLine(line []byte) []byte {
	return bytes.TrimRight(line, " \t\r\n")
}

func openingFence(line []byte) (Format, bool) {
	switch string(trimLine(line)) {
	case "---":
		return FormatYAML, true
	case "+++":
		return FormatTOML, true
	}
	return "", false
}

func isClosingFence(line []byte, format Format) bool {
	marker := string(trimLine(line))
	switch format {
	case FormatYAML:
		return marker == "---" || marker == "..."
	case FormatTOML:
		return marker == "+++"
	}
	return false
}

func hasClosingFence(rest []byte, format Format) bool {
	for len(rest) > 0 {
		line := rest
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i+1], rest[i+1:]
		} else {
			rest = nil
		}
		if isClosingFence(line, format) {
			return true
		}
	}
	return false
}

// StartsWithFence reports whether the first line of source is an opening
// metadata fence, closed or not.
func StartsWithFence(source []byte) bool {
	line, _, _ := bytes.Cut(source, []byte{'\n'})
	_, ok := openingFence(line)
	return ok
}
