package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:px|mm)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	tokenNames   = symbolNames()
	newlineToken = tokenType("Newline")
	lbraceToken  = tokenType("LBrace")
	rbraceToken  = tokenType("RBrace")
	symbolToken  = tokenType("Symbol")
	stringToken  = tokenType("String")

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document 是 .cert 模板文件的根节点。
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'template' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section 是顶层分区（meta/resources/page）。
type Section struct {
	Meta      *MetaSection      `parser:"  @@"`
	Resources *ResourcesSection `parser:"| @@"`
	Page      *PageSection      `parser:"| @@"`
}

// Kind 返回分区类型名。
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Resources != nil:
		return "resources"
	case s.Page != nil:
		return "page"
	default:
		return "unknown"
	}
}

// MetaSection 是 meta 分区，只含赋值语句。
type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

// ResourcesSection 是 resources 分区，目前只声明命名颜色。
type ResourcesSection struct {
	Block *Block `parser:"'resources' @@"`
}

// PageSection 描述证书页面，头部为坐标单位与 Y 轴原点。
type PageSection struct {
	Spec  PageSpec `parser:"'page' @@"`
	Block *Block   `parser:"@@"`
}

// PageSpec 保存页面头部记号，例如 `page px top`。
type PageSpec struct {
	Unit   string    `parser:"@Ident"`
	Params []*Lexeme `parser:"@@*"`
}

// Block 是花括号包围的语句列表，语句以换行或分号分隔。
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement 是赋值、命令或文本字面量之一。
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Command    *Command     `parser:"| @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment uses colon syntax (key: value). 键可以是标识符或带引号的字符串（用于 glyph-dx 等按字符索引的对象）。
type Assignment struct {
	Key   Key    `parser:"@(Ident | String)"`
	Value *Value `parser:"':' Newline* @@"`
}

// Command 是页面命令，例如 text、stamp、stamps player、debug grid。
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

// TextLiteral 是块内单独的字符串语句，作为 text 的简写。
type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// Value 是赋值语句的右值。
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Object *InlineObject  `parser:"| @@"`
	Expr   *Expression    `parser:"| @@"`
}

// Literal 返回值的文本形式：字符串去引号，数字与颜色保留原文，表达式按记号拼接。
// 数组与对象没有单一文本形式，返回空串。
func (v *Value) Literal() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Expr != nil:
		var b strings.Builder
		for _, p := range v.Expr.Parts {
			b.WriteString(p.Value)
		}
		return b.String()
	default:
		return ""
	}
}

// ArrayValue 是 [ ... ] 列表。
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// InlineObject 是 { key: value } 形式的内联对象。
type InlineObject struct {
	Entries []*Assignment `parser:"'{' Newline* ( @@ Newline* ( (',' | ';' | Newline+) Newline* @@ Newline* )* )? Newline* '}'"`
}

// Expression 是未加引号的值，例如 center、true、participants_names 或 黑体，按记号原样保存。
type Expression struct {
	Parts []*Lexeme
}

// Parse 收集记号直到值结束；圆括号与方括号内的分隔符与换行不结束表达式。
func (e *Expression) Parse(lex *lexer.PeekingLexer) error {
	depth := 0
	for !endsValue(lex.Peek(), depth) {
		l, err := take(lex)
		if err != nil {
			return err
		}
		switch l.Raw {
		case "(", "[":
			depth++
		case ")", "]":
			if depth > 0 {
				depth--
			}
		}
		e.Parts = append(e.Parts, l)
	}
	if len(e.Parts) == 0 {
		return participle.NextMatch
	}
	return nil
}

// Lexeme 是命令参数或表达式中的单个记号。字符串记号的 Value 已去引号，Raw 保留原文。
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse 让 Lexeme 作为语法原子使用：遇到换行、花括号或分号时停止。
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	if endsArg(lex.Peek()) {
		return participle.NextMatch
	}
	next, err := take(lex)
	if err != nil {
		return err
	}
	*l = *next
	return nil
}

// StringLiteral 在捕获时去掉引号。
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串缺少取值")
	}
	v, err := unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(v)
	return nil
}

// Key 是赋值语句的键，带引号时自动去引号。
type Key string

// Capture implements participle.Capture.
func (k *Key) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("键缺少取值")
	}
	v, err := unquote(values[0])
	if err != nil {
		return err
	}
	*k = Key(v)
	return nil
}

// Parse 从 io.Reader 解析模板，filename 仅用于错误定位。
func Parse(filename string, r io.Reader) (*Document, error) {
	return documentParser.Parse(filename, r)
}

// ParseString 从字符串解析模板。
func ParseString(filename, input string) (*Document, error) {
	return documentParser.ParseString(filename, input)
}

func take(lex *lexer.PeekingLexer) (*Lexeme, error) {
	tok := lex.Next()
	if tok.EOF() {
		return nil, participle.NextMatch
	}
	l := &Lexeme{Type: tokenNames[tok.Type], Value: tok.Value, Raw: tok.Value, Pos: tok.Pos}
	if l.Type == "" {
		l.Type = fmt.Sprintf("#%d", tok.Type)
	}
	if tok.Type == stringToken {
		v, err := strconv.Unquote(tok.Value)
		if err != nil {
			return nil, err
		}
		l.Value = v
	}
	return l, nil
}

func endsArg(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case newlineToken, lbraceToken, rbraceToken:
		return true
	case symbolToken:
		return tok.Value == ";"
	}
	return false
}

// endsValue 判断值是否结束；depth 为未闭合的括号层数。
func endsValue(tok *lexer.Token, depth int) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	if depth > 0 {
		return false
	}
	if endsArg(tok) {
		return true
	}
	return tok.Type == symbolToken && (tok.Value == "," || tok.Value == "]")
}

func unquote(raw string) (string, error) {
	if strings.HasPrefix(raw, `"`) {
		return strconv.Unquote(raw)
	}
	return raw, nil
}

func tokenType(name string) lexer.TokenType {
	tt, ok := dslLexer.Symbols()[name]
	if !ok {
		panic("dsl: 未定义的记号 " + name)
	}
	return tt
}

func symbolNames() map[lexer.TokenType]string {
	out := map[lexer.TokenType]string{}
	for name, tt := range dslLexer.Symbols() {
		out[tt] = name
	}
	return out
}
