package expression

import "fmt"

type TokenKind int

const (
	NumberToken TokenKind = iota
	OperatorToken
	GroupOpenToken
	GroupCloseToken
)

func (k TokenKind) String() string {
	switch k {
	case NumberToken:
		return "Number"
	case OperatorToken:
		return "Operator"
	case GroupOpenToken:
		return "GroupOpen"
	case GroupCloseToken:
		return "GroupClose"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

type Operator int

const (
	Add Operator = iota
	Subtract
	Multiply
	Divide
)

var operatorSymbols = map[Operator]string{
	Add:      "+",
	Subtract: "-",
	Multiply: "*",
	Divide:   "/",
}

var symbolOperators = map[byte]Operator{
	'+': Add,
	'-': Subtract,
	'*': Multiply,
	'/': Divide,
}

func (o Operator) String() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

type rangeToken struct {
	beginsPos, endsPos int
}

func (t rangeToken) BeginsPos() int {
	return t.beginsPos
}

func (t rangeToken) EndsPos() int {
	return t.endsPos
}

// Token is one lexical unit. Only the field matching Kind is meaningful.
type Token struct {
	rangeToken
	Kind TokenKind

	Number   Number   // NumberToken
	Operator Operator // OperatorToken
	Negated  bool     // GroupOpenToken preceded by a unary minus
}

func numberTok(n Number, begins, ends int) Token {
	return Token{Kind: NumberToken, Number: n, rangeToken: rangeToken{beginsPos: begins, endsPos: ends}}
}

func operatorTok(op Operator, pos int) Token {
	return Token{Kind: OperatorToken, Operator: op, rangeToken: rangeToken{beginsPos: pos, endsPos: pos + 1}}
}

func groupOpenTok(negated bool, begins, ends int) Token {
	return Token{Kind: GroupOpenToken, Negated: negated, rangeToken: rangeToken{beginsPos: begins, endsPos: ends}}
}

func groupCloseTok(pos int) Token {
	return Token{Kind: GroupCloseToken, rangeToken: rangeToken{beginsPos: pos, endsPos: pos + 1}}
}

// NewNumberToken, NewOperatorToken, NewGroupOpenToken and NewGroupCloseToken
// build tokens without position information, for callers that assemble a
// sequence by hand.
func NewNumberToken(n Number) Token {
	return Token{Kind: NumberToken, Number: n}
}

func NewOperatorToken(op Operator) Token {
	return Token{Kind: OperatorToken, Operator: op}
}

func NewGroupOpenToken(negated bool) Token {
	return Token{Kind: GroupOpenToken, Negated: negated}
}

func NewGroupCloseToken() Token {
	return Token{Kind: GroupCloseToken}
}

func (t Token) String() string {
	switch t.Kind {
	case NumberToken:
		return t.Number.String()
	case OperatorToken:
		return t.Operator.String()
	case GroupOpenToken:
		if t.Negated {
			return "-("
		}
		return "("
	case GroupCloseToken:
		return ")"
	default:
		return t.Kind.String()
	}
}
