package expression

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/karupanerura/lrcalc/internal/types"
)

// Tokenize converts source into a token sequence.
func Tokenize(source string) ([]Token, error) {
	lex := newLexer(source)

	var tokens []Token
	for {
		tok, err := lex.consume()
		if errors.Is(err, io.EOF) {
			return tokens, nil
		} else if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

type lexer struct {
	source string
	index  int

	emitted  bool
	lastKind TokenKind
}

func newLexer(source string) *lexer {
	return &lexer{
		source: source,
		index:  0,
	}
}

func (l *lexer) emit(t Token) (Token, error) {
	l.emitted = true
	l.lastKind = t.Kind
	return t, nil
}

// signAllowed reports whether a '-' at the current index can be a unary sign.
func (l *lexer) signAllowed() bool {
	return !l.emitted || l.lastKind == OperatorToken || l.lastKind == GroupOpenToken
}

func (l *lexer) consume() (Token, error) {
	for l.index != len(l.source) {
		switch c := l.source[l.index]; c {
		case ' ', '\t', '\n', '\r':
			l.index++ // just skip white spaces
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.':
			return l.consumeNumber(l.index, l.index)
		case '(':
			l.index++
			return l.emit(groupOpenTok(false, l.index-1, l.index))
		case ')':
			l.index++
			return l.emit(groupCloseTok(l.index - 1))
		case '-':
			if l.signAllowed() {
				next := l.skipSpaces(l.index + 1)
				if next != len(l.source) {
					if n := l.source[next]; '0' <= n && n <= '9' {
						return l.consumeNumber(l.index, next)
					} else if n == '(' {
						begins := l.index
						l.index = next + 1
						return l.emit(groupOpenTok(true, begins, l.index))
					}
				}
			}
			l.index++
			return l.emit(operatorTok(Subtract, l.index-1))
		case '+', '*', '/':
			l.index++
			return l.emit(operatorTok(symbolOperators[c], l.index-1))
		default:
			r, _ := utf8.DecodeRuneInString(l.source[l.index:])
			return Token{}, &types.Error{
				Tag:    types.UnrecognizedSymbolTag,
				Pos:    l.charPos(l.index),
				Symbol: r,
			}
		}
	}

	return Token{}, io.EOF
}

// consumeNumber reads a literal whose digits start at digitsIdx. beginsIdx is
// the index of its sign when one was absorbed, otherwise equal to digitsIdx.
func (l *lexer) consumeNumber(beginsIdx, digitsIdx int) (Token, error) {
	end := digitsIdx
	for end != len(l.source) {
		if c := l.source[end]; ('0' <= c && c <= '9') || c == '.' {
			end++
			continue
		}
		break
	}
	l.index = end

	digits := l.source[digitsIdx:end]
	switch {
	case strings.Count(digits, ".") > 1:
		return Token{}, types.NewError(types.InvalidNumberTag, l.charPos(beginsIdx), "%q has more than one decimal point", digits)
	case strings.HasPrefix(digits, "."):
		return Token{}, types.NewError(types.InvalidNumberTag, l.charPos(beginsIdx), "%q has no integer part", digits)
	case strings.HasSuffix(digits, "."):
		return Token{}, types.NewError(types.InvalidNumberTag, l.charPos(beginsIdx), "%q has no fractional part", digits)
	}

	literal := digits
	if beginsIdx != digitsIdx {
		literal = "-" + digits
	}

	if strings.IndexByte(literal, '.') == -1 {
		v, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return Token{}, &types.Error{Tag: types.InvalidNumberTag, Pos: l.charPos(beginsIdx), Err: err}
		}
		return l.emit(numberTok(Int(v), beginsIdx, end))
	}

	v, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return Token{}, &types.Error{Tag: types.InvalidNumberTag, Pos: l.charPos(beginsIdx), Err: err}
	}
	return l.emit(numberTok(Float(v), beginsIdx, end))
}

func (l *lexer) skipSpaces(i int) int {
	for i != len(l.source) {
		switch l.source[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

// charPos converts a byte index into a character offset. Only error paths use
// it: every emitted token precedes the first non-ASCII byte, so token
// positions are byte indexes.
func (l *lexer) charPos(i int) int {
	return utf8.RuneCountInString(l.source[:i])
}
