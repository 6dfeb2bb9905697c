package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type ErrorTag string

const (
	// lexer
	UnrecognizedSymbolTag ErrorTag = "UnrecognizedSymbol"
	InvalidNumberTag      ErrorTag = "InvalidNumber"

	// evaluator
	EmptyExpressionTag     ErrorTag = "EmptyExpression"
	MalformedExpressionTag ErrorTag = "MalformedExpression"
	UnbalancedGroupsTag    ErrorTag = "UnbalancedGroups"
	DivisionByZeroTag      ErrorTag = "DivisionByZero"
	OverflowTag            ErrorTag = "Overflow"
)

type Stage string

const (
	LexStage     Stage = "LexError"
	EvalStage    Stage = "EvalError"
	UnknownStage Stage = "UnknownError"
)

func (t ErrorTag) Stage() Stage {
	switch t {
	case UnrecognizedSymbolTag, InvalidNumberTag:
		return LexStage
	case EmptyExpressionTag, MalformedExpressionTag, UnbalancedGroupsTag, DivisionByZeroTag, OverflowTag:
		return EvalStage
	default:
		return UnknownStage
	}
}

// sentinels for errors.Is; they match any *Error carrying the same tag.
var (
	ErrUnrecognizedSymbol  = &Error{Tag: UnrecognizedSymbolTag, Pos: NoPos}
	ErrInvalidNumber       = &Error{Tag: InvalidNumberTag, Pos: NoPos}
	ErrEmptyExpression     = &Error{Tag: EmptyExpressionTag, Pos: NoPos}
	ErrMalformedExpression = &Error{Tag: MalformedExpressionTag, Pos: NoPos}
	ErrUnbalancedGroups    = &Error{Tag: UnbalancedGroupsTag, Pos: NoPos}
	ErrDivisionByZero      = &Error{Tag: DivisionByZeroTag, Pos: NoPos}
	ErrOverflow            = &Error{Tag: OverflowTag, Pos: NoPos}
)

// NoPos marks an error that is not tied to a source position.
const NoPos = -1

type Exception interface {
	error
	Exception() any
}

type Error struct {
	Tag ErrorTag
	Err error

	// Pos is the 0-based character offset in the source, or NoPos.
	Pos int
	// Symbol is set for UnrecognizedSymbol.
	Symbol rune

	Extra map[string]any
}

var _ Exception = (*Error)(nil)

func NewError(tag ErrorTag, pos int, format string, args ...any) *Error {
	return &Error{
		Tag: tag,
		Pos: pos,
		Err: fmt.Errorf(format, args...),
	}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Tag.Stage()))
	b.WriteString("::")
	b.WriteString(string(e.Tag))
	if e.Tag == UnrecognizedSymbolTag && e.Symbol != 0 {
		fmt.Fprintf(&b, "(%q, %d)", e.Symbol, e.Pos)
	} else if e.Pos != NoPos {
		fmt.Fprintf(&b, " at %d", e.Pos)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Tag == t.Tag
}

func (e *Error) Exception() any {
	tags := []any{e.Tag.Stage()}
	for err := error(e); err != nil; err = errors.Unwrap(err) {
		if e, ok := err.(*Error); ok {
			tags = append(tags, e.Tag)
		}
	}

	o := map[string]any{
		"tags": tags,
	}
	if e.Err != nil {
		o["message"] = e.Err.Error()
	}
	if e.Pos != NoPos {
		o["pos"] = e.Pos
	}
	if e.Symbol != 0 {
		o["symbol"] = string(e.Symbol)
	}
	if len(e.Extra) != 0 {
		o = lo.Assign(o, e.Extra)
	}
	return o
}

// TagOf returns the tag of the first *Error in err's chain.
func TagOf(err error) (ErrorTag, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Tag, true
	}
	return "", false
}
