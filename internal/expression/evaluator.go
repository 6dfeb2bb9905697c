package expression

import (
	"github.com/karupanerura/lrcalc/internal/types"
)

// Evaluate reduces tokens to a single Number. Groups are evaluated first, then
// operators are applied strictly left to right with no precedence.
func Evaluate(tokens []Token) (Number, error) {
	if len(tokens) == 0 {
		return Number{}, types.NewError(types.EmptyExpressionTag, types.NoPos, "nothing to evaluate")
	}

	matches, err := matchGroups(tokens)
	if err != nil {
		return Number{}, err
	}

	e := evaluator{tokens: tokens, matches: matches}
	return e.evaluateSpan(0, len(tokens), types.NoPos)
}

// matchGroups returns, for every GroupOpenToken index, the index of its
// matching GroupCloseToken.
func matchGroups(tokens []Token) ([]int, error) {
	matches := make([]int, len(tokens))

	var stack []int
	for i, tok := range tokens {
		switch tok.Kind {
		case GroupOpenToken:
			stack = append(stack, i)
		case GroupCloseToken:
			if len(stack) == 0 {
				return nil, types.NewError(types.UnbalancedGroupsTag, tok.BeginsPos(), "unmatched %q", ")")
			}
			matches[stack[len(stack)-1]] = i
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		tok := tokens[stack[len(stack)-1]]
		return nil, types.NewError(types.UnbalancedGroupsTag, tok.BeginsPos(), "unterminated %q", "(")
	}

	return matches, nil
}

type evaluator struct {
	tokens  []Token
	matches []int
}

// evaluateSpan evaluates tokens[begins:ends]. openPos is the position of the
// enclosing group, reported when the span is empty.
func (e *evaluator) evaluateSpan(begins, ends, openPos int) (Number, error) {
	if begins == ends {
		return Number{}, types.NewError(types.EmptyExpressionTag, openPos, "empty group")
	}

	// sized by direct children only; nested spans get their own buffer
	children := 0
	for i := begins; i < ends; i++ {
		if e.tokens[i].Kind == GroupOpenToken {
			i = e.matches[i]
		}
		children++
	}

	flat := make([]Token, 0, children)
	for i := begins; i < ends; i++ {
		tok := e.tokens[i]
		if tok.Kind != GroupOpenToken {
			flat = append(flat, tok)
			continue
		}

		closeIdx := e.matches[i]
		v, err := e.evaluateSpan(i+1, closeIdx, tok.BeginsPos())
		if err != nil {
			return Number{}, err
		}
		if tok.Negated {
			negated, ok := v.neg()
			if !ok {
				overflow := types.NewError(types.OverflowTag, tok.BeginsPos(), "-(%s) exceeds the representable range", v)
				overflow.Extra = map[string]any{"operator": Subtract.String(), "rhs": v}
				return Number{}, overflow
			}
			v = negated
		}

		flat = append(flat, numberTok(v, tok.BeginsPos(), e.tokens[closeIdx].EndsPos()))
		i = closeIdx
	}

	return reduce(flat)
}

// reduce folds a flat Number/Operator sequence into an accumulator.
func reduce(flat []Token) (Number, error) {
	first := flat[0]
	if first.Kind != NumberToken {
		return Number{}, types.NewError(types.MalformedExpressionTag, first.BeginsPos(), "expression starts with operator %q", first)
	}

	acc := first.Number
	for i := 1; i < len(flat); i += 2 {
		opTok := flat[i]
		if opTok.Kind != OperatorToken {
			return Number{}, types.NewError(types.MalformedExpressionTag, opTok.BeginsPos(), "missing operator before %q", opTok)
		}
		if i+1 == len(flat) {
			return Number{}, types.NewError(types.MalformedExpressionTag, opTok.BeginsPos(), "expression ends with operator %q", opTok)
		}

		rhs := flat[i+1]
		if rhs.Kind != NumberToken {
			return Number{}, types.NewError(types.MalformedExpressionTag, rhs.BeginsPos(), "operator %q followed by operator %q", opTok, rhs)
		}

		var err error
		acc, err = binaryOperation{operator: opTok.Operator, pos: opTok.BeginsPos()}.apply(acc, rhs.Number)
		if err != nil {
			return Number{}, err
		}
	}

	return acc, nil
}
