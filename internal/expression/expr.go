package expression

// Expr is a tokenized expression ready for evaluation.
type Expr struct {
	Source string
	tokens []Token
}

func ParseExpr(source string) (*Expr, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}

	return &Expr{
		Source: source,
		tokens: tokens,
	}, nil
}

func (e *Expr) Tokens() []Token {
	return append([]Token(nil), e.tokens...)
}

func (e *Expr) Evaluate() (Number, error) {
	return Evaluate(e.tokens)
}

func (e *Expr) String() string {
	return e.Source
}

// Eval tokenizes and evaluates source.
func Eval(source string) (Number, error) {
	expr, err := ParseExpr(source)
	if err != nil {
		return Number{}, err
	}
	return expr.Evaluate()
}
