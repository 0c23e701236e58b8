package main

import (
	"errors"
	"fmt"
)

func isPrefixOp(s SymbolType) bool {
	switch s {
	case SYM_NEGATIVE, SYM_POSITIVE, SYM_HIGHNOT, SYM_LOWNOT, SYM_BITNOT, SYM_ADDRESS, SYM_DEREF:
		return true
	}
	return false
}

var (
	errMissingOpenParen  = fmt.Errorf("%w: missing \"(\"", errExprSyntax)
	errMissingCloseParen = fmt.Errorf("%w: missing \")\"", errExprSyntax)
	errMisplacedComma    = fmt.Errorf("%w: misplaced comma", errExprSyntax)
)

// toPostfix reorders infix tokens for evaluation with an operator stack.
// Prefix operators are stacked without popping anything, which lets them
// bind to the operand that follows (2**-2). Binary operators are left
// associative. Each AND/OR is recorded in the circuit field of the token
// that completes its left branch.
func toPostfix(infix []ExprToken) ([]*ExprToken, error) {
	postfix := make([]*ExprToken, 0, len(infix))
	stack := make([]*ExprToken, 0, 16)
	top := func() *ExprToken {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}
	pop := func() *ExprToken {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return t
	}

	for i := range infix {
		t := &infix[i]
		sym := t.symbol
		switch {
		case t.isOperand():
			postfix = append(postfix, t)

		case sym == SYM_FUNC:
			t.params = 0
			stack = append(stack, t)

		case sym == SYM_OPAREN:
			if i > 0 && infix[i-1].symbol == SYM_FUNC && i+1 < len(infix) && infix[i+1].symbol != SYM_CPAREN {
				infix[i-1].params = 1
			}
			stack = append(stack, t)

		case sym == SYM_COMMA:
			for top() != nil && top().symbol != SYM_OPAREN {
				postfix = append(postfix, pop())
			}
			if len(stack) < 2 || stack[len(stack)-2].symbol != SYM_FUNC {
				return nil, errMisplacedComma
			}
			if i+1 == len(infix) || infix[i+1].symbol == SYM_COMMA || infix[i+1].symbol == SYM_CPAREN {
				return nil, errMisplacedComma
			}
			fn := stack[len(stack)-2]
			fn.params++
			if fn.params > maxFuncParams {
				return nil, errTooManyParams
			}

		case sym == SYM_CPAREN:
			for top() != nil && top().symbol != SYM_OPAREN {
				postfix = append(postfix, pop())
			}
			if top() == nil {
				return nil, errMissingOpenParen
			}
			pop()
			if top() != nil && top().symbol == SYM_FUNC {
				postfix = append(postfix, pop())
			}

		case isPrefixOp(sym):
			stack = append(stack, t)

		default:
			for {
				s := top()
				if s == nil || s.symbol == SYM_OPAREN || s.symbol == SYM_FUNC || prectable[s.symbol] < prectable[sym] {
					break
				}
				postfix = append(postfix, pop())
			}
			if sym == SYM_AND || sym == SYM_OR {
				if len(postfix) == 0 {
					return nil, fmt.Errorf("%w: missing operand", errExprSyntax)
				}
				postfix[len(postfix)-1].circuit = t
			}
			stack = append(stack, t)
		}
	}
	for len(stack) > 0 {
		t := pop()
		if t.symbol == SYM_OPAREN || t.symbol == SYM_FUNC {
			return nil, errMissingCloseParen
		}
		postfix = append(postfix, t)
	}
	return postfix, nil
}

// errStackUnderflow is raised when an operator finds too few operands.
var errStackUnderflow = errors.New("expression is missing an operand")
