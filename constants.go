package main

//
// CONSTANTS
//

// arena and buffer sizing
const arenaBlockSize = 32 * 1024          // bytes per SimpleHeap block
const derefBufExpandIncrement = 32 * 1024 // deref buffer grows in multiples of this
const largeDerefBufSize = 4 * 1024 * 1024 // buffers above this are reclaimed when idle
const largeVarFreeSize = 4 * 1024 * 1024  // VAR_FREE_IF_LARGE threshold

// variable allocation policy
const maxAllocSimple = 64 // largest capacity taken from the arena for a variable
const maxPath = 260

const defaultMaxVarCapacity = 64 * 1024 * 1024
const defaultMaxDerefBuffer = 64 * 1024 * 1024

// expression limits
const maxTokens = 512          // infix tokens per expression
const maxExprMemItems = 100    // heap blocks tracked per expression
const exprSmallMemLimit = 4096 // single scratch allocation limit
const exprSmallMemTotal = 8192 // cumulative scratch per expression
const maxFuncParams = 32       // hard cap on parameters of any function

// ResultType is the status code passed back up through every call boundary.
type ResultType int8

const (
	FAIL ResultType = iota
	OK
	EARLY_RETURN
	EARLY_EXIT
)

var resultNames = [...]string{"FAIL", "OK", "EARLY_RETURN", "EARLY_EXIT"}

func (r ResultType) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return sf("ResultType(%d)", int8(r))
}

// variable kinds
const (
	VAR_NORMAL uint8 = iota
	VAR_ALIAS
	VAR_CLIPBOARD
	VAR_BUILTIN
)

// how a variable's storage was obtained
const (
	ALLOC_NONE uint8 = iota
	ALLOC_SIMPLE
	ALLOC_MALLOC
)

// variable attributes
const (
	VAR_ATTRIB_BINARY uint8 = 1 << iota
	VAR_ATTRIB_STATIC
	VAR_ATTRIB_PARAM
	VAR_ATTRIB_LOCAL
)

// Free() modes
const (
	VAR_ALWAYS_FREE uint8 = iota
	VAR_ALWAYS_FREE_BUT_EXCLUDE_STATIC
	VAR_NEVER_FREE
	VAR_FREE_IF_LARGE
)

// argument classification, fixed at load time
const (
	ARG_TYPE_NORMAL uint8 = iota
	ARG_TYPE_INPUT_VAR
	ARG_TYPE_OUTPUT_VAR
)

// deref kinds found by the loader
const (
	DEREF_VAR uint8 = iota
	DEREF_FUNC
	DEREF_DOUBLE
)

// line actions
const (
	ACT_INVALID uint8 = iota
	ACT_ASSIGN
	ACT_ASSIGNEXPR
	ACT_EXPRESSION
	ACT_IF
	ACT_ELSE
	ACT_BLOCK_BEGIN
	ACT_BLOCK_END
	ACT_RETURN
	ACT_EXIT
	ACT_GLOBAL
	ACT_LOCAL
	ACT_STATIC
	ACT_ECHO
	ACT_STRINGUPPER
	ACT_STRINGLOWER
	ACT_STRINGLEN
	ACT_ENVSET
	ACT_ENVGET
)

var actionNames = [...]string{"invalid", "=", ":=", "expression", "if", "else", "{", "}", "return", "exit",
	"global", "local", "static", "Echo", "StringUpper", "StringLower", "StringLen", "EnvSet", "EnvGet"}

// ExecUntil modes
const (
	NORMAL_MODE uint8 = iota
	UNTIL_BLOCK_END
	ONLY_ONE_LINE
)

// expression symbols. operands come first so that a single comparison
// against SYM_OPERAND_END tells operands and operators apart.
type SymbolType uint8

const (
	SYM_STRING SymbolType = iota // explicit quoted literal
	SYM_INTEGER
	SYM_FLOAT
	SYM_OPERAND // text whose type is decided when it is used
	SYM_VAR
	SYM_OPERAND_END
	SYM_BEGIN
	SYM_OPAREN
	SYM_CPAREN
	SYM_COMMA
	SYM_OR
	SYM_AND
	SYM_LOWNOT
	SYM_EQUAL
	SYM_EQUALCASE
	SYM_NOTEQUAL
	SYM_GT
	SYM_LT
	SYM_GTOE
	SYM_LTOE
	SYM_CONCAT
	SYM_BITOR
	SYM_BITXOR
	SYM_BITAND
	SYM_BITSHIFTLEFT
	SYM_BITSHIFTRIGHT
	SYM_ADD
	SYM_SUBTRACT
	SYM_MULTIPLY
	SYM_DIVIDE
	SYM_FLOORDIVIDE
	SYM_NEGATIVE
	SYM_POSITIVE
	SYM_HIGHNOT
	SYM_BITNOT
	SYM_ADDRESS
	SYM_POWER
	SYM_DEREF
	SYM_FUNC
	SYM_COUNT
)

var symbolNames = [SYM_COUNT]string{
	"string", "integer", "float", "operand", "var", "", "begin",
	"(", ")", ",", "or", "and", "not", "=", "==", "!=", ">", "<", ">=", "<=", ".",
	"|", "^", "&", "<<", ">>", "+", "-", "*", "/", "//",
	"neg", "pos", "!", "~", "addr", "**", "deref", "func",
}

func (s SymbolType) String() string {
	if s < SYM_COUNT {
		return symbolNames[s]
	}
	return sf("SymbolType(%d)", uint8(s))
}

// precedence, low to high. parens and function markers are never
// popped by an operator so they sit at zero.
var prectable = [SYM_COUNT]int8{
	SYM_OPAREN:        0,
	SYM_FUNC:          0,
	SYM_OR:            4,
	SYM_AND:           6,
	SYM_LOWNOT:        8,
	SYM_EQUAL:         10,
	SYM_EQUALCASE:     10,
	SYM_NOTEQUAL:      10,
	SYM_GT:            12,
	SYM_LT:            12,
	SYM_GTOE:          12,
	SYM_LTOE:          12,
	SYM_CONCAT:        14,
	SYM_BITOR:         16,
	SYM_BITXOR:        18,
	SYM_BITAND:        20,
	SYM_BITSHIFTLEFT:  22,
	SYM_BITSHIFTRIGHT: 22,
	SYM_ADD:           24,
	SYM_SUBTRACT:      24,
	SYM_MULTIPLY:      26,
	SYM_DIVIDE:        26,
	SYM_FLOORDIVIDE:   26,
	SYM_NEGATIVE:      28,
	SYM_POSITIVE:      28,
	SYM_HIGHNOT:       28,
	SYM_BITNOT:        28,
	SYM_ADDRESS:       28,
	SYM_POWER:         30,
	SYM_DEREF:         32,
}

// log levels (RFC 5424)
const (
	LOG_EMERG = iota
	LOG_ALERT
	LOG_CRIT
	LOG_ERR
	LOG_WARNING
	LOG_NOTICE
	LOG_INFO
	LOG_DEBUG
)

// driver exit codes
const (
	ERR_SYNTAX int = iota + 1
	ERR_FATAL
	ERR_EVAL
	ERR_FILE
	ERR_CONFIG
)
