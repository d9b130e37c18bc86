package nomut

import (
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"
)

// NodeKind classifies syntax nodes for logging, warnings and dumps.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindProgram
	KindBlock
	KindExpressionStatement
	KindVariableStatement
	KindLexicalDeclaration
	KindFunctionDeclaration
	KindClassDeclaration
	KindReturn
	KindIf
	KindFor
	KindForIn
	KindForOf
	KindWhile
	KindDoWhile
	KindSwitch
	KindTry
	KindThrow
	KindLabelled
	KindBranch
	KindEmpty
	KindIdentifier
	KindLiteral
	KindTemplate
	KindArray
	KindObject
	KindFunction
	KindArrow
	KindClass
	KindCall
	KindNew
	KindMember
	KindAssign
	KindUnary
	KindUpdate
	KindBinary
	KindConditional
	KindSequence
	KindOptional
	KindSpread
	KindThis
	KindPattern
	KindOther
)

func (k NodeKind) String() string {
	switch k {
	case KindProgram:
		return "program"
	case KindBlock:
		return "block"
	case KindExpressionStatement:
		return "expression-statement"
	case KindVariableStatement:
		return "var"
	case KindLexicalDeclaration:
		return "lexical"
	case KindFunctionDeclaration:
		return "function-declaration"
	case KindClassDeclaration:
		return "class-declaration"
	case KindReturn:
		return "return"
	case KindIf:
		return "if"
	case KindFor:
		return "for"
	case KindForIn:
		return "for-in"
	case KindForOf:
		return "for-of"
	case KindWhile:
		return "while"
	case KindDoWhile:
		return "do-while"
	case KindSwitch:
		return "switch"
	case KindTry:
		return "try"
	case KindThrow:
		return "throw"
	case KindLabelled:
		return "labelled"
	case KindBranch:
		return "branch"
	case KindEmpty:
		return "empty"
	case KindIdentifier:
		return "identifier"
	case KindLiteral:
		return "literal"
	case KindTemplate:
		return "template"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindArrow:
		return "arrow"
	case KindClass:
		return "class"
	case KindCall:
		return "call"
	case KindNew:
		return "new"
	case KindMember:
		return "member"
	case KindAssign:
		return "assign"
	case KindUnary:
		return "unary"
	case KindUpdate:
		return "update"
	case KindBinary:
		return "binary"
	case KindConditional:
		return "conditional"
	case KindSequence:
		return "sequence"
	case KindOptional:
		return "optional"
	case KindSpread:
		return "spread"
	case KindThis:
		return "this"
	case KindPattern:
		return "pattern"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of n.
func KindOf(n ast.Node) NodeKind {
	switch n := n.(type) {
	case nil:
		return KindUnknown
	case *ast.Program:
		return KindProgram
	case *ast.BlockStatement:
		return KindBlock
	case *ast.ExpressionStatement:
		return KindExpressionStatement
	case *ast.VariableStatement:
		return KindVariableStatement
	case *ast.LexicalDeclaration:
		return KindLexicalDeclaration
	case *ast.FunctionDeclaration:
		return KindFunctionDeclaration
	case *ast.ClassDeclaration:
		return KindClassDeclaration
	case *ast.ReturnStatement:
		return KindReturn
	case *ast.IfStatement:
		return KindIf
	case *ast.ForStatement:
		return KindFor
	case *ast.ForInStatement:
		return KindForIn
	case *ast.ForOfStatement:
		return KindForOf
	case *ast.WhileStatement:
		return KindWhile
	case *ast.DoWhileStatement:
		return KindDoWhile
	case *ast.SwitchStatement:
		return KindSwitch
	case *ast.TryStatement:
		return KindTry
	case *ast.ThrowStatement:
		return KindThrow
	case *ast.LabelledStatement:
		return KindLabelled
	case *ast.BranchStatement:
		return KindBranch
	case *ast.EmptyStatement:
		return KindEmpty
	case *ast.Identifier:
		return KindIdentifier
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.BooleanLiteral, *ast.NullLiteral, *ast.RegExpLiteral:
		return KindLiteral
	case *ast.TemplateLiteral:
		return KindTemplate
	case *ast.ArrayLiteral:
		return KindArray
	case *ast.ObjectLiteral:
		return KindObject
	case *ast.FunctionLiteral:
		return KindFunction
	case *ast.ArrowFunctionLiteral:
		return KindArrow
	case *ast.ClassLiteral:
		return KindClass
	case *ast.CallExpression:
		return KindCall
	case *ast.NewExpression:
		return KindNew
	case *ast.DotExpression, *ast.BracketExpression, *ast.PrivateDotExpression:
		return KindMember
	case *ast.AssignExpression:
		return KindAssign
	case *ast.UnaryExpression:
		if n.Operator == token.INCREMENT || n.Operator == token.DECREMENT {
			return KindUpdate
		}
		return KindUnary
	case *ast.BinaryExpression:
		return KindBinary
	case *ast.ConditionalExpression:
		return KindConditional
	case *ast.SequenceExpression:
		return KindSequence
	case *ast.OptionalChain, *ast.Optional:
		return KindOptional
	case *ast.SpreadElement:
		return KindSpread
	case *ast.ThisExpression:
		return KindThis
	case *ast.ArrayPattern, *ast.ObjectPattern:
		return KindPattern
	default:
		return KindOther
	}
}
