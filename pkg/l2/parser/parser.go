// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package parser

import (
	"strings"

	"github.com/consensys/go-l2/pkg/l2"
	"github.com/consensys/go-l2/pkg/util/source"
	"github.com/consensys/go-l2/pkg/util/source/sexp"
)

// Parse accepts a given source file representing an L2 program, such as
// "(@main (@main 0 ...) (@f 2 ...))", and translates it into a program or
// some number of syntax errors.
func Parse(srcfile *source.File) (*l2.Program, []source.SyntaxError) {
	term, srcmap, err := sexp.Parse(srcfile)
	//
	if err != nil {
		return nil, []source.SyntaxError{*err}
	}
	//
	p := &Parser{srcmap}
	//
	return p.parseProgram(term)
}

// ParseFunction accepts a given source file containing exactly one L2
// function, such as "(@f 0 ...)".
func ParseFunction(srcfile *source.File) (*l2.Function, []source.SyntaxError) {
	term, srcmap, err := sexp.Parse(srcfile)
	//
	if err != nil {
		return nil, []source.SyntaxError{*err}
	}
	//
	p := &Parser{srcmap}
	//
	return p.parseFunction(term)
}

// SpillRequest captures a request to spill a single variable of a function,
// using a given prefix for the fresh variables introduced.
type SpillRequest struct {
	Function *l2.Function
	Variable l2.Variable
	Prefix   l2.Variable
}

// ParseSpillRequest accepts a source file of the form "(@f 0 ...) %v %S"
// identifying a function, the variable to spill and the prefix to use.
func ParseSpillRequest(srcfile *source.File) (*SpillRequest, []source.SyntaxError) {
	terms, srcmap, err := sexp.ParseAll(srcfile)
	//
	if err != nil {
		return nil, []source.SyntaxError{*err}
	} else if len(terms) != 3 {
		span := source.NewSpan(0, len(srcfile.Contents()))
		return nil, []source.SyntaxError{*srcfile.SyntaxError(span, "expected function, variable and prefix")}
	}
	//
	var (
		p          = &Parser{srcmap}
		errs       []source.SyntaxError
		fn, errors = p.parseFunction(terms[0])
	)
	//
	errs = append(errs, errors...)
	//
	variable, e1 := p.parseVariable(terms[1])
	prefix, e2 := p.parseVariable(terms[2])
	//
	errs = append(append(errs, e1...), e2...)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	return &SpillRequest{fn, variable, prefix}, nil
}

// Parser translates S-Expressions into L2 programs, whilst retaining a source
// map for reporting errors.
type Parser struct {
	srcmap *source.Map[sexp.SExp]
}

func (p *Parser) parseProgram(term sexp.SExp) (*l2.Program, []source.SyntaxError) {
	var (
		list   = term.AsList()
		errors []source.SyntaxError
	)
	//
	if list == nil || list.Len() == 0 {
		return nil, p.errors(term, "expected program")
	}
	//
	entry, ok := p.parseItem(list.Get(0)).(l2.FunctionName)
	if !ok {
		return nil, p.errors(list.Get(0), "expected entry function name")
	}
	//
	program := &l2.Program{Entry: entry.Name}
	//
	for _, t := range list.Elements[1:] {
		fn, errs := p.parseFunction(t)
		//
		if len(errs) > 0 {
			errors = append(errors, errs...)
		} else if program.Function(fn.Name) != nil {
			errors = append(errors, p.errors(t, "duplicate function")...)
		} else {
			program.Functions = append(program.Functions, fn)
		}
	}
	//
	if len(errors) > 0 {
		return nil, errors
	} else if program.Function(entry.Name) == nil {
		return nil, p.errors(list.Get(0), "unknown entry function")
	}
	//
	return program, nil
}

func (p *Parser) parseFunction(term sexp.SExp) (*l2.Function, []source.SyntaxError) {
	var (
		list   = term.AsList()
		code   []l2.Instruction
		errors []source.SyntaxError
	)
	//
	if list == nil || list.Len() < 2 {
		return nil, p.errors(term, "expected function")
	}
	//
	name, ok := p.parseItem(list.Get(0)).(l2.FunctionName)
	if !ok {
		return nil, p.errors(list.Get(0), "expected function name")
	}
	//
	arity, ok := p.parseItem(list.Get(1)).(l2.Number)
	if !ok || arity.Value < 0 {
		return nil, p.errors(list.Get(1), "expected function arity")
	}
	//
	for _, t := range list.Elements[2:] {
		insn, errs := p.parseInstruction(t)
		//
		if len(errs) > 0 {
			errors = append(errors, errs...)
		} else {
			code = append(code, insn)
		}
	}
	//
	if len(errors) > 0 {
		return nil, errors
	}
	//
	return l2.NewFunction(name.Name, arity.Value, code), nil
}

func (p *Parser) parseVariable(term sexp.SExp) (l2.Variable, []source.SyntaxError) {
	if v, ok := p.parseItem(term).(l2.Variable); ok {
		return v, nil
	}
	//
	return l2.Variable{}, p.errors(term, "expected variable")
}

func (p *Parser) parseInstruction(term sexp.SExp) (l2.Instruction, []source.SyntaxError) {
	// Labels are written without enclosing parentheses.
	if symbol := term.AsSymbol(); symbol != nil {
		if label, ok := p.parseItem(symbol).(l2.Label); ok {
			return &l2.DefineLabel{Label: label}, nil
		}
		//
		return nil, p.errors(term, "expected label or instruction")
	}
	//
	list := term.AsList()
	//
	switch {
	case list.Len() == 0:
		return nil, p.errors(term, "empty instruction")
	case list.Len() == 1:
		return p.parseUnaryInstruction(list)
	case list.Symbol(0) == "goto":
		return p.parseGoto(list)
	case list.Symbol(0) == "call":
		return p.parseCall(list)
	case list.Symbol(0) == "cjump":
		return p.parseCJump(list)
	case list.Symbol(0) == "mem":
		return p.parseMemoryInstruction(list)
	case list.Len() < 3:
		return nil, p.errors(term, "unknown instruction")
	}
	// Everything else has the form "w op ..."
	switch op := list.Symbol(1); op {
	case "<-":
		return p.parseAssignment(list)
	case "+=", "-=", "*=", "&=":
		return p.parseArithmetic(list)
	case "<<=", ">>=":
		return p.parseShift(list)
	case "@":
		return p.parseLea(list)
	default:
		return nil, p.errors(list.Get(1), "unknown operator")
	}
}

// Parse "(return)", "(w++)" or "(w--)".
func (p *Parser) parseUnaryInstruction(list *sexp.List) (l2.Instruction, []source.SyntaxError) {
	var symbol = list.Symbol(0)
	//
	switch {
	case symbol == "return":
		return &l2.Return{}, nil
	case strings.HasSuffix(symbol, "++") || strings.HasSuffix(symbol, "--"):
		dst, ok := parseWritable(parseSymbol(symbol[:len(symbol)-2]))
		if !ok {
			return nil, p.errors(list, "expected register or variable")
		}
		//
		return &l2.IncDec{Dst: dst, Increment: strings.HasSuffix(symbol, "++")}, nil
	default:
		return nil, p.errors(list, "unknown instruction")
	}
}

// Parse "(goto :L)"
func (p *Parser) parseGoto(list *sexp.List) (l2.Instruction, []source.SyntaxError) {
	if list.Len() != 2 {
		return nil, p.errors(list, "malformed goto")
	}
	//
	target, ok := p.parseItem(list.Get(1)).(l2.Label)
	if !ok {
		return nil, p.errors(list.Get(1), "expected label")
	}
	//
	return &l2.Goto{Target: target}, nil
}

// Parse "(call u N)" where u is a function name, register, variable or runtime
// function.
func (p *Parser) parseCall(list *sexp.List) (l2.Instruction, []source.SyntaxError) {
	if list.Len() != 3 {
		return nil, p.errors(list, "malformed call")
	}
	//
	args, ok := p.parseItem(list.Get(2)).(l2.Number)
	if !ok || args.Value < 0 {
		return nil, p.errors(list.Get(2), "expected number of arguments")
	}
	//
	if kind, ok := l2.RUNTIME_CALLS[list.Symbol(1)]; ok {
		return &l2.Call{Kind: kind, Args: args}, nil
	}
	//
	switch callee := p.parseItem(list.Get(1)).(type) {
	case l2.FunctionName, l2.Variable:
		return &l2.Call{Kind: l2.USER_CALL, Callee: callee, Args: args}, nil
	case l2.Register:
		if callee.Name != l2.RSP {
			return &l2.Call{Kind: l2.USER_CALL, Callee: callee, Args: args}, nil
		}
	}
	//
	return nil, p.errors(list.Get(1), "invalid callee")
}

// Parse "(cjump t cmp t :L)"
func (p *Parser) parseCJump(list *sexp.List) (l2.Instruction, []source.SyntaxError) {
	if list.Len() != 5 {
		return nil, p.errors(list, "malformed cjump")
	}
	//
	lhs, e1 := p.parseValue(list.Get(1))
	op, e2 := p.parseCmpOp(list.Get(2))
	rhs, e3 := p.parseValue(list.Get(3))
	//
	target, ok := p.parseItem(list.Get(4)).(l2.Label)
	if !ok {
		return nil, p.errors(list.Get(4), "expected label")
	}
	//
	if errs := concat(e1, e2, e3); len(errs) > 0 {
		return nil, errs
	}
	//
	return &l2.CJump{Op: op, Lhs: lhs, Rhs: rhs, Target: target}, nil
}

// Parse "(mem x M <- s)", "(mem x M += t)" or "(mem x M -= t)"
func (p *Parser) parseMemoryInstruction(list *sexp.List) (l2.Instruction, []source.SyntaxError) {
	if list.Len() != 5 {
		return nil, p.errors(list, "malformed memory instruction")
	}
	//
	dst, errs := p.parseMemory(list, 0)
	if len(errs) > 0 {
		return nil, errs
	}
	//
	src := p.parseItem(list.Get(4))
	//
	switch list.Symbol(3) {
	case "<-":
		if _, ok := src.(l2.Memory); ok || src == nil {
			return nil, p.errors(list.Get(4), "invalid source")
		}
		//
		return &l2.Assign{Dst: dst, Src: src}, nil
	case "+=", "-=":
		val, errs := p.parseValue(list.Get(4))
		if len(errs) > 0 {
			return nil, errs
		}
		//
		return &l2.MemArith{Op: arithOp(list.Symbol(3)), Lhs: dst, Rhs: val}, nil
	default:
		return nil, p.errors(list.Get(3), "unknown operator")
	}
}

// Parse "(w <- s)", "(w <- mem x M)", "(w <- stack-arg M)" or "(w <- t cmp t)"
func (p *Parser) parseAssignment(list *sexp.List) (l2.Instruction, []source.SyntaxError) {
	dst, ok := parseWritable(p.parseItem(list.Get(0)))
	if !ok {
		return nil, p.errors(list.Get(0), "expected register or variable")
	}
	//
	switch {
	case list.Len() == 3:
		src := p.parseItem(list.Get(2))
		//
		switch src.(type) {
		case l2.Register, l2.Variable, l2.Number, l2.Label, l2.FunctionName:
			return &l2.Assign{Dst: dst, Src: src}, nil
		default:
			return nil, p.errors(list.Get(2), "invalid source")
		}
	case list.Len() == 4 && list.Symbol(2) == "stack-arg":
		offset, ok := p.parseItem(list.Get(3)).(l2.Number)
		if !ok {
			return nil, p.errors(list.Get(3), "expected offset")
		}
		//
		return &l2.StackArg{Dst: dst, Offset: offset}, nil
	case list.Len() == 5 && list.Symbol(2) == "mem":
		src, errs := p.parseMemory(list, 2)
		if len(errs) > 0 {
			return nil, errs
		}
		//
		return &l2.Assign{Dst: dst, Src: src}, nil
	case list.Len() == 5:
		lhs, e1 := p.parseValue(list.Get(2))
		op, e2 := p.parseCmpOp(list.Get(3))
		rhs, e3 := p.parseValue(list.Get(4))
		//
		if errs := concat(e1, e2, e3); len(errs) > 0 {
			return nil, errs
		}
		//
		return &l2.Compare{Dst: dst, Op: op, Lhs: lhs, Rhs: rhs}, nil
	default:
		return nil, p.errors(list, "malformed assignment")
	}
}

// Parse "(w aop t)", "(w += mem x M)" or "(w -= mem x M)"
func (p *Parser) parseArithmetic(list *sexp.List) (l2.Instruction, []source.SyntaxError) {
	var op = arithOp(list.Symbol(1))
	//
	dst, ok := parseWritable(p.parseItem(list.Get(0)))
	if !ok {
		return nil, p.errors(list.Get(0), "expected register or variable")
	}
	//
	if list.Len() == 5 && list.Symbol(2) == "mem" && (op == l2.ADD_ASSIGN || op == l2.SUB_ASSIGN) {
		src, errs := p.parseMemory(list, 2)
		if len(errs) > 0 {
			return nil, errs
		}
		//
		return &l2.MemArith{Op: op, Lhs: dst, Rhs: src}, nil
	} else if list.Len() != 3 {
		return nil, p.errors(list, "malformed arithmetic")
	}
	//
	src, errs := p.parseValue(list.Get(2))
	if len(errs) > 0 {
		return nil, errs
	}
	//
	return &l2.Arith{Op: op, Dst: dst, Src: src}, nil
}

// Parse "(w sop sx)" or "(w sop N)"
func (p *Parser) parseShift(list *sexp.List) (l2.Instruction, []source.SyntaxError) {
	var op = l2.SHL_ASSIGN
	//
	if list.Len() != 3 {
		return nil, p.errors(list, "malformed shift")
	} else if list.Symbol(1) == ">>=" {
		op = l2.SHR_ASSIGN
	}
	//
	dst, ok := parseWritable(p.parseItem(list.Get(0)))
	if !ok {
		return nil, p.errors(list.Get(0), "expected register or variable")
	}
	//
	switch src := p.parseItem(list.Get(2)).(type) {
	case l2.Number, l2.Variable:
		return &l2.Shift{Op: op, Dst: dst, Src: src}, nil
	case l2.Register:
		if src.Name == l2.RCX {
			return &l2.Shift{Op: op, Dst: dst, Src: src}, nil
		}
	}
	//
	return nil, p.errors(list.Get(2), "shift amount must be rcx, a variable or a number")
}

// Parse "(w @ w w E)"
func (p *Parser) parseLea(list *sexp.List) (l2.Instruction, []source.SyntaxError) {
	if list.Len() != 5 {
		return nil, p.errors(list, "malformed lea")
	}
	//
	dst, ok1 := parseWritable(p.parseItem(list.Get(0)))
	base, ok2 := parseWritable(p.parseItem(list.Get(2)))
	index, ok3 := parseWritable(p.parseItem(list.Get(3)))
	//
	if !ok1 || !ok2 || !ok3 {
		return nil, p.errors(list, "expected register or variable")
	}
	//
	scale, ok := p.parseItem(list.Get(4)).(l2.Number)
	if !ok || (scale.Value != 1 && scale.Value != 2 && scale.Value != 4 && scale.Value != 8) {
		return nil, p.errors(list.Get(4), "scale must be 1, 2, 4 or 8")
	}
	//
	return &l2.Lea{Dst: dst, Base: base, Index: index, Scale: scale}, nil
}

// Parse a memory operand "mem x M" starting at a given position in a list.
func (p *Parser) parseMemory(list *sexp.List, start int) (l2.Memory, []source.SyntaxError) {
	if list.Symbol(start) != "mem" {
		return l2.Memory{}, p.errors(list.Get(start), "expected memory operand")
	}
	//
	base, ok := parseWritable(p.parseItem(list.Get(start + 1)))
	if !ok {
		// The stack pointer is a valid base, though it is not writable.
		if r, isReg := p.parseItem(list.Get(start + 1)).(l2.Register); isReg {
			base, ok = r, true
		}
	}
	//
	if !ok {
		return l2.Memory{}, p.errors(list.Get(start+1), "expected register or variable")
	}
	//
	offset, ok := p.parseItem(list.Get(start + 2)).(l2.Number)
	if !ok || offset.Value%8 != 0 {
		return l2.Memory{}, p.errors(list.Get(start+2), "offset must be a multiple of 8")
	}
	//
	return l2.NewMemory(base, offset.Value), nil
}

// Parse a value "t", which is either a register, variable or number.
func (p *Parser) parseValue(term sexp.SExp) (l2.Item, []source.SyntaxError) {
	switch item := p.parseItem(term).(type) {
	case l2.Register, l2.Variable, l2.Number:
		return item, nil
	}
	//
	return nil, p.errors(term, "expected register, variable or number")
}

func (p *Parser) parseCmpOp(term sexp.SExp) (l2.CmpOp, []source.SyntaxError) {
	if s := term.AsSymbol(); s != nil {
		switch s.Value {
		case "<":
			return l2.LT, nil
		case "<=":
			return l2.LTEQ, nil
		case "=":
			return l2.EQ, nil
		}
	}
	//
	return l2.LT, p.errors(term, "expected comparison")
}

// Parse an atomic item (i.e. anything other than a memory operand), returning
// nil if the term does not denote such an item.
func (p *Parser) parseItem(term sexp.SExp) l2.Item {
	if s := term.AsSymbol(); s != nil {
		return parseSymbol(s.Value)
	}
	//
	return nil
}

func (p *Parser) errors(term sexp.SExp, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.srcmap.SyntaxError(term, msg)}
}

func parseSymbol(symbol string) l2.Item {
	switch {
	case l2.IsRegisterName(symbol):
		return l2.NewRegister(symbol)
	case len(symbol) > 1 && symbol[0] == '%' && isIdentifier(symbol[1:]):
		return l2.NewVariable(symbol[1:])
	case len(symbol) > 1 && symbol[0] == ':' && isIdentifier(symbol[1:]):
		return l2.NewLabel(symbol[1:])
	case len(symbol) > 1 && symbol[0] == '@' && isIdentifier(symbol[1:]):
		return l2.NewFunctionName(symbol[1:])
	}
	//
	if n, ok := sexp.NewSymbol(symbol).Int(); ok {
		return l2.NewNumber(n)
	}
	//
	return nil
}

// Check an item can be written, meaning it is a variable or a general purpose
// register.
func parseWritable(item l2.Item) (l2.Item, bool) {
	switch item := item.(type) {
	case l2.Variable:
		return item, true
	case l2.Register:
		return item, item.Name != l2.RSP
	}
	//
	return nil, false
}

func isIdentifier(name string) bool {
	for i, c := range name {
		letter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		//
		if !letter && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}
	//
	return len(name) > 0
}

func arithOp(symbol string) l2.ArithOp {
	switch symbol {
	case "+=":
		return l2.ADD_ASSIGN
	case "-=":
		return l2.SUB_ASSIGN
	case "*=":
		return l2.MUL_ASSIGN
	default:
		return l2.AND_ASSIGN
	}
}

func concat(errs ...[]source.SyntaxError) []source.SyntaxError {
	var result []source.SyntaxError
	//
	for _, e := range errs {
		result = append(result, e...)
	}
	//
	return result
}
