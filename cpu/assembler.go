// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/pbrain/word"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

var (
	reLabel     = regexp.MustCompile(`^[A-Za-z_.@][A-Za-z0-9_.@]*$`)
	rePointer   = regexp.MustCompile(`^[Pp][0-3]$`)
	reRegister  = regexp.MustCompile(`^[Rr][0-3]$`)
	reTrapDigit = regexp.MustCompile(`^[Rr]?[0-9]$`)
	reParen     = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Assembler is a single pass macro assembler for the PBrain12.
type Assembler struct {
	Verbose    bool         // If set, verbosely logs the assembler actions.
	Logger     hclog.Logger // Destination of verbose logging.
	Statements []Statement  // List of generated statements.

	predefine   map[string]string   // Predefines
	Label       map[string]int      // Map of labels to program counters.
	Equate      map[string]string   // Map of equates.
	Macro       map[string](*Macro) // Map of macros.
	memRequired int                 // Memory requested by .mem
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

func (asm *Assembler) logger() hclog.Logger {
	if asm.Logger == nil {
		return hclog.NewNullLogger()
	}
	return asm.Logger
}

// valueOf returns the value of a simple word.
// Numbers are decimal, even with leading zeros, unless prefixed by 0x, 0o or 0b.
func (asm *Assembler) valueOf(text string) (value int, err error) {
	base := 10
	digits := strings.ToLower(strings.TrimLeft(text, "+-"))
	if len(digits) > 1 && digits[0] == '0' && strings.ContainsRune("xob", rune(digits[1])) {
		base = 0
	}

	v64, err := strconv.ParseInt(text, base, 32)
	if err != nil {
		err = ErrParseNumber(text)
		return
	}

	value = int(v64)
	return
}

// field encodes a numeric operand of width digits. A label is left as
// zeros and returned for linking.
func (asm *Assembler) field(text string, width int) (digits string, label string, err error) {
	limit := 1
	for range width {
		limit *= 10
	}

	value, err := asm.valueOf(text)
	if err != nil {
		if !reLabel.MatchString(text) {
			err = ErrParseOperand(text)
			return
		}
		err = nil
		label = text
		value = 0
	}

	if value < 0 || value >= limit {
		err = ErrValueRange{Value: value, Limit: limit}
		return
	}

	tmp := make([]byte, width)
	word.Encode(tmp, value)
	digits = string(tmp)
	return
}

// pointerOf returns the operand characters of a pointer register.
func pointerOf(text string) (operand string, err error) {
	if !rePointer.MatchString(text) {
		err = ErrParseOperand(text)
		return
	}
	operand = strings.ToUpper(text)
	return
}

// registerOf returns the operand characters of a general register.
func registerOf(text string) (operand string, err error) {
	if !reRegister.MatchString(text) {
		err = ErrParseOperand(text)
		return
	}
	operand = strings.ToUpper(text)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v int
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(v)
	}
	for key, pc := range asm.Label {
		pred[key] = starlark.MakeInt(pc)
	}
	err = nil

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// parseLine parses a single line into words, handling equates, labels,
// and macro expansion.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentPc()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}
		words = nil
		return
	}

	return
}

// currentPc gets the program counter of the next statement.
func (asm *Assembler) currentPc() int {
	return len(asm.Statements)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Statements = asm.Statements[:0]
	asm.memRequired = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			asm.logger().Debug("parse", "lineno", lineno, "text", text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Statements {
		st := &asm.Statements[n]

		if len(st.LinkLabel) == 0 {
			continue
		}
		label := st.LinkLabel
		pc, ok := asm.Label[label]
		if !ok {
			lineno = st.LineNo
			line = strings.Join(st.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		var tmp string
		tmp, _, err = asm.field(strconv.Itoa(pc), st.LinkWidth)
		if err != nil {
			lineno = st.LineNo
			line = strings.Join(st.Words, " ")
			return
		}
		copy(st.Code[st.LinkField:], tmp)
	}

	mem := asm.memRequired
	if mem == 0 {
		mem = asm.currentPc()
	} else if mem < asm.currentPc() {
		err = ErrMemTooSmall
		return
	}

	prog = &Program{
		MemRequired: mem,
		Statements:  slices.Clone(asm.Statements),
	}

	return
}

// operandCount is the number of source operands of each format.
var operandCount = map[word.Format]int{
	word.FORMAT_NONE:     0,
	word.FORMAT_PTR_IMM:  2,
	word.FORMAT_IMM:      1,
	word.FORMAT_PTR:      1,
	word.FORMAT_ADDR:     1,
	word.FORMAT_REG_PTR:  2,
	word.FORMAT_REG_ADDR: 2,
	word.FORMAT_REG_REG:  2,
	word.FORMAT_REG:      1,
	word.FORMAT_TRAP:     2,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var code word.Word
	var label string
	var linkField, linkWidth int
	var emit bool

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || !emit {
			return
		}
		st := Statement{
			LineNo:    lineno,
			Pc:        asm.currentPc(),
			Words:     initial_words,
			Code:      code,
			LinkLabel: label,
			LinkField: linkField,
			LinkWidth: linkWidth,
		}
		asm.Statements = append(asm.Statements, st)
	}()

	args := words[1:]

	switch words[0] {
	case ".mem":
		if len(args) != 1 {
			err = ErrMemSyntax
			return
		}
		asm.memRequired, err = asm.valueOf(args[0])
		if err == nil && asm.memRequired <= 0 {
			err = ErrMemSyntax
		}
		return
	case ".word":
		if len(args) != 1 {
			err = ErrWordSyntax
			return
		}
		var digits string
		digits, label, err = asm.field(args[0], 4)
		if err != nil {
			return
		}
		code = word.Make(0, digits)
		linkField, linkWidth = 2, 4
		emit = true
		return
	case ".raw":
		var ok bool
		if len(args) != 1 || len(args[0]) != word.SIZE {
			err = ErrRawSyntax
			return
		}
		code, ok = word.Parse(args[0])
		if !ok {
			err = ErrRawSyntax
		}
		emit = true
		return
	}

	op, ok := word.ParseOpcode(strings.ToLower(words[0]))
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	format := op.Format()
	need := operandCount[format]
	if len(args) > need {
		err = ErrOpcodeExtraArgs
		return
	}
	if len(args) < need {
		err = ErrOpcodeValueMissing
		return
	}

	var a, b string
	switch format {
	case word.FORMAT_PTR_IMM:
		a, err = pointerOf(args[0])
		if err == nil {
			b, label, err = asm.field(args[1], 2)
			linkField, linkWidth = 4, 2
		}
	case word.FORMAT_IMM:
		a, label, err = asm.field(args[0], 4)
		linkField, linkWidth = 2, 4
	case word.FORMAT_PTR:
		a, err = pointerOf(args[0])
	case word.FORMAT_ADDR:
		a, label, err = asm.field(args[0], 2)
		linkField, linkWidth = 2, 2
	case word.FORMAT_REG_PTR:
		a, err = registerOf(args[0])
		if err == nil {
			b, err = pointerOf(args[1])
		}
	case word.FORMAT_REG_ADDR:
		a, err = registerOf(args[0])
		if err == nil {
			b, label, err = asm.field(args[1], 2)
			linkField, linkWidth = 4, 2
		}
	case word.FORMAT_REG_REG:
		a, err = registerOf(args[0])
		if err == nil {
			b, err = registerOf(args[1])
		}
	case word.FORMAT_REG:
		a, err = registerOf(args[0])
	case word.FORMAT_TRAP:
		a, err = registerOf(args[0])
		if err == nil {
			if !reTrapDigit.MatchString(args[1]) {
				err = ErrParseOperand(args[1])
			} else {
				b = "R" + args[1][len(args[1])-1:]
			}
		}
	}
	if err != nil {
		return
	}

	code = word.Make(op, a, b)
	emit = true

	return
}
