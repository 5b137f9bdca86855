// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/magma/asm"
	"github.com/gogpu/magma/ir"
)

// binaryOperators maps two-input operations to their GLSL infix operator.
var binaryOperators = map[ir.Opcode]string{
	ir.OpAdd:    "+",
	ir.OpSub:    "-",
	ir.OpMul:    "*",
	ir.OpDiv:    "/",
	ir.OpMulMat: "*",
	ir.OpOr:     "||",
	ir.OpAnd:    "&&",
	ir.OpEq:     "==",
	ir.OpNEq:    "!=",
	ir.OpGt:     ">",
	ir.OpLs:     "<",
	ir.OpGEq:    ">=",
	ir.OpLEq:    "<=",
}

// intrinsicFunctions maps intrinsic opcodes to GLSL built-in functions.
// SATURATE has no direct equivalent and is written as clamp.
var intrinsicFunctions = map[ir.Opcode]string{
	ir.OpAbs:         "abs",
	ir.OpSign:        "sign",
	ir.OpSin:         "sin",
	ir.OpCos:         "cos",
	ir.OpTan:         "tan",
	ir.OpASin:        "asin",
	ir.OpACos:        "acos",
	ir.OpATan:        "atan",
	ir.OpSinH:        "sinh",
	ir.OpCosH:        "cosh",
	ir.OpTanH:        "tanh",
	ir.OpExp:         "exp",
	ir.OpExp2:        "exp2",
	ir.OpLog:         "log",
	ir.OpLog2:        "log2",
	ir.OpSqrt:        "sqrt",
	ir.OpRSqrt:       "inversesqrt",
	ir.OpFloor:       "floor",
	ir.OpCeil:        "ceil",
	ir.OpRound:       "round",
	ir.OpTrunc:       "trunc",
	ir.OpFract:       "fract",
	ir.OpDegrees:     "degrees",
	ir.OpRadians:     "radians",
	ir.OpNormalize:   "normalize",
	ir.OpLength:      "length",
	ir.OpTranspose:   "transpose",
	ir.OpInverse:     "inverse",
	ir.OpDeterminant: "determinant",
	ir.OpPow:         "pow",
	ir.OpMod:         "mod",
	ir.OpStep:        "step",
	ir.OpATan2:       "atan",
	ir.OpReflect:     "reflect",
	ir.OpMin:         "min",
	ir.OpMax:         "max",
	ir.OpDot:         "dot",
	ir.OpDistance:    "distance",
	ir.OpCross:       "cross",
	ir.OpSmple2D:     "texture",
}

// register is one of the three selector registers of the bytecode machine.
type register struct {
	index uint32
	set   bool
}

// Writer generates GLSL source code by interpreting a bytecode stream.
type Writer struct {
	options *Options
	code    *ir.Bytecode
	meta    *ir.MetaData

	// Output buffer
	out    strings.Builder
	indent int

	// Symbol table: variable index to GLSL expression.
	names map[uint32]string

	// Registers selected by VARIN0, VARIN1 and VAROUT.
	in0, in1, dst register

	// Scope nesting of the body; 0 is outside main.
	depth    int
	mainDone bool

	// Translation info
	extensions     []string
	uniformBlocks  map[string]string
	samplers       map[string]string
	inputLocations map[string]int
}

// newWriter creates a new GLSL writer.
func newWriter(code *ir.Bytecode, meta *ir.MetaData, options *Options) *Writer {
	return &Writer{
		options:        options,
		code:           code,
		meta:           meta,
		names:          make(map[uint32]string),
		uniformBlocks:  make(map[string]string),
		samplers:       make(map[string]string),
		inputLocations: make(map[string]int),
	}
}

// String returns the generated GLSL code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeShader generates the complete shader.
func (w *Writer) writeShader() error {
	// 1. Collect extensions needed by the interface
	w.collectExtensions()

	// 2. Write version directive, extensions and precision
	w.writeVersionDirective()
	w.writePrecisionQualifiers()

	// 3. Write uniforms
	if err := w.writeUniformBlocks(); err != nil {
		return err
	}
	w.writeSamplers()

	// 4. Write stage inputs and outputs
	if err := w.writeInputs(); err != nil {
		return err
	}
	if err := w.writeOutputs(); err != nil {
		return err
	}

	// 5. Interpret the body
	return w.writeBody()
}

// hasStageInterface reports whether the shader has vertex outputs or pixel
// inputs that need inter-stage locations.
func (w *Writer) hasStageInterface() bool {
	if w.meta.Kind == ir.ShaderPixel {
		return len(w.meta.Inputs) > 0
	}
	for _, v := range w.meta.Outputs {
		if v.Index != 0 {
			return true
		}
	}
	return false
}

// collectExtensions records the extensions the declarations will need.
func (w *Writer) collectExtensions() {
	if !w.hasStageInterface() || w.options.LangVersion.SupportsStageLocations() {
		return
	}
	if w.options.LangVersion.ES {
		w.extensions = append(w.extensions, "GL_EXT_separate_shader_objects")
	} else {
		w.extensions = append(w.extensions, "GL_ARB_separate_shader_objects")
	}
}

// writeVersionDirective writes the #version line and any extensions.
func (w *Writer) writeVersionDirective() {
	w.writeLine("#version %s", w.options.LangVersion.String())
	for _, ext := range w.extensions {
		w.writeLine("#extension %s : require", ext)
	}
	w.writeLine("")
}

// writePrecisionQualifiers writes precision qualifiers for ES.
func (w *Writer) writePrecisionQualifiers() {
	if !w.options.LangVersion.ES {
		return
	}

	precision := "mediump"
	if w.options.ForceHighPrecision {
		precision = "highp"
	}
	w.writeLine("precision %s float;", precision)
	w.writeLine("precision %s int;", precision)
	w.writeLine("precision %s sampler2D;", precision)
	w.writeLine("")
}

// writeUniformBlocks writes one std140 block per constant buffer.
func (w *Writer) writeUniformBlocks() error {
	for i, cb := range w.meta.ConstantBuffers {
		block := escapeName(cb.Name)
		w.uniformBlocks[cb.Name] = block

		if w.options.LangVersion.SupportsBindings() {
			w.writeLine("layout(std140, binding = %d) uniform %s", w.options.UniformBindingBase+uint32(i), block)
		} else {
			w.writeLine("layout(std140) uniform %s", block)
		}
		w.writeLine("{")
		w.pushIndent()
		for _, member := range w.meta.BufferMembers(cb.Index) {
			typeName, err := typeToGLSL(member.Type)
			if err != nil {
				return fmt.Errorf("constant buffer %s member %s: %w", cb.Name, member.Name, err)
			}
			name := fmt.Sprintf("buf_%d_%d", member.BufferIndex, member.BufferOffset)
			if err := w.bind(member.Index, name); err != nil {
				return err
			}
			w.writeLine("%s %s;", typeName, name)
		}
		w.popIndent()
		w.writeLine("};")
		w.writeLine("")
	}
	return nil
}

// writeSamplers writes one sampler2D uniform per texture.
func (w *Writer) writeSamplers() {
	if len(w.meta.Textures2D) == 0 {
		return
	}
	for i, tex := range w.meta.Textures2D {
		name := fmt.Sprintf("tex_%d", tex.Index)
		w.names[tex.Index] = name
		w.samplers[tex.Name] = name

		if w.options.LangVersion.SupportsBindings() {
			w.writeLine("layout(binding = %d) uniform %s %s;", w.options.TextureBindingBase+uint32(i), glslTypeSampler, name)
		} else {
			w.writeLine("uniform %s %s;", glslTypeSampler, name)
		}
	}
	w.writeLine("")
}

// writeInputs writes the stage inputs with consecutive locations.
func (w *Writer) writeInputs() error {
	if len(w.meta.Inputs) == 0 {
		return nil
	}
	for location, v := range w.meta.Inputs {
		typeName, err := interfaceTypeToGLSL(v.Type)
		if err != nil {
			return fmt.Errorf("input %s: %w", v.Name, err)
		}
		name := fmt.Sprintf("in_%d", v.Index)
		if err := w.bind(v.Index, name); err != nil {
			return err
		}
		w.inputLocations[v.Name] = location
		w.writeLine("layout(location = %d) in %s %s;", location, typeName, name)
	}
	w.writeLine("")
	return nil
}

// writeOutputs writes the stage outputs. Output index 0 is the built-in
// position of a vertex shader or the depth of a pixel shader.
func (w *Writer) writeOutputs() error {
	location := 0
	for _, v := range w.meta.Outputs {
		if v.Index == 0 {
			name, err := w.builtinOutput(v)
			if err != nil {
				return err
			}
			w.names[v.Index] = name
			continue
		}

		typeName, err := interfaceTypeToGLSL(v.Type)
		if err != nil {
			return fmt.Errorf("output %s: %w", v.Name, err)
		}
		name := fmt.Sprintf("out_%d", v.Index)
		if err := w.bind(v.Index, name); err != nil {
			return err
		}
		w.writeLine("layout(location = %d) out %s %s;", location, typeName, name)
		location++
	}
	if location > 0 {
		w.writeLine("")
	}
	return nil
}

// builtinOutput returns the GLSL built-in for output index 0.
func (w *Writer) builtinOutput(v ir.MetaVariable) (string, error) {
	if w.meta.Kind == ir.ShaderPixel {
		if v.Type != ir.TypeFloat1 {
			return "", ir.NewError(ir.ErrUnsupportedType, "pixel output %s maps to gl_FragDepth and must be FLOAT1, not %s", v.Name, v.Type)
		}
		return "gl_FragDepth", nil
	}
	if v.Type != ir.TypeFloat4 {
		return "", ir.NewError(ir.ErrUnsupportedType, "vertex output %s maps to gl_Position and must be FLOAT4, not %s", v.Name, v.Type)
	}
	return "gl_Position", nil
}

// bind records the GLSL name of a variable index.
func (w *Writer) bind(index uint32, name string) error {
	if prev, ok := w.names[index]; ok {
		return ir.NewError(ir.ErrInvalidBinary, "variable %d is bound to both %s and %s", index, prev, name)
	}
	w.names[index] = name
	return nil
}

// writeBody interprets the instruction stream into the main function.
func (w *Writer) writeBody() error {
	r := ir.NewReader(w.code.Code)
	for r.Next() {
		in := r.Instruction()
		if err := w.writeInstruction(in); err != nil {
			return fmt.Errorf("%s at offset %d: %w", in.Op, in.Offset, err)
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	if w.depth != 0 {
		return ir.NewError(ir.ErrInvalidBinary, "bytecode ends with %d unclosed scopes", w.depth)
	}
	if !w.mainDone {
		return ir.NewError(ir.ErrInvalidBinary, "bytecode has no shader body")
	}
	return nil
}

// writeInstruction emits the GLSL for one instruction. Register selection
// and declarations of registers emit nothing but update the writer state.
func (w *Writer) writeInstruction(in ir.Instruction) error {
	op := in.Op
	if w.depth == 0 && op != ir.OpOpScope {
		return ir.NewError(ir.ErrInvalidBinary, "instruction outside the shader body")
	}
	if w.options.WriterFlags&WriterFlagDebugInfo != 0 && op != ir.OpClScope {
		w.writeLine("// %04x %s", in.Offset, asm.FormatInstruction(in))
	}

	switch {
	case op.IsDecl():
		return w.writeDeclaration(op.DeclType(), in.Index())

	case op == ir.OpVarIn0:
		return w.selectRegister(&w.in0, in.Index())
	case op == ir.OpVarIn1:
		return w.selectRegister(&w.in1, in.Index())
	case op == ir.OpVarOut:
		return w.selectRegister(&w.dst, in.Index())

	case op == ir.OpAssign:
		return w.writeAssign(w.read(&w.in0))
	case op == ir.OpNot:
		return w.writeUnary("!")
	case op == ir.OpNegate:
		return w.writeUnary("-")

	case op.IsSet():
		return w.writeAssign(w.literal(in), nil)

	case op >= ir.OpAsXCmp && op <= ir.OpAsWCmp:
		dst, err := w.read(&w.dst)
		if err != nil {
			return err
		}
		src, err := w.read(&w.in0)
		if err != nil {
			return err
		}
		w.writeLine("%s.%c = %s;", dst, ir.ComponentLetters[op.Component()], src)
		return nil
	case op >= ir.OpGeXCmp && op <= ir.OpGeWCmp:
		src, err := w.read(&w.in0)
		if err != nil {
			return err
		}
		return w.writeAssign(fmt.Sprintf("%s.%c", src, ir.ComponentLetters[op.Component()]), nil)

	case op == ir.OpOpScope:
		return w.openScope()
	case op == ir.OpClScope:
		return w.closeScope()
	case op == ir.OpIf:
		cond, err := w.read(&w.in0)
		if err != nil {
			return err
		}
		w.writeLine("if (%s)", cond)
		return nil
	case op == ir.OpElse:
		w.writeLine("else")
		return nil
	case op == ir.OpWhile:
		w.writeLine("while (true)")
		return nil
	case op == ir.OpBreak:
		w.writeLine("break;")
		return nil
	case op == ir.OpReturn:
		w.writeLine("return;")
		return nil
	case op == ir.OpDiscard:
		if w.meta.Kind != ir.ShaderPixel {
			return ir.NewError(ir.ErrUnsupportedOpcode, "discard is only valid in pixel shaders")
		}
		w.writeLine("discard;")
		return nil

	case op == ir.OpSaturate:
		return w.writeAssign(w.call1("clamp", ", 0.0, 1.0"))
	}

	if sym, ok := binaryOperators[op]; ok {
		return w.writeBinary(sym)
	}
	if fn, ok := intrinsicFunctions[op]; ok {
		if op.Info().Inputs == 2 {
			return w.writeAssign(w.call2(fn))
		}
		return w.writeAssign(w.call1(fn, ""))
	}
	return ir.NewError(ir.ErrUnsupportedOpcode, "opcode %s has no GLSL lowering", op)
}

// writeDeclaration declares a local variable at the current indentation.
func (w *Writer) writeDeclaration(t ir.VariableType, index uint32) error {
	typeName, err := typeToGLSL(t)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("local_%d", index)
	if err := w.bind(index, name); err != nil {
		return err
	}
	w.writeLine("%s %s;", typeName, name)
	return nil
}

// selectRegister points a register at a declared variable.
func (w *Writer) selectRegister(reg *register, index uint32) error {
	if _, ok := w.names[index]; !ok {
		return ir.NewError(ir.ErrInvalidBinary, "variable %d is not declared", index)
	}
	*reg = register{index: index, set: true}
	return nil
}

// read returns the GLSL name held by a register.
func (w *Writer) read(reg *register) (string, error) {
	if !reg.set {
		return "", ir.NewError(ir.ErrInvalidBinary, "register read before it was selected")
	}
	return w.names[reg.index], nil
}

// writeAssign writes "out = value;".
func (w *Writer) writeAssign(value string, err error) error {
	if err != nil {
		return err
	}
	dst, err := w.read(&w.dst)
	if err != nil {
		return err
	}
	w.writeLine("%s = %s;", dst, value)
	return nil
}

// writeUnary writes "out = <sym>in0;".
func (w *Writer) writeUnary(sym string) error {
	src, err := w.read(&w.in0)
	if err != nil {
		return err
	}
	return w.writeAssign(sym+src, nil)
}

// writeBinary writes "out = in0 <sym> in1;".
func (w *Writer) writeBinary(sym string) error {
	a, err := w.read(&w.in0)
	if err != nil {
		return err
	}
	b, err := w.read(&w.in1)
	if err != nil {
		return err
	}
	return w.writeAssign(fmt.Sprintf("%s %s %s", a, sym, b), nil)
}

// call1 formats fn(in0<extra>).
func (w *Writer) call1(fn, extra string) (string, error) {
	a, err := w.read(&w.in0)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s%s)", fn, a, extra), nil
}

// call2 formats fn(in0, in1).
func (w *Writer) call2(fn string) (string, error) {
	a, err := w.read(&w.in0)
	if err != nil {
		return "", err
	}
	b, err := w.read(&w.in1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s, %s)", fn, a, b), nil
}

// literal formats the lanes of a SET instruction as a GLSL constant.
func (w *Writer) literal(in ir.Instruction) string {
	if in.Op == ir.OpSetB {
		return strconv.FormatBool(in.Bool())
	}

	var lanes []string
	if in.Op.SetsFloat() {
		for _, f := range in.Floats() {
			lanes = append(lanes, formatFloat(f))
		}
	} else {
		for _, v := range in.Ints() {
			lanes = append(lanes, strconv.FormatInt(int64(v), 10))
		}
	}
	if len(lanes) == 1 {
		return lanes[0]
	}
	return literalConstructor(in.Op) + "(" + strings.Join(lanes, ", ") + ")"
}

// openScope writes "{", opening main for the outermost scope.
func (w *Writer) openScope() error {
	if w.depth == 0 {
		if w.mainDone {
			return ir.NewError(ir.ErrInvalidBinary, "bytecode has more than one shader body")
		}
		w.writeLine("void main()")
	}
	w.writeLine("{")
	w.pushIndent()
	w.depth++
	return nil
}

// closeScope writes the matching "}".
func (w *Writer) closeScope() error {
	w.popIndent()
	w.writeLine("}")
	w.depth--
	if w.depth == 0 {
		w.mainDone = true
	}
	return nil
}

// writeLine writes an indented line followed by a newline.
func (w *Writer) writeLine(format string, args ...any) {
	if format != "" {
		w.writeIndent()
	}
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// formatFloat formats a float32 for GLSL output.
func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	// Ensure it has a decimal point or exponent
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
