// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/magma/ir"
)

// register is one of the three selector registers of the bytecode machine.
type register struct {
	index uint32
	set   bool
}

// Writer generates HLSL source code by interpreting a bytecode stream.
type Writer struct {
	options *Options
	code    *ir.Bytecode
	meta    *ir.MetaData
	names   *namer
	binder  binder

	// Output buffer
	out         strings.Builder
	indentLevel int

	// Symbol table: variable index to HLSL expression.
	symbols  map[uint32]string
	types    map[uint32]ir.VariableType
	textures map[uint32]bool

	// Registers selected by VARIN0, VARIN1 and VAROUT.
	in0, in1, dst register

	// Scope nesting of the body; 0 is outside main.
	depth    int
	mainDone bool

	inputStruct  string
	outputStruct string

	registerBindings map[string]string
}

// newWriter creates a new HLSL writer.
func newWriter(code *ir.Bytecode, meta *ir.MetaData, options *Options) *Writer {
	w := &Writer{
		options:          options,
		code:             code,
		meta:             meta,
		names:            newNamer(),
		binder:           binder{options: options},
		symbols:          make(map[uint32]string),
		types:            make(map[uint32]ir.VariableType),
		textures:         make(map[uint32]bool),
		registerBindings: make(map[string]string),
	}
	if meta.Kind == ir.ShaderPixel {
		w.inputStruct, w.outputStruct = PSInputStruct, PSOutputStruct
	} else {
		w.inputStruct, w.outputStruct = VSInputStruct, VSOutputStruct
	}
	return w
}

// String returns the generated HLSL code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeShader generates the complete shader.
func (w *Writer) writeShader() error {
	w.reserveSymbols()

	// 1. Resources
	if err := w.writeConstantBuffers(); err != nil {
		return err
	}
	if err := w.writeTextures(); err != nil {
		return err
	}

	// 2. Stage interface structs
	if err := w.writeInputStruct(); err != nil {
		return err
	}
	if err := w.writeOutputStruct(); err != nil {
		return err
	}

	// 3. Entry point body
	return w.writeBody()
}

// reserveSymbols keeps cbuffer names clear of the synthesized names.
func (w *Writer) reserveSymbols() {
	for _, v := range w.meta.Textures2D {
		w.names.reserve(fmt.Sprintf("tex_%d", v.Index))
		w.names.reserve(fmt.Sprintf("tex_%d%s", v.Index, SamplerSuffix))
	}
	for _, v := range w.meta.ConstantBufferVars {
		w.names.reserve(fmt.Sprintf("buf_%d_%d", v.BufferIndex, v.BufferOffset))
	}
}

// writeConstantBuffers writes one cbuffer per constant buffer.
func (w *Writer) writeConstantBuffers() error {
	for _, cb := range w.meta.ConstantBuffers {
		bt, err := w.binder.resolve(RegisterTypeB, cb.Name)
		if err != nil {
			return err
		}
		reg, err := registerString(RegisterTypeB, bt, w.options.ShaderModel)
		if err != nil {
			return err
		}
		name := w.names.call(cb.Name)
		w.registerBindings[cb.Name] = reg

		w.writeLine("cbuffer %s : %s", name, reg)
		w.writeLine("{")
		w.pushIndent()
		for _, member := range w.meta.BufferMembers(cb.Index) {
			typeName, err := TypeToHLSL(member.Type)
			if err != nil {
				return fmt.Errorf("constant buffer %s member %s: %w", cb.Name, member.Name, err)
			}
			field := fmt.Sprintf("buf_%d_%d", member.BufferIndex, member.BufferOffset)
			if err := w.bind(member.Index, field, member.Type); err != nil {
				return err
			}
			w.writeLine("%s %s;", typeName, field)
		}
		w.popIndent()
		w.writeLine("};")
		w.writeLine("")
	}
	return nil
}

// writeTextures writes a Texture2D and its SamplerState per texture.
func (w *Writer) writeTextures() error {
	if len(w.meta.Textures2D) == 0 {
		return nil
	}
	for _, tex := range w.meta.Textures2D {
		bt, err := w.binder.resolve(RegisterTypeT, tex.Name)
		if err != nil {
			return err
		}
		treg, err := registerString(RegisterTypeT, bt, w.options.ShaderModel)
		if err != nil {
			return err
		}
		sreg, err := registerString(RegisterTypeS, bt, w.options.ShaderModel)
		if err != nil {
			return err
		}

		name := fmt.Sprintf("tex_%d", tex.Index)
		if err := w.bind(tex.Index, name, ir.TypeTexture2D); err != nil {
			return err
		}
		w.textures[tex.Index] = true
		w.registerBindings[tex.Name] = treg
		w.registerBindings[tex.Name+SamplerSuffix] = sreg

		w.writeLine("%s %s : %s;", hlslTexture, name, treg)
		w.writeLine("%s %s%s : %s;", hlslSampler, name, SamplerSuffix, sreg)
	}
	w.writeLine("")
	return nil
}

// writeInputStruct writes the input struct with semantics from metadata.
func (w *Writer) writeInputStruct() error {
	if len(w.meta.Inputs) == 0 {
		return nil
	}
	w.writeLine("struct %s", w.inputStruct)
	w.writeLine("{")
	w.pushIndent()
	for _, v := range w.meta.Inputs {
		typeName, err := InterfaceTypeToHLSL(v.Type)
		if err != nil {
			return fmt.Errorf("input %s: %w", v.Name, err)
		}
		field := fmt.Sprintf("in_%d", v.Index)
		if err := w.bind(v.Index, InputParamName+"."+field, v.Type); err != nil {
			return err
		}
		modifier := ""
		if w.meta.Kind == ir.ShaderPixel {
			modifier = InterpolationToHLSL(v.Type)
		}
		w.writeLine("%s%s %s : %s;", modifier, typeName, field, Escape(v.Name))
	}
	w.popIndent()
	w.writeLine("};")
	w.writeLine("")
	return nil
}

// writeOutputStruct writes the output struct. Output index 0 carries the
// position or depth system value.
func (w *Writer) writeOutputStruct() error {
	if len(w.meta.Outputs) == 0 {
		return nil
	}
	w.writeLine("struct %s", w.outputStruct)
	w.writeLine("{")
	w.pushIndent()
	target := 0
	for _, v := range w.meta.Outputs {
		typeName, err := InterfaceTypeToHLSL(v.Type)
		if err != nil {
			return fmt.Errorf("output %s: %w", v.Name, err)
		}
		if v.Index == 0 {
			if err := w.checkSystemOutput(v); err != nil {
				return err
			}
		}
		semantic := OutputSemantic(w.meta.Kind, v, target)
		if v.Index != 0 && w.meta.Kind == ir.ShaderPixel {
			target++
		}

		field := fmt.Sprintf("out_%d", v.Index)
		if err := w.bind(v.Index, OutputVarName+"."+field, v.Type); err != nil {
			return err
		}
		modifier := ""
		if w.meta.Kind == ir.ShaderVertex && v.Index != 0 {
			modifier = InterpolationToHLSL(v.Type)
		}
		w.writeLine("%s%s %s : %s;", modifier, typeName, field, semantic)
	}
	w.popIndent()
	w.writeLine("};")
	w.writeLine("")
	return nil
}

// checkSystemOutput validates the type of output index 0.
func (w *Writer) checkSystemOutput(v ir.MetaVariable) error {
	if w.meta.Kind == ir.ShaderPixel && v.Type != ir.TypeFloat1 {
		return ir.NewError(ir.ErrUnsupportedType, "pixel output %s maps to SV_Depth and must be FLOAT1, not %s", v.Name, v.Type)
	}
	if w.meta.Kind == ir.ShaderVertex && v.Type != ir.TypeFloat4 {
		return ir.NewError(ir.ErrUnsupportedType, "vertex output %s maps to SV_Position and must be FLOAT4, not %s", v.Name, v.Type)
	}
	return nil
}

// bind records the HLSL expression and type of a variable index.
func (w *Writer) bind(index uint32, name string, t ir.VariableType) error {
	if prev, ok := w.symbols[index]; ok {
		return ir.NewError(ir.ErrInvalidBinary, "variable %d is bound to both %s and %s", index, prev, name)
	}
	w.symbols[index] = name
	w.types[index] = t
	return nil
}

// writeBody interprets the instruction stream into the entry point.
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

// writeInstruction emits the HLSL for one instruction.
func (w *Writer) writeInstruction(in ir.Instruction) error {
	op := in.Op
	if w.depth == 0 && op != ir.OpOpScope {
		return ir.NewError(ir.ErrInvalidBinary, "instruction outside the shader body")
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
		return w.writeAssign(literal(in), nil)

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
		w.closeScope()
		return nil
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
		w.writeLine("[loop] while (true)")
		return nil
	case op == ir.OpBreak:
		w.writeLine("break;")
		return nil
	case op == ir.OpReturn:
		w.writeReturn()
		return nil
	case op == ir.OpDiscard:
		if w.meta.Kind != ir.ShaderPixel {
			return ir.NewError(ir.ErrUnsupportedOpcode, "discard is only valid in pixel shaders")
		}
		w.writeLine("discard;")
		return nil

	case op == ir.OpSmple2D:
		return w.writeSample()
	case op == ir.OpInverse:
		return ir.NewError(ir.ErrUnsupportedOpcode, "HLSL has no matrix inverse intrinsic")
	}

	if op == ir.OpEq || op == ir.OpNEq {
		return w.writeEquality(op)
	}
	if sym, ok := binaryOperators[op]; ok {
		return w.writeBinary(sym)
	}
	if fn, ok := intrinsicFunctions[op]; ok {
		if op.Info().Inputs == 2 {
			return w.writeAssign(w.call2(fn))
		}
		return w.writeAssign(w.call1(fn))
	}
	return ir.NewError(ir.ErrUnsupportedOpcode, "opcode %s has no HLSL lowering", op)
}

// writeDeclaration declares a local variable.
func (w *Writer) writeDeclaration(t ir.VariableType, index uint32) error {
	typeName, err := TypeToHLSL(t)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("local_%d", index)
	if err := w.bind(index, name, t); err != nil {
		return err
	}
	w.writeLine("%s %s;", typeName, name)
	return nil
}

// selectRegister points a register at a declared variable.
func (w *Writer) selectRegister(reg *register, index uint32) error {
	if _, ok := w.symbols[index]; !ok {
		return ir.NewError(ir.ErrInvalidBinary, "variable %d is not declared", index)
	}
	*reg = register{index: index, set: true}
	return nil
}

// read returns the HLSL expression held by a register.
func (w *Writer) read(reg *register) (string, error) {
	if !reg.set {
		return "", ir.NewError(ir.ErrInvalidBinary, "register read before it was selected")
	}
	return w.symbols[reg.index], nil
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
	a, b, err := w.operands()
	if err != nil {
		return err
	}
	return w.writeAssign(fmt.Sprintf("%s %s %s", a, sym, b), nil)
}

// writeEquality writes a whole-value comparison. HLSL compares vectors
// and matrices per component, so composite operands are reduced with
// all() or any().
func (w *Writer) writeEquality(op ir.Opcode) error {
	a, b, err := w.operands()
	if err != nil {
		return err
	}
	composite := w.isComposite(&w.in0) || w.isComposite(&w.in1)
	switch {
	case op == ir.OpEq && composite:
		return w.writeAssign(fmt.Sprintf("all(%s == %s)", a, b), nil)
	case op == ir.OpEq:
		return w.writeAssign(fmt.Sprintf("%s == %s", a, b), nil)
	case composite:
		return w.writeAssign(fmt.Sprintf("any(%s != %s)", a, b), nil)
	default:
		return w.writeAssign(fmt.Sprintf("%s != %s", a, b), nil)
	}
}

// isComposite reports whether a register holds a vector or matrix.
func (w *Writer) isComposite(reg *register) bool {
	t := w.types[reg.index]
	return t.IsVector() || t.IsMatrix()
}

// writeSample writes a texture sample through the texture's sampler.
// Vertex shaders have no derivatives and sample level 0 explicitly.
func (w *Writer) writeSample() error {
	if !w.in0.set || !w.textures[w.in0.index] {
		return ir.NewError(ir.ErrInvalidBinary, "SMPLE2D needs a texture in VARIN0")
	}
	tex, uv, err := w.operands()
	if err != nil {
		return err
	}
	if w.meta.Kind == ir.ShaderVertex {
		return w.writeAssign(fmt.Sprintf("%s.SampleLevel(%s%s, %s, 0)", tex, tex, SamplerSuffix, uv), nil)
	}
	return w.writeAssign(fmt.Sprintf("%s.Sample(%s%s, %s)", tex, tex, SamplerSuffix, uv), nil)
}

// operands returns the expressions in VARIN0 and VARIN1.
func (w *Writer) operands() (string, string, error) {
	a, err := w.read(&w.in0)
	if err != nil {
		return "", "", err
	}
	b, err := w.read(&w.in1)
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

// call1 formats fn(in0).
func (w *Writer) call1(fn string) (string, error) {
	a, err := w.read(&w.in0)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", fn, a), nil
}

// call2 formats fn(in0, in1).
func (w *Writer) call2(fn string) (string, error) {
	a, b, err := w.operands()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s, %s)", fn, a, b), nil
}

// literal formats the lanes of a SET instruction as an HLSL constant.
func literal(in ir.Instruction) string {
	if in.Op == ir.OpSetB {
		return strconv.FormatBool(in.Bool())
	}

	var (
		lanes  []string
		scalar string
	)
	if in.Op.SetsFloat() {
		scalar = "float"
		for _, f := range in.Floats() {
			lanes = append(lanes, formatFloat(f))
		}
	} else {
		scalar = "int"
		for _, v := range in.Ints() {
			lanes = append(lanes, strconv.FormatInt(int64(v), 10))
		}
	}
	if len(lanes) == 1 {
		return lanes[0]
	}
	return fmt.Sprintf("%s%d(%s)", scalar, len(lanes), strings.Join(lanes, ", "))
}

// openScope writes "{", opening the entry point for the outermost scope.
func (w *Writer) openScope() error {
	if w.depth == 0 {
		if w.mainDone {
			return ir.NewError(ir.ErrInvalidBinary, "bytecode has more than one shader body")
		}
		w.writeEntryPoint()
		w.depth++
		return nil
	}
	w.writeLine("{")
	w.pushIndent()
	w.depth++
	return nil
}

// writeEntryPoint writes the signature and the output variable.
func (w *Writer) writeEntryPoint() {
	ret := "void"
	if len(w.meta.Outputs) > 0 {
		ret = w.outputStruct
	}
	param := ""
	if len(w.meta.Inputs) > 0 {
		param = w.inputStruct + " " + InputParamName
	}
	w.writeLine("%s %s(%s)", ret, EntryPointName, param)
	w.writeLine("{")
	w.pushIndent()
	if len(w.meta.Outputs) > 0 {
		w.writeLine("%s %s;", w.outputStruct, OutputVarName)
	}
}

// closeScope writes the matching "}", returning the outputs at the end of
// the entry point.
func (w *Writer) closeScope() {
	w.depth--
	if w.depth == 0 {
		if len(w.meta.Outputs) > 0 {
			w.writeReturn()
		}
		w.mainDone = true
	}
	w.popIndent()
	w.writeLine("}")
}

// writeReturn writes the entry point return.
func (w *Writer) writeReturn() {
	if len(w.meta.Outputs) > 0 {
		w.writeLine("return %s;", OutputVarName)
		return
	}
	w.writeLine("return;")
}

// writeLine writes an indented line followed by a newline.
func (w *Writer) writeLine(format string, args ...any) {
	if format != "" {
		for i := 0; i < w.indentLevel; i++ {
			w.out.WriteString("    ")
		}
	}
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indentLevel++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indentLevel > 0 {
		w.indentLevel--
	}
}
