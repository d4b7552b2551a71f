/*
 * Copyright 2022 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ir

import (
    `testing`

    `github.com/davecgh/go-spew/spew`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func TestProgram_PushPop(t *testing.T) {
    var p Program
    a, b := NewNop(), NewNop()
    p.Push(a)
    p.Push(b)
    require.Equal(t, 2, p.Len)
    require.Equal(t, []*Instr { a, b }, p.Instrs())
    require.Same(t, a, p.Pop())
    require.Same(t, b, p.Pop())
    require.Nil(t, p.Pop())
    require.True(t, p.Empty())
    require.Nil(t, p.Tail)
}

func TestProgram_Free(t *testing.T) {
    sym := NewSymtab()
    p := CreateProgramBuilder(sym)
    p.Entry("start")
    p.LI(1, 0)
    p.RET()
    prog := p.Build()
    require.Equal(t, 3, prog.Len)
    prog.Free()
    require.True(t, prog.Empty())
    require.Zero(t, prog.Len)
    require.Nil(t, prog.Tail)
    require.Empty(t, prog.Instrs())

    /* the allocator hands out clean instructions afterwards */
    ins := newInstr(OP_ret)
    assert.Equal(t, OP_ret, ins.Op)
    assert.Nil(t, ins.Ln)
    assert.False(t, ins.Entry)
}

func TestProgramBuilder_Labels(t *testing.T) {
    sym := NewSymtab()
    p := CreateProgramBuilder(sym)
    p.Entry("start")
    p.LI(1, 0)
    p.BEQ(0, 1, "out")
    p.JMP("start")
    p.Label("out")
    p.RET()
    prog := p.Build()
    v := prog.Instrs()
    require.Len(t, v, 6)
    assert.True(t, v[0].IsLabel())
    assert.True(t, v[0].Entry)
    assert.False(t, v[1].Entry)
    assert.Equal(t, v[0].Lb, v[3].Lb)
    assert.Equal(t, v[4].Lb, v[2].Lb)
    assert.Equal(t, "out", sym.Name(v[2].Lb))
    t.Log(spew.Sdump(v[2]))
    t.Log("\n" + prog.Disassemble(sym))
}

func TestProgramBuilder_Unresolved(t *testing.T) {
    p := CreateProgramBuilder(NewSymtab())
    p.JMP("nowhere")
    require.PanicsWithValue(t, "labels are not fully resolved: nowhere", func() { p.Build() })
}

func TestProgramBuilder_Duplicated(t *testing.T) {
    p := CreateProgramBuilder(NewSymtab())
    p.Label("x")
    require.PanicsWithValue(t, "label x has already been linked", func() { p.Label("x") })
}

func TestProgramBuilder_Counter(t *testing.T) {
    sym := NewSymtab()
    p := CreateProgramBuilder(sym)
    p.Label("loop_{n}")
    p.Next()
    p.Label("loop_{n}")
    p.RET()
    v := p.Build().Instrs()
    assert.Equal(t, "loop_0", sym.Name(v[0].Lb))
    assert.Equal(t, "loop_1", sym.Name(v[1].Lb))
}

func TestProgramBuilder_Switch(t *testing.T) {
    sym := NewSymtab()
    p := CreateProgramBuilder(sym)
    p.Entry("entry")
    p.BSW(3, []string { "a", "", "b" }, "a")
    p.Label("a")
    p.RET()
    p.Label("b")
    p.RET()
    v := p.Build().Instrs()
    require.Len(t, v, 7)
    ta, br := v[1], v[2]
    require.Equal(t, OP_lta, ta.Op)
    require.True(t, br.IsMBR())
    require.Same(t, br.Sw.Table, ta.Tb)
    require.Len(t, br.Sw.Cases, 2)
    assert.Equal(t, int64(0), br.Sw.Cases[0].Value)
    assert.Equal(t, int64(2), br.Sw.Cases[1].Value)
    assert.Equal(t, v[3].Lb, br.Sw.Default)
    assert.Len(t, ta.Tb.Entries, 3)
    assert.Contains(t, br.Disassemble(sym), "default: a")
}
