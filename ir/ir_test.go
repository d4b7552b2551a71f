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

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func TestInstr_Predicates(t *testing.T) {
    sym := NewSymtab()
    lb := sym.NewLabel("L")
    assert.True(t, NewLabel(lb).IsLabel())
    assert.True(t, NewNop().IsNop())
    assert.True(t, NewJump(lb).IsUBR())
    assert.True(t, NewJump(lb).IsCTI())
    assert.False(t, NewNop().IsCTI())
    assert.False(t, NewLabel(lb).IsCTI())
    for _, op := range []OpCode { OP_beq, OP_bne, OP_blt, OP_bge, OP_bltu, OP_bgeu } {
        ins := newInstr(op)
        assert.True(t, ins.IsCBR())
        assert.True(t, ins.IsCTI())
        assert.False(t, ins.IsUBR())
    }
    assert.True(t, newInstr(OP_call).IsCTI())
    assert.True(t, newInstr(OP_ret).IsReturn())
    assert.True(t, newInstr(OP_bsw).IsMBR())
    assert.False(t, newInstr(OP_lta).IsCTI())
}

func TestInstr_Invert(t *testing.T) {
    ins := newInstr(OP_blt)
    ins.Invert()
    require.Equal(t, OP_bge, ins.Op)
    ins.Invert()
    require.Equal(t, OP_blt, ins.Op)
    require.Panics(t, func() { NewNop().Invert() })
}

func TestInstr_Target(t *testing.T) {
    sym := NewSymtab()
    lb := sym.NewLabel("L")
    ins := newInstr(OP_beq)
    ins.SetTarget(lb)
    require.Equal(t, lb, ins.Target())
    require.Panics(t, func() { newInstr(OP_ret).Target() })
    require.Panics(t, func() { newInstr(OP_bsw).SetTarget(lb) })
}

func TestInstr_CloneDispatch(t *testing.T) {
    sym := NewSymtab()
    a := sym.NewLabel("a")
    b := sym.NewLabel("b")
    ins := newInstr(OP_bsw)
    ins.Sw = &Dispatch {
        Cases      : []Case {{ Value: 0, Target: a }},
        Default    : b,
        HasDefault : true,
        Table      : sym.MintTable(),
    }
    p := ins.Clone()
    require.NotSame(t, ins.Sw, p.Sw)
    p.Sw.ClearTargets()
    assert.Equal(t, a, ins.Sw.Cases[0].Target)
    assert.Equal(t, b, ins.Sw.Default)
    assert.Equal(t, NoLabel, p.Sw.Cases[0].Target)
    assert.True(t, p.Sw.HasDefault)
    assert.Equal(t, 2, p.Sw.NumTargets())
}

func TestDispatch_Sync(t *testing.T) {
    sym := NewSymtab()
    a := sym.NewLabel("a")
    b := sym.NewLabel("b")
    sw := &Dispatch {
        Cases : []Case {{ Value: 0, Target: a }, { Value: 1, Target: b }},
        Table : sym.NewTable("tab"),
    }
    sw.Sync()
    require.Equal(t, []TableEntry {{ Label: a }, { Label: b }}, sw.Table.Entries)
    sw.HasDefault = true
    sw.Default = a
    sw.Sync()
    require.Len(t, sw.Table.Entries, 3)
    require.Equal(t, a, sw.Table.Entries[2].Label)
}

func TestSymtab_Mint(t *testing.T) {
    sym := NewSymtab()
    sym.NewLabel("_L1")
    lb := sym.Mint()
    assert.Equal(t, "_L2", sym.Name(lb))
    assert.NotEqual(t, sym.Mint(), lb)
    assert.Panics(t, func() { sym.NewLabel("_L2") })
    v, ok := sym.Lookup("_L1")
    assert.True(t, ok)
    assert.Equal(t, "_L1", sym.Name(v))
    assert.Equal(t, "_T0", sym.MintTable().Name)
    assert.Equal(t, "_T1", sym.MintTable().Name)
}

func TestSymtab_MintTable(t *testing.T) {
    sym := NewSymtab()
    sym.NewTable("_T1")
    assert.Equal(t, "_T0", sym.MintTable().Name)
    assert.Equal(t, "_T2", sym.MintTable().Name)
    assert.Panics(t, func() { sym.NewTable("_T2") })
    assert.Panics(t, func() { sym.NewTable("_T1") })
    assert.Equal(t, "tab", sym.NewTable("tab").Name)
}
