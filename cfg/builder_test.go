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

package cfg

import (
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`

    `github.com/cloudwego/cfgraph/ir`
)

func TestBuild_MaximalBlocks(t *testing.T) {
    g := buildGraph(t, Flags{}, func(p *ir.ProgramBuilder) {
        p.Entry("L0")
        p.ADD(0, 1, 2)
        p.BEQ(0, 1, "L1")
        p.Label("L1")
        p.RET()
    })
    require.Equal(t, 4, g.NumNodes())
    b1 := nodeOf(t, g, "L0")
    b2 := nodeOf(t, g, "L1")
    assert.Equal(t, 1, b1.Id)
    assert.Equal(t, 2, b2.Id)
    assert.Equal(t, []int { 1 }, succIds(g.Entry()))
    assert.Equal(t, []int { 2, 2 }, succIds(b1))
    assert.Equal(t, []int { 1 }, b2.Predecessors())
    assert.Equal(t, []int { g.Exit().Id }, succIds(b2))
    assert.Equal(t, []ir.OpCode { ir.OP_label, ir.OP_add, ir.OP_beq }, opcodes(b1))
    assert.True(t, b1.Cti().IsCBR())
    assert.True(t, b2.Cti().IsReturn())
    assert.Empty(t, g.Entry().Predecessors())
    assert.Zero(t, g.Exit().NumSuccessors())
    assert.Zero(t, g.Stats.ImpossibleEdges)
}

func TestBuild_AbsorbsLabels(t *testing.T) {
    g := buildGraph(t, Flags{}, func(p *ir.ProgramBuilder) {
        p.Entry("a")
        p.Label("b")
        p.Label("c")
        p.LI(1, 0)
        p.RET()
    })
    require.Equal(t, 3, g.NumNodes())
    bb := nodeOf(t, g, "a")
    assert.Same(t, bb, nodeOf(t, g, "b"))
    assert.Same(t, bb, nodeOf(t, g, "c"))
    assert.Len(t, bb.Labels(), 3)
}

func TestBuild_OneInstructionPerBlock(t *testing.T) {
    g := buildGraph(t, Flags { BreakAtInstr: true }, func(p *ir.ProgramBuilder) {
        p.Entry("L0")
        p.ADD(0, 1, 2)
        p.RET()
    })
    require.Equal(t, 5, g.NumNodes())
    assert.Equal(t, []int { 1 }, succIds(g.Node(0)))
    assert.Equal(t, []int { 2 }, succIds(g.Node(1)))
    assert.Equal(t, []int { 3 }, succIds(g.Node(2)))
    assert.Equal(t, []int { 4 }, succIds(g.Node(3)))
    assert.Nil(t, g.Node(1).Cti())
    assert.Nil(t, g.Node(2).Cti())
    assert.True(t, g.Node(3).Cti().IsReturn())
}

func TestBuild_BreakAtCall(t *testing.T) {
    prog := func(p *ir.ProgramBuilder) {
        p.Entry("L0")
        p.LI(1, 0)
        p.CALL(7)
        p.LI(2, 0)
        p.RET()
    }
    g := buildGraph(t, Flags{}, prog)
    require.Equal(t, 3, g.NumNodes())
    g = buildGraph(t, Flags { BreakAtCall: true }, prog)
    require.Equal(t, 4, g.NumNodes())
    assert.True(t, g.Node(1).Cti().IsCall())
    assert.Equal(t, []int { 2 }, succIds(g.Node(1)))
    assert.Equal(t, []int { 3 }, succIds(g.Node(2)))
}

func TestBuild_Switch(t *testing.T) {
    g := buildGraph(t, Flags{}, func(p *ir.ProgramBuilder) {
        p.Entry("e")
        p.BSW(0, []string { "a", "b" }, "c")
        p.Label("a")
        p.RET()
        p.Label("b")
        p.RET()
        p.Label("c")
        p.RET()
    })
    bb := nodeOf(t, g, "e")
    assert.Equal(t, []int {
        nodeOf(t, g, "a").Id,
        nodeOf(t, g, "b").Id,
        nodeOf(t, g, "c").Id,
    }, succIds(bb))
    assert.Equal(t, []int { bb.Id }, nodeOf(t, g, "a").Predecessors())
    assert.Equal(t, 3, bb.Cti().Sw.NumTargets())
}

func TestBuild_MultipleEntries(t *testing.T) {
    g := buildGraph(t, Flags{}, func(p *ir.ProgramBuilder) {
        p.Entry("a")
        p.RET()
        p.Entry("b")
        p.RET()
    })
    assert.Equal(t, []int { 1, 2 }, succIds(g.Entry()))
}

func TestBuild_KeepLayout(t *testing.T) {
    g := buildGraph(t, Flags { KeepLayout: true }, func(p *ir.ProgramBuilder) {
        p.Entry("a")
        p.ADD(0, 1, 2)
        p.Label("b")
        p.RET()
    })
    assert.Equal(t, None, g.Entry().LayoutSucc())
    assert.Equal(t, 2, g.Node(1).LayoutSucc())
    assert.Equal(t, 1, g.Node(2).LayoutPred())
    assert.Equal(t, None, g.Exit().LayoutPred())
}

func TestBuild_RepairsReachability(t *testing.T) {
    g := buildGraph(t, Flags{}, func(p *ir.ProgramBuilder) {
        p.Entry("e")
        p.RET()
        p.Label("dead")
        p.ADD(0, 1, 2)
        p.JMP("dead")
    })
    dead := nodeOf(t, g, "dead")
    require.Equal(t, 4, g.NumNodes())
    assert.Equal(t, 2, g.Stats.ImpossibleEdges)
    assert.Equal(t, []Edge {{ To: 1, Kind: Normal }, { To: dead.Id, Kind: Impossible }}, g.Entry().Successors())
    assert.Equal(t, []Edge {{ To: dead.Id, Kind: Normal }, { To: g.Exit().Id, Kind: Impossible }}, dead.Successors())
    assert.Equal(t, []int { dead.Id }, dead.Predecessors())
    assert.Equal(t, []int { 1 }, g.Exit().Predecessors())
    assert.False(t, g.Reachable()[dead.Id])
}

func TestBuild_Fatal(t *testing.T) {
    t.Run("NoEntry", func(t *testing.T) {
        prog, sym := assemble(func(p *ir.ProgramBuilder) {
            p.Label("a")
            p.RET()
        })
        err := requireFatal(t, func() { Build(prog, sym, Flags{}) })
        assert.Equal(t, 0, err.Node)
    })
    t.Run("FallsOffTheEnd", func(t *testing.T) {
        prog, sym := assemble(func(p *ir.ProgramBuilder) {
            p.Entry("a")
            p.BEQ(0, 1, "a")
        })
        requireFatal(t, func() { Build(prog, sym, Flags{}) })
    })
    t.Run("UnboundTarget", func(t *testing.T) {
        sym := ir.NewSymtab()
        lb := sym.NewLabel("a")
        ins := ir.NewLabel(lb)
        ins.Entry = true
        prog := new(ir.Program)
        prog.Push(ins)
        prog.Push(ir.NewJump(sym.NewLabel("nowhere")))
        err := requireFatal(t, func() { Build(prog, sym, Flags{}) })
        assert.Equal(t, "nowhere", err.Label)
    })
    t.Run("NoDispatch", func(t *testing.T) {
        prog, sym := assemble(func(p *ir.ProgramBuilder) {
            p.Entry("a")
            p.BSW(0, []string { "a" }, "").Sw = nil
        })
        requireFatal(t, func() { Build(prog, sym, Flags{}) })
    })
}
