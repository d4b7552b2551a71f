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

    `github.com/stretchr/testify/require`

    `github.com/cloudwego/cfgraph/ir`
)

func assemble(fn func(p *ir.ProgramBuilder)) (*ir.Program, *ir.Symtab) {
    sym := ir.NewSymtab()
    pb := ir.CreateProgramBuilder(sym)
    fn(pb)
    return pb.Build(), sym
}

func buildGraph(t *testing.T, flags Flags, fn func(p *ir.ProgramBuilder)) *Graph {
    prog, sym := assemble(fn)
    g := Build(prog, sym, flags)
    require.NoError(t, Verify(g))
    return g
}

func nodeOf(t *testing.T, g *Graph, name string) *Node {
    lb, ok := g.Sym.Lookup(name)
    require.True(t, ok, "label %s", name)
    bb := g.Lookup(lb)
    require.NotNil(t, bb, "label %s is not bound", name)
    return bb
}

func succIds(bb *Node) []int {
    ret := make([]int, 0, len(bb.succ))
    for _, e := range bb.succ {
        ret = append(ret, e.To)
    }
    return ret
}

func layoutIds(g *Graph) []int {
    ret := make([]int, 0, len(g.nodes))
    for _, bb := range g.LayoutOrder() {
        ret = append(ret, bb.Id)
    }
    return ret
}

func opcodes(bb *Node) []ir.OpCode {
    ret := make([]ir.OpCode, 0, len(bb.Ins))
    for _, ins := range bb.Ins {
        ret = append(ret, ins.Op)
    }
    return ret
}

func requireFatal(t *testing.T, fn func()) (err *ConsistencyError) {
    defer func() {
        v := recover()
        require.IsType(t, (*ConsistencyError)(nil), v)
        err = v.(*ConsistencyError)
        t.Log(err)
    }()
    fn()
    return
}
