/*
 * Copyright 2022 CloudWeGo Authors
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

package cfgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/cfgraph/ir"
)

func assemble(fn func(p *ir.ProgramBuilder)) (*ir.Program, *ir.Symtab) {
	sym := ir.NewSymtab()
	pb := ir.CreateProgramBuilder(sym)
	fn(pb)
	return pb.Build(), sym
}

func TestBuild_Verify(t *testing.T) {
	prog, sym := assemble(func(p *ir.ProgramBuilder) {
		p.Entry("entry")
		p.LI(1, 0)
		p.BEQ(0, 1, "out")
		p.ADDI(0, 1, 0)
		p.Label("out")
		p.RET()
	})
	g, err := Build(prog, sym, WithVerify(true))
	require.NoError(t, err)
	assert.Equal(t, 5, g.NumNodes())
}

func TestBuild_NoEntry(t *testing.T) {
	prog, sym := assemble(func(p *ir.ProgramBuilder) {
		p.Label("x")
		p.RET()
	})
	g, err := Build(prog, sym)
	require.Nil(t, g)
	require.Error(t, err)

	/* the cause is kept */
	var ge GraphError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "build", ge.Phase)
	assert.Equal(t, "procedure has no entry point", ge.Cause.Reason)
	assert.Contains(t, err.Error(), "GraphError(build)")
}

func TestOptimize_Linearize(t *testing.T) {
	prog, sym := assemble(func(p *ir.ProgramBuilder) {
		p.Entry("a")
		p.ADDI(0, 1, 0)
		p.JMP("b")
		p.Label("c")
		p.RET()
		p.Label("b")
		p.JMP("c")
	})
	g, err := Build(prog, sym, WithVerify(true))
	require.NoError(t, err)

	/* threading, pruning and merging leave a single block */
	rounds, err := Optimize(g, WithVerify(true))
	require.NoError(t, err)
	require.Greater(t, rounds, 0)
	require.Equal(t, 3, g.NumNodes())
	t.Logf("optimized in %d rounds:\n%s", rounds, g)

	/* linearize it */
	p, err := Linearize(g)
	require.NoError(t, err)
	ins := p.Instrs()
	t.Logf("linearized:\n%s", p.Disassemble(sym))
	require.Len(t, ins, 3)
	assert.True(t, ins[0].IsLabel())
	assert.Equal(t, ir.OP_addi, ins[1].Op)
	assert.True(t, ins[2].IsReturn())

	/* the instructions go back to the allocator */
	p.Free()
	assert.True(t, p.Empty())
	assert.Zero(t, p.Len)
}

func TestOptions(t *testing.T) {
	o := makeOptions([]Option{
		WithKeepLayout(true),
		WithBreakAtCall(true),
		WithBreakAtInstr(true),
		WithMaxRounds(0),
	})
	assert.Equal(t, 0, o.MaxRounds)
	assert.Equal(t, true, flagsOf(o).KeepLayout)
	assert.Equal(t, true, flagsOf(o).BreakAtCall)
	assert.Equal(t, true, flagsOf(o).BreakAtInstr)

	/* negative limits are rejected */
	require.Panics(t, func() { WithMaxRounds(-1) })
}

func TestSetMaxRounds(t *testing.T) {
	old := SetMaxRounds(3)
	defer SetMaxRounds(old)
	assert.Equal(t, 3, makeOptions(nil).MaxRounds)
}
