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
    `sync`
)

var (
    instrPool   sync.Pool
    builderPool sync.Pool
)

func newInstr(op OpCode) *Instr {
    if v := instrPool.Get(); v == nil {
        return allocInstr(op)
    } else {
        return resetInstr(op, v.(*Instr))
    }
}

func freeInstr(p *Instr) {
    instrPool.Put(p)
}

func allocInstr(op OpCode) (p *Instr) {
    p = new(Instr)
    p.Op = op
    return
}

func resetInstr(op OpCode, p *Instr) *Instr {
    *p = Instr{Op: op}
    return p
}

func newProgramBuilder(sym *Symtab) *ProgramBuilder {
    if v := builderPool.Get(); v == nil {
        return allocProgramBuilder(sym)
    } else {
        return resetProgramBuilder(sym, v.(*ProgramBuilder))
    }
}

func freeProgramBuilder(p *ProgramBuilder) {
    builderPool.Put(p)
}

func allocProgramBuilder(sym *Symtab) (p *ProgramBuilder) {
    p       = new(ProgramBuilder)
    p.sym   = sym
    p.refs  = make(map[string]Label, 64)
    p.pends = make(map[string]Label, 64)
    return
}

func resetProgramBuilder(sym *Symtab, p *ProgramBuilder) *ProgramBuilder {
    p.i    = 0
    p.sym  = sym
    p.prog = Program{}
    p.next = false
    for k := range p.refs  { delete(p.refs, k) }
    for k := range p.pends { delete(p.pends, k) }
    return p
}
