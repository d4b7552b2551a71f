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
    `fmt`
    `strconv`
    `strings`
)

// Program is a linear instruction stream linked through Instr.Ln.
type Program struct {
    Head *Instr
    Tail *Instr
    Len  int
}

func (self *Program) Empty() bool {
    return self.Head == nil
}

func (self *Program) Push(ins *Instr) {
    if ins.Ln = nil; self.Head == nil {
        self.Head = ins
        self.Tail = ins
    } else {
        self.Tail.Ln = ins
        self.Tail    = ins
    }
    self.Len++
}

// Pop unlinks and returns the first instruction, or nil if the stream is empty.
func (self *Program) Pop() (p *Instr) {
    if p = self.Head; p == nil {
        return nil
    }

    /* unlink the head */
    self.Head = p.Ln
    self.Len--
    p.Ln = nil

    /* the stream is now empty */
    if self.Head == nil {
        self.Tail = nil
    }
    return
}

func (self *Program) Instrs() []*Instr {
    ret := make([]*Instr, 0, self.Len)
    for p := self.Head; p != nil; p = p.Ln {
        ret = append(ret, p)
    }
    return ret
}

// Free returns every instruction to the allocator. The Program must not be used afterwards.
func (self *Program) Free() {
    for p := self.Head; p != nil; {
        q := p.Ln
        freeInstr(p)
        p = q
    }
    *self = Program{}
}

func (self *Program) Disassemble(sym *Symtab) string {
    buf := make([]string, 0, self.Len)
    for p := self.Head; p != nil; p = p.Ln {
        if p.IsLabel() {
            buf = append(buf, p.Disassemble(sym))
        } else {
            buf = append(buf, "    " + p.Disassemble(sym))
        }
    }
    return strings.Join(buf, "\n")
}

// ProgramBuilder assembles a Program, resolving label names through a Symtab.
type ProgramBuilder struct {
    i     int
    sym   *Symtab
    prog  Program
    next  bool
    refs  map[string]Label
    pends map[string]Label
}

func CreateProgramBuilder(sym *Symtab) *ProgramBuilder {
    return newProgramBuilder(sym)
}

func (self *ProgramBuilder) add(ins *Instr) *Instr {
    if self.next {
        ins.Entry = true
        self.next = false
    }
    self.prog.Push(ins)
    return ins
}

func (self *ProgramBuilder) expand(name string) string {
    if strings.Contains(name, "{n}") {
        return strings.ReplaceAll(name, "{n}", strconv.Itoa(self.i))
    } else {
        return name
    }
}

func (self *ProgramBuilder) ref(to string) Label {
    var ok bool
    var lb Label

    /* check for backward references */
    if to = self.expand(to); to == "" {
        return NoLabel
    } else if lb, ok = self.refs[to]; ok {
        return lb
    } else if lb, ok = self.pends[to]; ok {
        return lb
    }

    /* forward reference, resolved once the label is defined */
    lb = self.sym.NewLabel(to)
    self.pends[to] = lb
    return lb
}

func (self *ProgramBuilder) jmp(p *Instr, to string) *Instr {
    return self.add(p.lb(self.ref(to)))
}

// Next increments the counter used by the "{n}" placeholder in label names.
func (self *ProgramBuilder) Next() {
    self.i++
}

// Label defines a label at the current position.
func (self *ProgramBuilder) Label(to string) *Instr {
    var ok bool
    var lb Label

    /* check for duplications */
    if to = self.expand(to); to == "" {
        panic("ir: empty label name")
    } else if _, ok = self.refs[to]; ok {
        panic("label " + to + " has already been linked")
    }

    /* resolve pending references if any */
    if lb, ok = self.pends[to]; ok {
        delete(self.pends, to)
    } else {
        lb = self.sym.NewLabel(to)
    }

    /* mark the label as resolved */
    self.refs[to] = lb
    return self.add(NewLabel(lb))
}

// Entry defines a label that marks a procedure entry point.
func (self *ProgramBuilder) Entry(to string) *Instr {
    self.next = true
    return self.Label(to)
}

// MarkEntry flags the next emitted instruction as a procedure entry point.
func (self *ProgramBuilder) MarkEntry() {
    self.next = true
}

func (self *ProgramBuilder) Build() (r *Program) {
    for key := range self.pends {
        panic("labels are not fully resolved: " + key)
    }

    /* the ProgramBuilder's life-time ends here */
    r = new(Program)
    *r = self.prog
    freeProgramBuilder(self)
    return
}

func (self *ProgramBuilder) NOP() *Instr {
    return self.add(NewNop())
}

func (self *ProgramBuilder) LI(v int64, rx Register) *Instr {
    return self.add(newInstr(OP_li).iv(v).rx(rx))
}

func (self *ProgramBuilder) MOV(rx Register, ry Register) *Instr {
    return self.add(newInstr(OP_mov).rx(rx).ry(ry))
}

func (self *ProgramBuilder) ADD(rx Register, ry Register, rz Register) *Instr {
    return self.add(newInstr(OP_add).rx(rx).ry(ry).rz(rz))
}

func (self *ProgramBuilder) SUB(rx Register, ry Register, rz Register) *Instr {
    return self.add(newInstr(OP_sub).rx(rx).ry(ry).rz(rz))
}

func (self *ProgramBuilder) ADDI(rx Register, iv int64, ry Register) *Instr {
    return self.add(newInstr(OP_addi).rx(rx).iv(iv).ry(ry))
}

func (self *ProgramBuilder) MULI(rx Register, iv int64, ry Register) *Instr {
    return self.add(newInstr(OP_muli).rx(rx).iv(iv).ry(ry))
}

func (self *ProgramBuilder) LD(rx Register, iv int64, ry Register) *Instr {
    return self.add(newInstr(OP_ld).rx(rx).iv(iv).ry(ry))
}

func (self *ProgramBuilder) ST(rx Register, ry Register, iv int64) *Instr {
    return self.add(newInstr(OP_st).rx(rx).ry(ry).iv(iv))
}

func (self *ProgramBuilder) BEQ(rx Register, ry Register, to string) *Instr {
    return self.jmp(newInstr(OP_beq).rx(rx).ry(ry), to)
}

func (self *ProgramBuilder) BNE(rx Register, ry Register, to string) *Instr {
    return self.jmp(newInstr(OP_bne).rx(rx).ry(ry), to)
}

func (self *ProgramBuilder) BLT(rx Register, ry Register, to string) *Instr {
    return self.jmp(newInstr(OP_blt).rx(rx).ry(ry), to)
}

func (self *ProgramBuilder) BGE(rx Register, ry Register, to string) *Instr {
    return self.jmp(newInstr(OP_bge).rx(rx).ry(ry), to)
}

func (self *ProgramBuilder) BLTU(rx Register, ry Register, to string) *Instr {
    return self.jmp(newInstr(OP_bltu).rx(rx).ry(ry), to)
}

func (self *ProgramBuilder) BGEU(rx Register, ry Register, to string) *Instr {
    return self.jmp(newInstr(OP_bgeu).rx(rx).ry(ry), to)
}

func (self *ProgramBuilder) JMP(to string) *Instr {
    return self.jmp(newInstr(OP_jmp), to)
}

// BSW emits a table address computation into rx followed by a multiway branch on rx.
// Case i dispatches on value i, an empty name skips the slot. An empty def means no default.
func (self *ProgramBuilder) BSW(rx Register, cases []string, def string) *Instr {
    sw := new(Dispatch)
    sw.Table = self.sym.MintTable()

    /* add every case */
    for i, to := range cases {
        if to != "" {
            sw.Cases = append(sw.Cases, Case {
                Value  : int64(i),
                Target : self.ref(to),
            })
        }
    }

    /* add the default branch */
    if def != "" {
        sw.HasDefault = true
        sw.Default = self.ref(def)
    }

    /* build the table, then the branch */
    sw.Sync()
    ta := newInstr(OP_lta).rx(rx)
    br := newInstr(OP_bsw).rx(rx)

    /* attach the table and the descriptor */
    ta.Tb = sw.Table
    br.Sw = sw
    self.add(ta)
    return self.add(br)
}

func (self *ProgramBuilder) CALL(fn int64) *Instr {
    return self.add(newInstr(OP_call).iv(fn))
}

func (self *ProgramBuilder) RET() *Instr {
    return self.add(newInstr(OP_ret))
}

func (self *ProgramBuilder) String() string {
    return fmt.Sprintf("ProgramBuilder {%d instructions, %d pending labels}", self.prog.Len, len(self.pends))
}
