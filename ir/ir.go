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
    `strings`
)

type OpCode byte

const (
    OP_nop OpCode = iota    // no operation
    OP_label                // Lb:
    OP_li                   // Iv -> Rx
    OP_mov                  // Rx -> Ry
    OP_add                  // Rx + Ry -> Rz
    OP_sub                  // Rx - Ry -> Rz
    OP_addi                 // Rx + Iv -> Ry
    OP_muli                 // Rx * Iv -> Ry
    OP_ld                   // *(Rx + Iv) -> Ry
    OP_st                   // Rx -> *(Ry + Iv)
    OP_lta                  // &Tb -> Rx
    OP_beq                  // if (Rx == Ry) Lb -> PC
    OP_bne                  // if (Rx != Ry) Lb -> PC
    OP_blt                  // if (Rx <  Ry) Lb -> PC
    OP_bge                  // if (Rx >= Ry) Lb -> PC
    OP_bltu                 // if (u(Rx) <  u(Ry)) Lb -> PC
    OP_bgeu                 // if (u(Rx) >= u(Ry)) Lb -> PC
    OP_jmp                  // Lb -> PC
    OP_bsw                  // Sw[Rx] -> PC
    OP_call                 // call external function #Iv
    OP_ret                  // return to caller
)

type Register uint8

func (self Register) String() string {
    return fmt.Sprintf("r%d", self)
}

// Label is a symbolic code address minted by a Symtab. The zero Label means "no label".
type Label uint32

const NoLabel Label = 0

type Instr struct {
    Op    OpCode
    Rx    Register
    Ry    Register
    Rz    Register
    Iv    int64
    Lb    Label
    Sw    *Dispatch
    Tb    *Table
    Entry bool
    Ln    *Instr
}

func (self *Instr) iv(v int64)    *Instr { self.Iv = v; return self }
func (self *Instr) lb(v Label)    *Instr { self.Lb = v; return self }
func (self *Instr) rx(v Register) *Instr { self.Rx = v; return self }
func (self *Instr) ry(v Register) *Instr { self.Ry = v; return self }
func (self *Instr) rz(v Register) *Instr { self.Rz = v; return self }

func (self *Instr) IsNop()    bool { return self.Op == OP_nop }
func (self *Instr) IsLabel()  bool { return self.Op == OP_label }
func (self *Instr) IsCBR()    bool { return self.Op >= OP_beq && self.Op <= OP_bgeu }
func (self *Instr) IsUBR()    bool { return self.Op == OP_jmp }
func (self *Instr) IsMBR()    bool { return self.Op == OP_bsw }
func (self *Instr) IsCall()   bool { return self.Op == OP_call }
func (self *Instr) IsReturn() bool { return self.Op == OP_ret }

// IsCTI reports whether the instruction transfers control: a branch, a call or a return.
func (self *Instr) IsCTI() bool {
    return self.Op >= OP_beq && self.Op <= OP_ret
}

// Target returns the branch target of a conditional or unconditional branch.
func (self *Instr) Target() Label {
    if !self.IsCBR() && !self.IsUBR() {
        panic("ir: not a single-target branch: " + self.Disassemble(nil))
    } else {
        return self.Lb
    }
}

func (self *Instr) SetTarget(lb Label) {
    if !self.IsCBR() && !self.IsUBR() {
        panic("ir: not a single-target branch: " + self.Disassemble(nil))
    } else {
        self.Lb = lb
    }
}

var _Inverted = map[OpCode]OpCode {
    OP_beq  : OP_bne,
    OP_bne  : OP_beq,
    OP_blt  : OP_bge,
    OP_bge  : OP_blt,
    OP_bltu : OP_bgeu,
    OP_bgeu : OP_bltu,
}

// Invert negates the condition of a conditional branch in place.
func (self *Instr) Invert() {
    if op, ok := _Inverted[self.Op]; !ok {
        panic("ir: cannot invert: " + self.Disassemble(nil))
    } else {
        self.Op = op
    }
}

// Clone deep-copies the instruction. The copy is not linked into any Program.
func (self *Instr) Clone() *Instr {
    p := newInstr(self.Op)
    *p = *self
    p.Ln = nil

    /* the dispatch descriptor is owned by the instruction */
    if self.Sw != nil {
        p.Sw = self.Sw.clone()
    }
    return p
}

func NewNop() *Instr {
    return newInstr(OP_nop)
}

func NewJump(to Label) *Instr {
    return newInstr(OP_jmp).lb(to)
}

func NewLabel(lb Label) *Instr {
    return newInstr(OP_label).lb(lb)
}

func formatLabel(sym *Symtab, lb Label) string {
    if lb == NoLabel {
        return "<unresolved>"
    } else if sym == nil {
        return fmt.Sprintf("L%d", lb)
    } else {
        return sym.Name(lb)
    }
}

func (self *Instr) formatTable() string {
    if self.Tb == nil {
        return "<nil>"
    } else {
        return self.Tb.Name
    }
}

func (self *Instr) formatSwitch(sym *Symtab) string {
    sw := self.Sw
    if sw == nil {
        return "<no dispatch>"
    }

    /* format every case */
    ret := make([]string, 0, len(sw.Cases) + 1)
    for _, c := range sw.Cases {
        ret = append(ret, fmt.Sprintf("%d: %s", c.Value, formatLabel(sym, c.Target)))
    }

    /* the default target is optional */
    if sw.HasDefault {
        ret = append(ret, "default: " + formatLabel(sym, sw.Default))
    }

    /* join them together */
    return fmt.Sprintf(
        "{%s}",
        strings.Join(ret, ", "),
    )
}

func (self *Instr) Disassemble(sym *Symtab) string {
    var ret string
    switch self.Op {
        case OP_nop   : ret = "nop"
        case OP_label : ret = formatLabel(sym, self.Lb) + ":"
        case OP_li    : ret = fmt.Sprintf("li      $%d, %%%s", self.Iv, self.Rx)
        case OP_mov   : ret = fmt.Sprintf("mov     %%%s, %%%s", self.Rx, self.Ry)
        case OP_add   : ret = fmt.Sprintf("add     %%%s, %%%s, %%%s", self.Rx, self.Ry, self.Rz)
        case OP_sub   : ret = fmt.Sprintf("sub     %%%s, %%%s, %%%s", self.Rx, self.Ry, self.Rz)
        case OP_addi  : ret = fmt.Sprintf("add     %%%s, %d, %%%s", self.Rx, self.Iv, self.Ry)
        case OP_muli  : ret = fmt.Sprintf("mul     %%%s, %d, %%%s", self.Rx, self.Iv, self.Ry)
        case OP_ld    : ret = fmt.Sprintf("ld      %d(%%%s), %%%s", self.Iv, self.Rx, self.Ry)
        case OP_st    : ret = fmt.Sprintf("st      %%%s, %d(%%%s)", self.Rx, self.Iv, self.Ry)
        case OP_lta   : ret = fmt.Sprintf("lta     %s, %%%s", self.formatTable(), self.Rx)
        case OP_beq   : ret = fmt.Sprintf("beq     %%%s, %%%s, %s", self.Rx, self.Ry, formatLabel(sym, self.Lb))
        case OP_bne   : ret = fmt.Sprintf("bne     %%%s, %%%s, %s", self.Rx, self.Ry, formatLabel(sym, self.Lb))
        case OP_blt   : ret = fmt.Sprintf("blt     %%%s, %%%s, %s", self.Rx, self.Ry, formatLabel(sym, self.Lb))
        case OP_bge   : ret = fmt.Sprintf("bge     %%%s, %%%s, %s", self.Rx, self.Ry, formatLabel(sym, self.Lb))
        case OP_bltu  : ret = fmt.Sprintf("bltu    %%%s, %%%s, %s", self.Rx, self.Ry, formatLabel(sym, self.Lb))
        case OP_bgeu  : ret = fmt.Sprintf("bgeu    %%%s, %%%s, %s", self.Rx, self.Ry, formatLabel(sym, self.Lb))
        case OP_jmp   : ret = fmt.Sprintf("jmp     %s", formatLabel(sym, self.Lb))
        case OP_bsw   : ret = fmt.Sprintf("bsw     %%%s, %s", self.Rx, self.formatSwitch(sym))
        case OP_call  : ret = fmt.Sprintf("call    #%d", self.Iv)
        case OP_ret   : ret = "ret"
        default       : panic(fmt.Sprintf("invalid OpCode: 0x%02x", self.Op))
    }

    /* mark procedure entry points */
    if self.Entry {
        ret += "    ; entry"
    }
    return ret
}
