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
    `fmt`

    `github.com/cloudwego/cfgraph/ir`
)

// None marks an absent node reference.
const None = -1

// Node is a basic block. Its edges and layout links refer to other nodes by Id, which is
// also the node's index in the owning Graph.
type Node struct {
    Id     int
    Ins    []*ir.Instr
    cti    *ir.Instr
    succ   []Edge
    pred   []int
    ipred  []int
    lpred  int
    lsucc  int
    labels []ir.Label
}

func (self *Node) String() string {
    return fmt.Sprintf("node_%d", self.Id)
}

// Cti returns the control transfer instruction that ends the node, or nil if the node
// falls through.
func (self *Node) Cti() *ir.Instr {
    return self.cti
}

// SetCti marks ins as the node's control transfer instruction. ins must be one of the
// node's instructions, or nil to clear the mark.
func (self *Node) SetCti(ins *ir.Instr) {
    if ins != nil && self.indexOf(ins) < 0 {
        fatalf(self, "CTI is not part of the node: %s", ins.Disassemble(nil))
    } else {
        self.cti = ins
    }
}

// Append adds an instruction at the end of the node.
func (self *Node) Append(ins *ir.Instr) {
    self.Ins = append(self.Ins, ins)
}

func (self *Node) indexOf(ins *ir.Instr) int {
    for i, p := range self.Ins {
        if p == ins {
            return i
        }
    }
    return -1
}

func (self *Node) remove(ins *ir.Instr) {
    if i := self.indexOf(ins); i >= 0 {
        copy(self.Ins[i:], self.Ins[i + 1:])
        self.Ins[len(self.Ins) - 1] = nil
        self.Ins = self.Ins[:len(self.Ins) - 1]
    }
}

// Successors returns the successor edges in slot order. The slice must not be modified.
func (self *Node) Successors() []Edge {
    return self.succ
}

func (self *Node) NumSuccessors() int {
    return len(self.succ)
}

// Succ returns the i-th successor edge.
func (self *Node) Succ(i int) Edge {
    return self.succ[i]
}

// Predecessors returns the ids of nodes with a Normal or Exceptional edge into this node,
// in no particular order. The slice must not be modified.
func (self *Node) Predecessors() []int {
    return self.pred
}

func (self *Node) NumPredecessors() int {
    return len(self.pred)
}

func (self *Node) LayoutPred() int {
    return self.lpred
}

func (self *Node) LayoutSucc() int {
    return self.lsucc
}

// Labels returns the labels bound to this node.
func (self *Node) Labels() []ir.Label {
    return self.labels
}

func (self *Node) fallsThrough() bool {
    return self.cti == nil || self.cti.IsCBR() || self.cti.IsCall()
}
