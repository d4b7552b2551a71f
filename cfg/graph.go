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
    `github.com/cloudwego/cfgraph/ir`
)

// Flags selects how a Graph is built from an instruction stream.
type Flags struct {
    KeepLayout   bool
    BreakAtCall  bool
    BreakAtInstr bool
}

// Graph is the control flow graph of one procedure. It owns every Node, addressed by
// a dense Id, and every edit to edges or layout links goes through it.
type Graph struct {
    Flags
    Sym   *ir.Symtab
    Stats Stats
    nodes []*Node
    entry int
    exit  int
    binds map[ir.Label]int
}

func newGraph(sym *ir.Symtab, flags Flags) *Graph {
    return &Graph {
        Flags : flags,
        Sym   : sym,
        entry : None,
        exit  : None,
        binds : make(map[ir.Label]int),
    }
}

func (self *Graph) NumNodes() int {
    return len(self.nodes)
}

func (self *Graph) Node(id int) *Node {
    return self.nodes[id]
}

// Nodes returns every node in number order. The slice must not be modified.
func (self *Graph) Nodes() []*Node {
    return self.nodes
}

func (self *Graph) Entry() *Node {
    return self.nodeOrNil(self.entry)
}

func (self *Graph) Exit() *Node {
    return self.nodeOrNil(self.exit)
}

func (self *Graph) nodeOrNil(id int) *Node {
    if id == None {
        return nil
    } else {
        return self.nodes[id]
    }
}

// NewEmptyNode creates a node without instructions, edges or layout links.
func (self *Graph) NewEmptyNode() *Node {
    bb := &Node {
        Id    : len(self.nodes),
        lpred : None,
        lsucc : None,
    }
    self.nodes = append(self.nodes, bb)
    self.Stats.NodesCreated++
    return bb
}

// Bind records that lb refers to the start of bb.
func (self *Graph) Bind(lb ir.Label, bb *Node) {
    if id, ok := self.binds[lb]; ok {
        if id == bb.Id {
            return
        }
        self.nodes[id].labels = delLabel(self.nodes[id].labels, lb)
    }
    self.binds[lb] = bb.Id
    bb.labels = append(bb.labels, lb)
}

// Lookup returns the node lb is bound to, or nil.
func (self *Graph) Lookup(lb ir.Label) *Node {
    if id, ok := self.binds[lb]; !ok {
        return nil
    } else {
        return self.nodes[id]
    }
}

// Unbind invalidates the binding of lb if any.
func (self *Graph) Unbind(lb ir.Label) {
    if id, ok := self.binds[lb]; ok {
        delete(self.binds, lb)
        self.nodes[id].labels = delLabel(self.nodes[id].labels, lb)
    }
}

func delLabel(v []ir.Label, lb ir.Label) []ir.Label {
    for i, x := range v {
        if x == lb {
            copy(v[i:], v[i + 1:])
            return v[:len(v) - 1]
        }
    }
    return v
}

// LabelOf returns a label bound to bb, minting one and placing its label instruction at
// the start of bb if there is none yet.
func (self *Graph) LabelOf(bb *Node) ir.Label {
    if len(bb.labels) != 0 {
        return bb.labels[0]
    }

    /* mint a new label at the head of the node */
    lb := self.Sym.Mint()
    bb.Ins = append([]*ir.Instr { ir.NewLabel(lb) }, bb.Ins...)
    self.Bind(lb, bb)
    return lb
}

func (self *Graph) LayoutSucc(bb *Node) *Node {
    return self.nodeOrNil(bb.lsucc)
}

func (self *Graph) LayoutPred(bb *Node) *Node {
    return self.nodeOrNil(bb.lpred)
}

// SetLayoutSucc places to immediately after bb in the layout chain, breaking any previous
// links of either node on that side. A nil to only clears bb's layout successor.
func (self *Graph) SetLayoutSucc(bb *Node, to *Node) {
    self.unlinkLayoutSucc(bb)
    if to != nil {
        if to.lpred != None {
            self.unlinkLayoutSucc(self.nodes[to.lpred])
        }
        bb.lsucc = to.Id
        to.lpred = bb.Id
    }
}

func (self *Graph) unlinkLayoutSucc(bb *Node) {
    if bb.lsucc != None {
        self.nodes[bb.lsucc].lpred = None
        bb.lsucc = None
    }
}

func (self *Graph) unlinkLayout(bb *Node) {
    self.unlinkLayoutSucc(bb)
    if bb.lpred != None {
        self.unlinkLayoutSucc(self.nodes[bb.lpred])
    }
}

// spliceLayout removes bb from the layout chain, joining its neighbours.
func (self *Graph) spliceLayout(bb *Node) {
    p, s := bb.lpred, bb.lsucc
    bb.lpred, bb.lsucc = None, None

    /* join the neighbours */
    if p != None { self.nodes[p].lsucc = s }
    if s != None { self.nodes[s].lpred = p }
}

// canLinkLayout reports whether to can be placed right after bb without breaking another
// chain or closing a cycle.
func (self *Graph) canLinkLayout(bb *Node, to *Node) bool {
    if to == bb || to.lpred != None || to.Id == self.entry {
        return false
    }

    /* to must not be at the head of the chain bb belongs to */
    for i, p := 0, bb.lpred; p != None; i, p = i + 1, self.nodes[p].lpred {
        if p == to.Id || i >= len(self.nodes) {
            return false
        }
    }
    return true
}

// LayoutOrder returns the nodes on the layout chain starting at the entry node.
func (self *Graph) LayoutOrder() []*Node {
    ret := make([]*Node, 0, len(self.nodes))
    for bb := self.Entry(); bb != nil && len(ret) <= len(self.nodes); bb = self.LayoutSucc(bb) {
        ret = append(ret, bb)
    }
    return ret
}

// deleteNodes drops every node marked in kill along with its edges, labels and layout
// links, then renumbers the survivors densely in their previous relative order.
func (self *Graph) deleteNodes(kill []bool) {
    for id, dead := range kill {
        if dead {
            bb := self.nodes[id]
            discardMbrTable(bb)

            /* invalidate all the bindings */
            for _, lb := range bb.labels {
                delete(self.binds, lb)
            }

            /* cut it out of the graph */
            bb.labels = nil
            self.detach(bb)
            self.spliceLayout(bb)
        }
    }

    /* compact the node list */
    remap := make([]int, len(self.nodes))
    nodes := self.nodes[:0]
    for id, bb := range self.nodes {
        if id < len(kill) && kill[id] {
            remap[id] = None
            self.Stats.NodesRemoved++
        } else {
            remap[id] = len(nodes)
            nodes = append(nodes, bb)
        }
    }

    /* clear the tail so the dropped nodes can be collected */
    for i := len(nodes); i < len(self.nodes); i++ {
        self.nodes[i] = nil
    }

    /* rewrite every reference */
    self.nodes = nodes
    self.renumber(remap)
}

func remapId(remap []int, id int) int {
    if id == None {
        return None
    } else {
        return remap[id]
    }
}

func (self *Graph) renumber(remap []int) {
    for id, bb := range self.nodes {
        bb.Id    = id
        bb.lpred = remapId(remap, bb.lpred)
        bb.lsucc = remapId(remap, bb.lsucc)

        /* edges */
        for i := range bb.succ  { bb.succ[i].To = remap[bb.succ[i].To] }
        for i := range bb.pred  { bb.pred[i]    = remap[bb.pred[i]] }
        for i := range bb.ipred { bb.ipred[i]   = remap[bb.ipred[i]] }
    }

    /* label bindings */
    for lb, id := range self.binds {
        self.binds[lb] = remap[id]
    }

    /* distinguished nodes */
    self.entry = remapId(remap, self.entry)
    self.exit  = remapId(remap, self.exit)
}

// release drops every node, leaving the graph empty.
func (self *Graph) release() {
    for i := range self.nodes {
        self.nodes[i] = nil
    }
    self.nodes = nil
    self.entry = None
    self.exit  = None
    self.binds = make(map[ir.Label]int)
}
