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
    `tlog.app/go/tlog`

    `github.com/cloudwego/cfgraph/ir`
)

type _LayoutFixer struct {
    g    *Graph
    lo   int
    seen []bool
}

func (self *_LayoutFixer) visited(id int) bool {
    return id < len(self.seen) && self.seen[id]
}

func (self *_LayoutFixer) visit(id int) {
    for id >= len(self.seen) {
        self.seen = append(self.seen, false)
    }
    self.seen[id] = true
}

// free reports whether bb can still be placed right after the current node.
func (self *_LayoutFixer) free(bb *Node) bool {
    return bb != nil && bb.lpred == None && bb.Id != self.g.entry && !self.visited(bb.Id)
}

func (self *_LayoutFixer) realSucc(bb *Node, i int) *Node {
    if i >= len(bb.succ) || !bb.succ[i].Kind.IsReal() {
        return nil
    } else {
        return self.g.nodes[bb.succ[i].To]
    }
}

// candidate picks the fall-through layout successor of bb, splicing an empty node in
// when the fall-through target has already been claimed.
func (self *_LayoutFixer) candidate(bb *Node) *Node {
    switch ins := bb.cti; {
        case ins == nil: {
            if s := self.g.uniqueRealSucc(bb); self.free(s) {
                return s
            } else {
                return nil
            }
        }

        /* calls keep their fall-through no matter what */
        case ins.IsCall(): {
            if s := self.realSucc(bb, 0); s == nil {
                return nil
            } else if self.free(s) {
                return s
            } else {
                return self.g.splice(bb, 0)
            }
        }

        /* try the fall-through first, then the branch target */
        case ins.IsCBR(): {
            if s := self.realSucc(bb, 0); s == nil {
                fatalf(bb, "conditional branch without a fall-through successor")
            } else if self.free(s) {
                return s
            }

            /* invert the branch if the target is free */
            if s := self.realSucc(bb, 1); self.free(s) {
                ins.Invert()
                bb.succ[0], bb.succ[1] = bb.succ[1], bb.succ[0]
                return s
            }

            /* both are claimed */
            return self.g.splice(bb, 0)
        }

        /* no fall-through for other CTIs */
        default: {
            return nil
        }
    }
}

// scan finds the first unvisited node, then walks back to the head of the layout chain
// it belongs to.
func (self *_LayoutFixer) scan(cur *Node) *Node {
    g := self.g
    n := len(g.nodes)

    /* skip over all the visited nodes */
    for self.lo < n && self.visited(self.lo) {
        self.lo++
    }

    /* all nodes are placed */
    if self.lo >= n {
        return nil
    }

    /* find the head of the chain */
    bb := g.nodes[self.lo]
    for i := 0; bb.lpred != None; i++ {
        if i >= n {
            fatalf(bb, "layout chain is cyclic")
        }
        bb = g.nodes[bb.lpred]
    }

    /* never re-use the current node */
    if bb == cur || self.visited(bb.Id) {
        fatalf(bb, "layout chain head has already been placed")
    }
    return bb
}

// FixLayout completes the layout chain so that it visits every node exactly once, starting
// at the entry node. Existing layout links are kept, explicit branches are inserted or elided
// wherever the chain disagrees with fall-through semantics.
func FixLayout(g *Graph) {
    lf := &_LayoutFixer { g: g }
    cur := g.nodes[g.entry]

    /* extend the chain one node at a time */
    for {
        lf.visit(cur.Id)

        /* follow already established links */
        if cur.lsucc != None {
            if lf.visited(cur.lsucc) {
                fatalf(cur, "layout chain is cyclic")
            }
            cur = g.nodes[cur.lsucc]
            continue
        }

        /* fall-through candidate, or the next unplaced chain */
        next := lf.candidate(cur)
        if next == nil {
            if next = lf.scan(cur); next == nil {
                break
            }
        }

        /* link them together */
        g.SetLayoutSucc(cur, next)
        cur = next
    }

    /* every node must be placed */
    for _, bb := range g.nodes {
        if !lf.visited(bb.Id) {
            fatalf(bb, "node is not placed in the layout chain")
        }
    }

    /* fix up explicit branches */
    g.finalizeLayout()
    tlog.V("cfg").Printw("layout fixed", "nodes", len(g.nodes), "spliced", g.Stats.NodesSpliced, "inserted", g.Stats.BranchesInserted)
}

func (self *Graph) firstReal(bb *Node) int {
    for i, e := range bb.succ {
        if e.Kind.IsReal() {
            return i
        }
    }
    return None
}

// appendJump ends bb with an unconditional branch to to.
func (self *Graph) appendJump(bb *Node, to *Node) {
    ins := ir.NewJump(self.LabelOf(to))
    bb.Append(ins)
    bb.cti = ins
    self.Stats.BranchesInserted++
}

// splice inserts an empty node on the i-th successor edge of bb and returns it.
func (self *Graph) splice(bb *Node, i int) *Node {
    e  := self.NewEmptyNode()
    to := self.nodes[bb.succ[i].To]
    kd := bb.succ[i].Kind

    /* bb -> e -> to */
    self.SetSuccessor(bb, i, e)
    self.AddEdge(e, to, kd)
    self.Stats.NodesSpliced++
    return e
}

// spliceJump splices a node carrying a jump onto the fall-through edge of bb, placing it
// right after bb in the layout chain.
func (self *Graph) spliceJump(bb *Node) {
    to := self.nodes[bb.succ[0].To]
    ls := self.LayoutSucc(bb)
    nb := self.splice(bb, 0)

    /* bb -> nb -> ls */
    self.SetLayoutSucc(bb, nb)
    self.SetLayoutSucc(nb, ls)
    self.appendJump(nb, to)
}

func (self *Graph) finalizeLayout() {
    for i := 0; i < len(self.nodes); i++ {
        bb := self.nodes[i]
        if bb.Id == self.entry || bb.Id == self.exit {
            continue
        }

        /* check the CTI kind */
        switch ins := bb.cti; {
            default: {
                break
            }

            /* pure fall-through that the layout breaks */
            case ins == nil: {
                if to := self.firstReal(bb); to == None {
                    break
                } else if s := self.uniqueRealSucc(bb); s == nil {
                    fatalf(bb, "fall-through node with more than one successor")
                } else if s.Id != bb.lsucc {
                    self.appendJump(bb, s)
                }
            }

            /* jumps to the very next node are redundant */
            case ins.IsUBR(): {
                if to := self.firstReal(bb); to != None && bb.succ[to].To == bb.lsucc {
                    bb.remove(ins)
                    bb.cti = nil
                    self.Stats.BranchesElided++
                }
            }

            /* flip the branch if the target is placed next to it */
            case ins.IsCBR(): {
                if len(bb.succ) < 2 {
                    fatalf(bb, "conditional branch with %d successors", len(bb.succ))
                }
                if bb.succ[0].To != bb.lsucc && bb.succ[1].To == bb.lsucc && bb.succ[1].Kind.IsReal() {
                    ins.Invert()
                    bb.succ[0], bb.succ[1] = bb.succ[1], bb.succ[0]
                }
                if bb.succ[0].To != bb.lsucc {
                    self.spliceJump(bb)
                }
            }

            /* calls must fall through */
            case ins.IsCall(): {
                if len(bb.succ) != 0 && bb.succ[0].Kind.IsReal() && bb.succ[0].To != bb.lsucc {
                    self.spliceJump(bb)
                }
            }
        }
    }
}

// syncTargets rewrites the branch targets of bb from its successor edges.
func (self *Graph) syncTargets(bb *Node) {
    switch ins := bb.cti; {
        case ins == nil: {
            break
        }

        /* the target is always in the second slot */
        case ins.IsCBR(): {
            if len(bb.succ) < 2 || !bb.succ[1].Kind.IsReal() {
                fatalf(bb, "conditional branch without a branch target")
            }
            ins.SetTarget(self.targetOf(bb, bb.succ[1].To))
        }

        /* the only real successor */
        case ins.IsUBR(): {
            if i := self.firstReal(bb); i == None {
                fatalf(bb, "unconditional branch without a branch target")
            } else {
                ins.SetTarget(self.targetOf(bb, bb.succ[i].To))
            }
        }

        /* cases in order, then the default */
        case ins.IsMBR(): {
            sw := ins.Sw
            nc := len(sw.Cases)

            /* check for successor count */
            if len(bb.succ) < sw.NumTargets() {
                fatalf(bb, "multiway branch with %d targets but %d successors", sw.NumTargets(), len(bb.succ))
            }

            /* update the descriptor */
            for i := range sw.Cases {
                sw.Cases[i].Target = self.targetOf(bb, bb.succ[i].To)
            }
            if sw.HasDefault {
                sw.Default = self.targetOf(bb, bb.succ[nc].To)
            }

            /* rebuild the table */
            sw.Sync()
        }
    }
}

func (self *Graph) targetOf(bb *Node, id int) ir.Label {
    if id == self.entry || id == self.exit {
        fatalf(bb, "branch into %s", self.nodes[id])
    }
    return self.LabelOf(self.nodes[id])
}

// ToProgram fixes the layout, then drains every node in layout order into a new Program.
// The graph is empty afterwards.
func ToProgram(g *Graph) *ir.Program {
    n := 0
    p := new(ir.Program)
    FixLayout(g)

    /* resolve all the branch targets first, this may mint labels */
    for _, bb := range g.nodes {
        g.syncTargets(bb)
    }

    /* drain the nodes */
    for bb := g.Entry(); bb != nil && n < len(g.nodes); bb = g.LayoutSucc(bb) {
        for _, ins := range bb.Ins {
            p.Push(ins)
        }
        n++
        bb.Ins = nil
        bb.cti = nil
    }

    /* every node must be drained exactly once */
    if n != len(g.nodes) {
        fatalf(nil, "layout chain covers %d of %d nodes", n, len(g.nodes))
    }

    /* the graph is consumed */
    g.release()
    tlog.V("cfg").Printw("graph linearized", "nodes", n, "instrs", p.Len)
    return p
}

// Canonicalize rebuilds g in place under flags. It does nothing when g was already built
// with the same flags.
func Canonicalize(g *Graph, flags Flags) bool {
    if g.Flags == flags {
        return false
    }

    /* linearize, then rebuild under the new flags */
    p := ToProgram(g)
    g.Flags = flags
    build(g, p)
    return true
}

// RemoveLayoutInfo discards the layout chain without touching any edge.
func RemoveLayoutInfo(g *Graph) {
    for _, bb := range g.nodes {
        bb.lpred = None
        bb.lsucc = None
    }
}
