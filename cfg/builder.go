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

type _GraphBuilder struct {
    g    *Graph
    root *Node
    prev *Node
}

// Build consumes prog and returns its control flow graph. Malformed input (an unbound
// branch target, a multiway branch without a dispatch descriptor, a procedure without an
// entry point) panics with a *ConsistencyError.
func Build(prog *ir.Program, sym *ir.Symtab, flags Flags) *Graph {
    g := newGraph(sym, flags)
    build(g, prog)
    return g
}

func build(g *Graph, prog *ir.Program) {
    b := &_GraphBuilder{g: g}
    b.root = g.NewEmptyNode()
    g.entry = b.root.Id

    /* Pass 1: form the basic blocks */
    if g.BreakAtInstr {
        b.single(prog)
    } else {
        b.maximal(prog)
    }

    /* a well-formed procedure has at least one entry point */
    if len(b.root.succ) == 0 {
        fatalf(b.root, "procedure has no entry point")
    }

    /* Pass 2: resolve the branch edges */
    g.exit = g.NewEmptyNode().Id
    b.branches()

    /* Pass 3: every node must be reachable, and must reach the exit */
    g.repairReachability()
    tlog.V("cfg").Printw("graph built", "nodes", len(g.nodes), "impossible_edges", g.Stats.ImpossibleEdges, "maximal", !g.BreakAtInstr)
}

// terminates reports whether ins ends a basic block under the break-at-call policy.
func (self *_GraphBuilder) terminates(ins *ir.Instr) bool {
    return ins.IsCTI() && (self.g.BreakAtCall || !ins.IsCall())
}

// open starts a new node after the previous one, wiring the fall-through edge and the
// layout link where they apply.
func (self *_GraphBuilder) open() *Node {
    g := self.g
    bb := g.NewEmptyNode()

    /* link with the previous node */
    if p := self.prev; p != nil {
        if g.KeepLayout {
            g.SetLayoutSucc(p, bb)
        }
        if p.fallsThrough() {
            g.AddEdge(p, bb, Normal)
        }
    }

    /* this will be the new previous node */
    self.prev = bb
    return bb
}

func (self *_GraphBuilder) single(p *ir.Program) {
    for !p.Empty() {
        ins := p.Pop()
        bb := self.open()
        bb.Ins = append(bb.Ins, ins)

        /* labels are bound to their own node */
        if ins.IsLabel() {
            self.g.Bind(ins.Lb, bb)
        }

        /* procedure entry points */
        if ins.Entry {
            self.g.AddEdge(self.root, bb, Normal)
        }

        /* control transfer instructions */
        if self.terminates(ins) {
            bb.cti = ins
        }
    }
}

func (self *_GraphBuilder) maximal(p *ir.Program) {
    for !p.Empty() {
        entry := false
        bb := self.open()

        /* absorb all the labels at the start of the node */
        for !p.Empty() && p.Head.IsLabel() {
            ins := p.Pop()
            entry = entry || ins.Entry
            bb.Ins = append(bb.Ins, ins)
            self.g.Bind(ins.Lb, bb)
        }

        /* accumulate until a CTI or the next label */
        for !p.Empty() && !p.Head.IsLabel() {
            ins := p.Pop()
            entry = entry || ins.Entry
            bb.Ins = append(bb.Ins, ins)

            /* end of basic block */
            if self.terminates(ins) {
                bb.cti = ins
                break
            }
        }

        /* procedure entry points */
        if entry {
            self.g.AddEdge(self.root, bb, Normal)
        }
    }
}

func (self *_GraphBuilder) target(bb *Node, lb ir.Label) *Node {
    if lb == ir.NoLabel {
        fatalf(bb, "unresolved branch target: %s", bb.cti.Disassemble(self.g.Sym))
    }
    if to := self.g.Lookup(lb); to == nil {
        fatalLabel(self.g.Sym, bb, lb, "branch target is not bound to any node")
        return nil
    } else {
        return to
    }
}

func (self *_GraphBuilder) branches() {
    g := self.g
    exit := g.nodes[g.exit]

    /* resolve the successors by CTI kind */
    for _, bb := range g.nodes {
        if bb.Id == g.entry || bb.Id == g.exit || bb.cti == nil {
            continue
        }

        /* check the CTI kind */
        switch ins := bb.cti; {
            default: {
                fatalf(bb, "invalid control transfer instruction: %s", ins.Disassemble(g.Sym))
            }

            /* the fall-through edge is already in the first slot */
            case ins.IsCBR(): {
                if len(bb.succ) != 1 {
                    fatalf(bb, "conditional branch without a fall-through successor")
                }
                g.AddEdge(bb, self.target(bb, ins.Lb), Normal)
            }

            /* the target is the only successor */
            case ins.IsUBR(): {
                g.AddEdge(bb, self.target(bb, ins.Lb), Normal)
            }

            /* every case in order, then the default */
            case ins.IsMBR(): {
                if ins.Sw == nil {
                    fatalf(bb, "multiway branch without a dispatch table")
                }
                for _, c := range ins.Sw.Cases {
                    g.AddEdge(bb, self.target(bb, c.Target), Normal)
                }
                if ins.Sw.HasDefault {
                    g.AddEdge(bb, self.target(bb, ins.Sw.Default), Normal)
                }
            }

            /* returns go straight to the exit node */
            case ins.IsReturn(): {
                g.AddEdge(bb, exit, Normal)
            }

            /* calls only fall through */
            case ins.IsCall(): {
                break
            }
        }
    }
}
