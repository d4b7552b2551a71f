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
)

type _NodeMerger struct {
    g    *Graph
    dead []bool
}

// MergeNodeSequences merges every node into its predecessor when the predecessor has no
// other successor and the node has no other predecessor, until no more merges are possible.
// Merged nodes are deleted and the graph is renumbered. It reports whether anything changed.
func MergeNodeSequences(g *Graph) bool {
    ret := false
    for {
        nm := &_NodeMerger {
            g    : g,
            dead : make([]bool, len(g.nodes)),
        }

        /* scan in reverse post-order, unreachable nodes are never visited */
        changed := false
        for _, p := range g.ReversePostOrder() {
            if p.Id != g.entry && !nm.dead[p.Id] {
                for nm.mergeOnce(p) {
                    changed = true
                }
            }
        }

        /* no more changes */
        if !changed {
            break
        }

        /* drop all the absorbed nodes */
        ret = true
        g.deleteNodes(nm.dead)
    }

    /* trace the result */
    if ret {
        tlog.V("cfg").Printw("node sequences merged", "merged", g.Stats.NodesMerged, "nodes", len(g.nodes))
    }
    return ret
}

func (self *_NodeMerger) mergeOnce(p *Node) bool {
    g := self.g
    s := g.singleSucc(p)

    /* must have exactly one distinct successor */
    if s == nil || s == p || s.Id == g.exit {
        return false
    }

    /* calls end the node under the break-at-call policy */
    if p.cti != nil && p.cti.IsCall() {
        return false
    }

    /* a branch with one live target is redundant */
    changed := false
    if ins := p.cti; ins != nil && (ins.IsCBR() || ins.IsMBR()) {
        discardMbrTable(p)
        p.remove(ins)
        p.cti = nil
        changed = true

        /* keep the control flow explicit if s is not placed next to p */
        if p.lsucc != s.Id {
            g.appendJump(p, s)
        }

        /* collapse the successor list */
        g.truncateSuccessors(p, 1)
    }

    /* s must be control-equivalent to p */
    if len(s.pred) + len(s.ipred) != 1 {
        return changed
    }

    /* anything other than a jump must have been handled above */
    if p.cti != nil && !p.cti.IsUBR() {
        fatalf(p, "cannot merge a node ending with %s", p.cti.Disassemble(g.Sym))
    }

    /* break the layout links */
    sl := s.lsucc
    g.unlinkLayoutSucc(p)
    g.unlinkLayout(s)

    /* remove the edge and the jump */
    g.ClearSuccessors(p)
    if p.cti != nil {
        p.remove(p.cti)
        p.cti = nil
    }

    /* move all the instructions except labels */
    for _, ins := range s.Ins {
        if !ins.IsLabel() {
            p.Ins = append(p.Ins, ins)
            if ins == s.cti {
                p.cti = ins
            }
        }
    }

    /* labels of s are gone */
    for _, lb := range append(s.labels[:0:0], s.labels...) {
        g.Unbind(lb)
    }

    /* move the successors, keeping their kinds */
    for _, e := range s.succ {
        g.AddEdge(p, g.nodes[e.To], e.Kind)
    }

    /* the layout successor of s follows p now */
    if g.ClearSuccessors(s); sl != None && g.canLinkLayout(p, g.nodes[sl]) {
        g.SetLayoutSucc(p, g.nodes[sl])
    }

    /* s is empty now */
    s.Ins = nil
    s.cti = nil
    self.dead[s.Id] = true
    g.Stats.NodesMerged++
    return true
}
