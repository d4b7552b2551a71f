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

// isVacuous reports whether bb does nothing but transfer control to its only successor.
func (self *Graph) isVacuous(bb *Node) bool {
    if bb.Id == self.entry || bb.Id == self.exit {
        return false
    }

    /* must have exactly one real successor */
    if len(bb.succ) != 1 || !bb.succ[0].Kind.IsReal() {
        return false
    }

    /* no active content other than a jump */
    for _, ins := range bb.Ins {
        if ins.Entry {
            return false
        } else if ins.IsLabel() || ins.IsNop() {
            continue
        } else if ins != bb.cti || !ins.IsUBR() {
            return false
        }
    }
    return true
}

// isFallThrough reports whether the i-th successor slot of bb is reached by falling through.
func isFallThrough(bb *Node, i int) bool {
    if bb.cti == nil {
        return true
    } else {
        return i == 0 && (bb.cti.IsCBR() || bb.cti.IsCall())
    }
}

// OptimizeJumps threads every real edge into a vacuous node through to the node's final
// destination. Vacuous nodes left without predecessors are not removed. It reports whether
// any edge was changed.
func OptimizeJumps(g *Graph) bool {
    red := make(map[int]int)
    mod := make([]bool, len(g.nodes))

    /* build the redirect table */
    for _, bb := range g.nodes {
        if g.isVacuous(bb) {
            red[bb.Id] = bb.succ[0].To
        }
    }

    /* nothing to thread */
    if len(red) == 0 {
        return false
    }

    /* iterate until nothing changes */
    for n := 0;; n++ {
        changed := false
        if n > len(g.nodes) * len(g.nodes) {
            fatalf(nil, "jump threading does not converge")
        }

        /* retarget every real edge into a vacuous node */
        for _, bb := range g.nodes {
            for i, e := range bb.succ {
                if r, ok := red[e.To]; ok && r != e.To && e.Kind.IsReal() {
                    changed = true
                    mod[bb.Id] = true
                    g.redirect(bb, i, g.nodes[r])

                    /* shorten the redirect chains through bb */
                    if _, ok = red[bb.Id]; ok {
                        for k, v := range red {
                            if k == bb.Id || v == bb.Id {
                                red[k] = r
                            }
                        }
                    }
                }
            }
        }

        /* no more changes */
        if !changed {
            break
        }
    }

    /* branch targets follow the edges */
    n := 0
    for id, ok := range mod {
        if ok {
            n++
            g.syncTargets(g.nodes[id])
        }
    }

    /* trace the result */
    tlog.V("cfg").Printw("jumps threaded", "nodes", n, "threaded", g.Stats.JumpsThreaded)
    return n != 0
}

func (self *Graph) redirect(bb *Node, i int, to *Node) {
    old := bb.succ[i].To
    self.SetSuccessor(bb, i, to)
    self.Stats.JumpsThreaded++

    /* bb no longer falls through into the old target */
    if isFallThrough(bb, i) && bb.lsucc == old {
        if self.unlinkLayoutSucc(bb); self.canLinkLayout(bb, to) {
            self.SetLayoutSucc(bb, to)
        }
    }
}
