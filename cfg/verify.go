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
    `gonum.org/v1/gonum/graph`
    `gonum.org/v1/gonum/graph/simple`
    `gonum.org/v1/gonum/graph/traverse`
    `tlog.app/go/errors`
)

// Verify checks that g is well formed, returning an error describing the first violation.
func Verify(g *Graph) error {
    if g.entry == None || g.exit == None {
        return errors.New("graph has no entry or exit node")
    }

    /* every check in order */
    for _, fn := range []func(*Graph) error {
        verifyNodes,
        verifyEdges,
        verifyTerminators,
        verifyReachability,
        verifyLayout,
    } {
        if err := fn(g); err != nil {
            return err
        }
    }
    return nil
}

func verifyNodes(g *Graph) error {
    for i, bb := range g.nodes {
        if bb.Id != i {
            return errors.New("node %d is numbered %d", i, bb.Id)
        }
        if bb.cti != nil && bb.indexOf(bb.cti) < 0 {
            return errors.New("%s: CTI is not part of the node", bb)
        }
        for _, lb := range bb.labels {
            if id, ok := g.binds[lb]; !ok || id != bb.Id {
                return errors.New("%s: label %s is not bound to it", bb, g.Sym.Name(lb))
            }
        }
    }
    return nil
}

func sameSet(a []int, b []int) bool {
    m := make(map[int]int, len(a))
    for _, x := range a {
        m[x]++
    }
    for _, x := range b {
        if m[x]--; m[x] < 0 {
            return false
        }
    }
    return len(a) == len(b)
}

func verifyEdges(g *Graph) error {
    n := len(g.nodes)
    pred := make([][]int, n)
    ipred := make([][]int, n)

    /* compute the predecessors from the successor edges */
    for _, bb := range g.nodes {
        for _, e := range bb.succ {
            if e.To < 0 || e.To >= n {
                return errors.New("%s: successor %d out of range", bb, e.To)
            } else if e.Kind.IsReal() {
                pred[e.To] = addUnique(pred[e.To], bb.Id)
            } else {
                ipred[e.To] = addUnique(ipred[e.To], bb.Id)
            }
        }
    }

    /* compare with the recorded ones */
    for _, bb := range g.nodes {
        if !sameSet(pred[bb.Id], bb.pred) {
            return errors.New("%s: predecessors %v, expected %v", bb, bb.pred, pred[bb.Id])
        }
        if !sameSet(ipred[bb.Id], bb.ipred) {
            return errors.New("%s: impossible predecessors %v, expected %v", bb, bb.ipred, ipred[bb.Id])
        }
    }

    /* the entry and exit nodes */
    entry := g.nodes[g.entry]
    exit  := g.nodes[g.exit]

    /* check for their degrees */
    if len(entry.pred) != 0 || len(entry.ipred) != 0 {
        return errors.New("entry node has predecessors")
    } else if len(entry.succ) == 0 {
        return errors.New("entry node has no successors")
    } else if len(exit.succ) != 0 {
        return errors.New("exit node has successors")
    } else {
        return nil
    }
}

func countReal(bb *Node) int {
    n := 0
    for _, e := range bb.succ {
        if e.Kind.IsReal() {
            n++
        }
    }
    return n
}

func verifyTerminators(g *Graph) error {
    for _, bb := range g.nodes {
        nr := countReal(bb)
        switch ins := bb.cti; {
            case ins == nil || ins.IsCall(): {
                if bb.Id != g.entry && g.uniqueRealSucc(bb) == nil && nr != 0 {
                    return errors.New("%s: falls through into more than one node", bb)
                }
            }
            case ins.IsCBR(): {
                if nr != 2 || len(bb.succ) < 2 || !bb.succ[0].Kind.IsReal() || !bb.succ[1].Kind.IsReal() {
                    return errors.New("%s: conditional branch with %d real successors", bb, nr)
                }
            }
            case ins.IsUBR(): {
                if nr != 1 {
                    return errors.New("%s: unconditional branch with %d real successors", bb, nr)
                }
            }
            case ins.IsMBR(): {
                if ins.Sw == nil {
                    return errors.New("%s: multiway branch without a dispatch table", bb)
                } else if nr != ins.Sw.NumTargets() {
                    return errors.New("%s: multiway branch with %d targets but %d real successors", bb, ins.Sw.NumTargets(), nr)
                }
            }
            case ins.IsReturn(): {
                if nr != 1 || bb.succ[0].To != g.exit {
                    return errors.New("%s: return does not go to the exit node", bb)
                }
            }
        }
    }
    return nil
}

// toGonum converts g into a gonum graph over every edge kind, optionally reversed.
func toGonum(g *Graph, reversed bool) *simple.DirectedGraph {
    dg := simple.NewDirectedGraph()
    for _, bb := range g.nodes {
        dg.AddNode(simple.Node(bb.Id))
    }

    /* self loops do not affect reachability */
    for _, bb := range g.nodes {
        for _, e := range bb.succ {
            u, v := int64(bb.Id), int64(e.To)
            if reversed {
                u, v = v, u
            }
            if u != v {
                dg.SetEdge(dg.NewEdge(simple.Node(u), simple.Node(v)))
            }
        }
    }
    return dg
}

func unvisited(g *Graph, dg graph.Directed, from int) int {
    df := &traverse.DepthFirst{}
    df.Walk(dg, simple.Node(from), nil)

    /* find the first node that is not visited */
    for _, bb := range g.nodes {
        if !df.Visited(simple.Node(bb.Id)) {
            return bb.Id
        }
    }
    return None
}

func verifyReachability(g *Graph) error {
    if id := unvisited(g, toGonum(g, false), g.entry); id != None {
        return errors.New("node_%d is not reachable from the entry node", id)
    } else if id = unvisited(g, toGonum(g, true), g.exit); id != None {
        return errors.New("node_%d does not reach the exit node", id)
    } else {
        return nil
    }
}

func verifyLayout(g *Graph) error {
    for _, bb := range g.nodes {
        if bb.lsucc != None && g.nodes[bb.lsucc].lpred != bb.Id {
            return errors.New("%s: layout successor %d does not link back", bb, bb.lsucc)
        }
        if bb.lpred != None && g.nodes[bb.lpred].lsucc != bb.Id {
            return errors.New("%s: layout predecessor %d does not link back", bb, bb.lpred)
        }
    }

    /* walk every chain from its head */
    seen := make([]bool, len(g.nodes))
    for _, bb := range g.nodes {
        if bb.lpred != None {
            continue
        }
        for p := bb; p != nil; p = g.LayoutSucc(p) {
            seen[p.Id] = true
        }
    }

    /* nodes not reached from any head are on a cycle */
    for id, ok := range seen {
        if !ok {
            return errors.New("node_%d is on a layout cycle", id)
        }
    }

    /* fall-through only matters once the chain is total */
    chain := g.LayoutOrder()
    if len(chain) != len(g.nodes) {
        return nil
    }

    /* every fall-through must match the layout */
    for _, bb := range chain {
        if fs := g.fallSucc(bb); fs != None && fs != bb.lsucc {
            return errors.New("%s: falls through into node_%d but is followed by %s", bb, fs, formatId(bb.lsucc))
        }
    }
    return nil
}
