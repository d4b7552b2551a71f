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
)

type EdgeKind uint8

const (
    Normal EdgeKind = iota
    Exceptional
    Impossible
)

func (self EdgeKind) String() string {
    switch self {
        case Normal      : return "normal"
        case Exceptional : return "exceptional"
        case Impossible  : return "impossible"
        default          : panic(fmt.Sprintf("invalid edge kind: %d", self))
    }
}

// IsReal reports whether the edge reflects an actual control path.
func (self EdgeKind) IsReal() bool {
    return self != Impossible
}

type Edge struct {
    To   int
    Kind EdgeKind
}

func addUnique(v []int, id int) []int {
    for _, x := range v {
        if x == id {
            return v
        }
    }
    return append(v, id)
}

func delUnique(v []int, id int) []int {
    for i, x := range v {
        if x == id {
            copy(v[i:], v[i + 1:])
            return v[:len(v) - 1]
        }
    }
    return v
}

// hasEdge reports whether any successor slot of bb is an edge of the given class into to.
func (self *Node) hasEdge(to int, real bool) bool {
    for _, e := range self.succ {
        if e.To == to && e.Kind.IsReal() == real {
            return true
        }
    }
    return false
}

func (self *Graph) link(from *Node, to *Node, kind EdgeKind) {
    if kind.IsReal() {
        to.pred = addUnique(to.pred, from.Id)
    } else {
        to.ipred = addUnique(to.ipred, from.Id)
    }
}

func (self *Graph) unlink(from *Node, to *Node, kind EdgeKind) {
    if from.hasEdge(to.Id, kind.IsReal()) {
        return
    } else if kind.IsReal() {
        to.pred = delUnique(to.pred, from.Id)
    } else {
        to.ipred = delUnique(to.ipred, from.Id)
    }
}

// AddEdge appends a successor slot to from.
func (self *Graph) AddEdge(from *Node, to *Node, kind EdgeKind) {
    from.succ = append(from.succ, Edge { To: to.Id, Kind: kind })
    self.link(from, to, kind)
}

// SetSuccessor retargets the i-th successor slot of from, keeping its kind.
func (self *Graph) SetSuccessor(from *Node, i int, to *Node) {
    e := from.succ[i]
    from.succ[i].To = to.Id
    self.unlink(from, self.nodes[e.To], e.Kind)
    self.link(from, to, e.Kind)
}

// SetEdgeKind reclassifies the i-th successor slot of from.
func (self *Graph) SetEdgeKind(from *Node, i int, kind EdgeKind) {
    e := from.succ[i]
    from.succ[i].Kind = kind
    self.unlink(from, self.nodes[e.To], e.Kind)
    self.link(from, self.nodes[e.To], kind)
}

// RemoveSuccessor deletes the i-th successor slot of from, shifting later slots down.
func (self *Graph) RemoveSuccessor(from *Node, i int) {
    e := from.succ[i]
    copy(from.succ[i:], from.succ[i + 1:])
    from.succ = from.succ[:len(from.succ) - 1]
    self.unlink(from, self.nodes[e.To], e.Kind)
}

// ClearSuccessors deletes every successor slot of bb.
func (self *Graph) ClearSuccessors(bb *Node) {
    for len(bb.succ) != 0 {
        self.RemoveSuccessor(bb, len(bb.succ) - 1)
    }
}

func (self *Graph) truncateSuccessors(bb *Node, n int) {
    for len(bb.succ) > n {
        self.RemoveSuccessor(bb, len(bb.succ) - 1)
    }
}

func (self *Graph) removeEdgesTo(from *Node, to *Node) {
    for i := len(from.succ) - 1; i >= 0; i-- {
        if from.succ[i].To == to.Id {
            self.RemoveSuccessor(from, i)
        }
    }
}

// detach removes every edge into or out of bb.
func (self *Graph) detach(bb *Node) {
    self.ClearSuccessors(bb)

    /* real predecessors */
    for len(bb.pred) != 0 {
        self.removeEdgesTo(self.nodes[bb.pred[0]], bb)
    }

    /* impossible edge bookkeeping */
    for len(bb.ipred) != 0 {
        self.removeEdgesTo(self.nodes[bb.ipred[0]], bb)
    }
}

// uniqueRealSucc returns the only node bb reaches through real edges, or nil if there is
// none or more than one.
func (self *Graph) uniqueRealSucc(bb *Node) *Node {
    to := None
    for _, e := range bb.succ {
        if !e.Kind.IsReal() {
            continue
        } else if to == None {
            to = e.To
        } else if to != e.To {
            return nil
        }
    }
    if to == None {
        return nil
    } else {
        return self.nodes[to]
    }
}

// singleSucc returns the node every successor slot of bb points to, provided every slot
// is a real edge.
func (self *Graph) singleSucc(bb *Node) *Node {
    if len(bb.succ) == 0 {
        return nil
    }
    for _, e := range bb.succ {
        if !e.Kind.IsReal() || e.To != bb.succ[0].To {
            return nil
        }
    }
    return self.nodes[bb.succ[0].To]
}
