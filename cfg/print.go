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
    `io`
    `strings`
)

type DumpOptions struct {
    Layout bool     // print nodes in layout order instead of number order
    Code   bool     // print the instructions of every node
}

// printOrder returns every node once, following the layout chain first when asked to.
func (self *Graph) printOrder(layout bool) []*Node {
    if !layout {
        return self.nodes
    }

    /* the layout chain first */
    seen := make([]bool, len(self.nodes))
    ret  := make([]*Node, 0, len(self.nodes))

    /* then every node not on the chain, in number order */
    for _, bb := range append(self.LayoutOrder(), self.nodes...) {
        if !seen[bb.Id] {
            seen[bb.Id] = true
            ret = append(ret, bb)
        }
    }
    return ret
}

// fallSucc returns the node bb implicitly continues into, or None.
func (self *Graph) fallSucc(bb *Node) int {
    switch {
        case bb.Id == self.entry || bb.Id == self.exit : return None
        case bb.cti == nil                             : return self.uniqueFallSucc(bb)
        case bb.cti.IsCBR() || bb.cti.IsCall()         : break
        default                                        : return None
    }

    /* the fall-through slot */
    if len(bb.succ) == 0 || !bb.succ[0].Kind.IsReal() {
        return None
    } else {
        return bb.succ[0].To
    }
}

func (self *Graph) uniqueFallSucc(bb *Node) int {
    if s := self.uniqueRealSucc(bb); s == nil {
        return None
    } else {
        return s.Id
    }
}

func formatEdges(v []Edge) string {
    buf := make([]string, 0, len(v))
    for _, e := range v {
        if e.Kind == Normal {
            buf = append(buf, fmt.Sprintf("node_%d", e.To))
        } else {
            buf = append(buf, fmt.Sprintf("node_%d(%s)", e.To, e.Kind))
        }
    }
    return strings.Join(buf, " ")
}

func formatIds(v []int) string {
    buf := make([]string, 0, len(v))
    for _, id := range v {
        buf = append(buf, fmt.Sprintf("node_%d", id))
    }
    return strings.Join(buf, " ")
}

func formatId(id int) string {
    if id == None {
        return "-"
    } else {
        return fmt.Sprintf("node_%d", id)
    }
}

func (self *Graph) dumpNode(buf []string, bb *Node, next int, opts DumpOptions) []string {
    name := bb.String()
    switch bb.Id {
        case self.entry : name += " (entry)"
        case self.exit  : name += " (exit)"
    }

    /* node header and edges */
    buf = append(buf, name + ":")
    buf = append(buf, "    ; preds: " + formatIds(bb.pred))
    buf = append(buf, "    ; succs: " + formatEdges(bb.succ))

    /* layout links */
    if opts.Layout {
        buf = append(buf, fmt.Sprintf("    ; layout: %s <- -> %s", formatId(bb.lpred), formatId(bb.lsucc)))
    }

    /* instructions */
    if opts.Code {
        for _, ins := range bb.Ins {
            if ins.IsLabel() {
                buf = append(buf, "  " + ins.Disassemble(self.Sym))
            } else {
                buf = append(buf, "    " + ins.Disassemble(self.Sym))
            }
        }
    }

    /* the fall-through target is not printed next */
    if fs := self.fallSucc(bb); fs != None && fs != next {
        buf = append(buf, fmt.Sprintf("    goto node_%d", fs))
    }
    return buf
}

// Dump writes a textual representation of g to w.
func Dump(w io.Writer, g *Graph, opts DumpOptions) error {
    var buf []string
    var err error

    /* dump every node in printing order */
    nodes := g.printOrder(opts.Layout)
    for i, bb := range nodes {
        next := None
        if i + 1 < len(nodes) {
            next = nodes[i + 1].Id
        }
        buf = g.dumpNode(buf, bb, next, opts)
    }

    /* write them out */
    buf = append(buf, "")
    _, err = io.WriteString(w, strings.Join(buf, "\n"))
    return err
}

func (self *Graph) String() string {
    var sb strings.Builder
    _ = Dump(&sb, self, DumpOptions { Code: true })
    return sb.String()
}
