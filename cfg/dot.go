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
    `sort`
    `strings`

    `gonum.org/v1/gonum/graph`
    `gonum.org/v1/gonum/graph/encoding`
    `gonum.org/v1/gonum/graph/encoding/dot`
    `gonum.org/v1/gonum/graph/simple`
    `tlog.app/go/errors`
)

type _DotNode struct {
    g  *Graph
    bb *Node
}

func (self _DotNode) ID() int64 {
    return int64(self.bb.Id)
}

func (self _DotNode) DOTID() string {
    return self.bb.String()
}

func (self _DotNode) Attributes() []encoding.Attribute {
    var label string
    switch self.bb.Id {
        case self.g.entry : label = "entry"
        case self.g.exit  : label = "exit"
        default           : label = self.bb.String()
    }

    /* node body */
    buf := []string { label }
    for _, ins := range self.bb.Ins {
        buf = append(buf, strings.ReplaceAll(ins.Disassemble(self.g.Sym), `"`, `\"`))
    }

    /* left-justified text lines */
    return []encoding.Attribute {
        { Key: "shape", Value: "box" },
        { Key: "label", Value: `"` + strings.Join(buf, `\l`) + `\l"` },
    }
}

type _DotEdge struct {
    from  _DotNode
    to    _DotNode
    slots []string
    kind  EdgeKind
}

func (self _DotEdge) From() graph.Node {
    return self.from
}

func (self _DotEdge) To() graph.Node {
    return self.to
}

func (self _DotEdge) ReversedEdge() graph.Edge {
    return _DotEdge { from: self.to, to: self.from, slots: self.slots, kind: self.kind }
}

func (self _DotEdge) Attributes() []encoding.Attribute {
    ret := []encoding.Attribute {
        { Key: "label", Value: `"` + strings.Join(self.slots, ",") + `"` },
    }

    /* impossible edges are not real control flow */
    switch self.kind {
        case Exceptional : ret = append(ret, encoding.Attribute { Key: "color", Value: "red" })
        case Impossible  : ret = append(ret, encoding.Attribute { Key: "style", Value: "dashed" })
    }
    return ret
}

// MarshalDOT renders g in the Graphviz DOT language. Parallel edges between two nodes are
// drawn once, labeled with every successor slot they occupy. Self loops are omitted.
func MarshalDOT(g *Graph, name string) ([]byte, error) {
    type pair struct { from, to int }
    dg := simple.NewDirectedGraph()
    em := make(map[pair]*_DotEdge)

    /* add all the nodes */
    for _, bb := range g.nodes {
        dg.AddNode(_DotNode { g: g, bb: bb })
    }

    /* gather all the edges, folding parallel ones */
    for _, bb := range g.nodes {
        for i, e := range bb.succ {
            key := pair { bb.Id, e.To }
            if e.To == bb.Id {
                continue
            }

            /* create the edge if not exists */
            de, ok := em[key]
            if !ok {
                de = &_DotEdge { from: _DotNode { g, bb }, to: _DotNode { g, g.nodes[e.To] }, kind: e.Kind }
                em[key] = de
            }

            /* real edges take precedence */
            if de.slots = append(de.slots, fmt.Sprint(i)); e.Kind.IsReal() && !de.kind.IsReal() {
                de.kind = e.Kind
            }
        }
    }

    /* stable edge order */
    keys := make([]pair, 0, len(em))
    for k := range em {
        keys = append(keys, k)
    }

    /* sort by source then destination */
    sort.Slice(keys, func(i int, j int) bool {
        return keys[i].from < keys[j].from || (keys[i].from == keys[j].from && keys[i].to < keys[j].to)
    })

    /* add to the graph */
    for _, k := range keys {
        dg.SetEdge(*em[k])
    }

    /* render the graph */
    if buf, err := dot.Marshal(dg, name, "", "    "); err != nil {
        return nil, errors.Wrap(err, "marshal %s", name)
    } else {
        return buf, nil
    }
}
