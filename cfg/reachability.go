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
    `github.com/oleiade/lane`
)

// walkForward marks every node reachable from id through real edges, or through every
// edge when all is set.
func (self *Graph) walkForward(seen []bool, id int, all bool) {
    q := lane.NewQueue()
    seen[id] = true

    /* traverse the graph with BFS */
    for q.Enqueue(id); !q.Empty(); {
        p := self.nodes[q.Dequeue().(int)]
        for _, e := range p.succ {
            if (all || e.Kind.IsReal()) && !seen[e.To] {
                seen[e.To] = true
                q.Enqueue(e.To)
            }
        }
    }
}

// walkBackward marks every node that reaches id through real edges, or through every
// edge when all is set.
func (self *Graph) walkBackward(seen []bool, id int, all bool) {
    q := lane.NewQueue()
    seen[id] = true

    /* traverse the reversed graph with BFS */
    for q.Enqueue(id); !q.Empty(); {
        p := self.nodes[q.Dequeue().(int)]
        for _, v := range p.pred {
            if !seen[v] {
                seen[v] = true
                q.Enqueue(v)
            }
        }

        /* impossible edges only when asked for */
        if all {
            for _, v := range p.ipred {
                if !seen[v] {
                    seen[v] = true
                    q.Enqueue(v)
                }
            }
        }
    }
}

// Reachable returns, indexed by node id, whether each node can be reached from the entry
// node through real edges.
func (self *Graph) Reachable() []bool {
    seen := make([]bool, len(self.nodes))
    if self.entry != None {
        self.walkForward(seen, self.entry, false)
    }
    return seen
}

// repairReachability adds impossible edges until every node is reachable from the entry
// node and reaches the exit node. Forward repair picks the lowest-numbered unreached
// node, backward repair picks the highest-numbered one.
func (self *Graph) repairReachability() {
    entry := self.nodes[self.entry]
    exit  := self.nodes[self.exit]
    seen  := make([]bool, len(self.nodes))

    /* forward reachability from entry */
    self.walkForward(seen, self.entry, false)
    for id, ok := range seen {
        if !ok {
            self.AddEdge(entry, self.nodes[id], Impossible)
            self.walkForward(seen, id, false)
            self.Stats.ImpossibleEdges++
        }
    }

    /* backward reachability from exit */
    seen = make([]bool, len(self.nodes))
    self.walkBackward(seen, self.exit, false)
    for id := len(seen) - 1; id >= 0; id-- {
        if !seen[id] {
            self.AddEdge(self.nodes[id], exit, Impossible)
            self.walkBackward(seen, id, false)
            self.Stats.ImpossibleEdges++
        }
    }
}
