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

// PostOrder returns the nodes reachable from the entry node through real edges, each
// node after all of its unvisited successors.
func (self *Graph) PostOrder() []*Node {
    if self.entry == None {
        return nil
    }

    /* depth-first search from the entry node */
    s := lane.NewStack()
    v := make([]bool, len(self.nodes))
    r := make([]*Node, 0, len(self.nodes))

    /* scan until the stack is empty */
    v[self.entry] = true
    for s.Push(self.nodes[self.entry]); !s.Empty(); {
        tail := true
        this := s.Head().(*Node)

        /* descend into the first unvisited successor */
        for _, e := range this.succ {
            if e.Kind.IsReal() && !v[e.To] {
                tail = false
                v[e.To] = true
                s.Push(self.nodes[e.To])
                break
            }
        }

        /* all the successors are visited, pop the current node */
        if tail {
            r = append(r, s.Pop().(*Node))
        }
    }
    return r
}

// ReversePostOrder returns the reverse of PostOrder.
func (self *Graph) ReversePostOrder() []*Node {
    ret := self.PostOrder()
    for i, j := 0, len(ret) - 1; i < j; i, j = i + 1, j - 1 {
        ret[i], ret[j] = ret[j], ret[i]
    }
    return ret
}
