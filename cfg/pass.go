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
    `tlog.app/go/errors`
    `tlog.app/go/tlog`
)

// Pass is a graph transformation that reports whether it changed anything.
type Pass interface {
    Apply(*Graph) bool
}

type PassDescriptor struct {
    Pass Pass
    Name string
}

type (
    JumpThreading   struct{}
    UnreachableElim struct{}
    NodeMerging     struct{}
)

func (JumpThreading)   Apply(g *Graph) bool { return OptimizeJumps(g) }
func (UnreachableElim) Apply(g *Graph) bool { return RemoveUnreachableNodes(g) }
func (NodeMerging)     Apply(g *Graph) bool { return MergeNodeSequences(g) }

var Passes = [...]PassDescriptor {
    { Name: "Jump Threading"           , Pass: JumpThreading{} },
    { Name: "Unreachable Node Removal" , Pass: UnreachableElim{} },
    { Name: "Node Sequence Merging"    , Pass: NodeMerging{} },
}

// Optimize runs every pass in order until a full round changes nothing, or until maxRounds
// rounds have been run when maxRounds is positive. With verify set, the graph is checked
// after every round.
func Optimize(g *Graph, maxRounds int, verify bool) (int, error) {
    n := 0
    for maxRounds <= 0 || n < maxRounds {
        changed := false
        n++

        /* run every pass */
        for _, p := range Passes {
            if p.Pass.Apply(g) {
                changed = true
                tlog.V("cfg").Printw("pass applied", "pass", p.Name, "round", n, "nodes", len(g.nodes))
            }
        }

        /* check the graph if needed */
        if verify {
            if err := Verify(g); err != nil {
                return n, errors.Wrap(err, "round %d", n)
            }
        }

        /* reached the fixed point */
        if !changed {
            break
        }
    }
    return n, nil
}
