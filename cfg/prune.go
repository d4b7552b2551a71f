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

// RemoveUnreachableNodes deletes every node that cannot be reached from the entry node
// through real edges, then renumbers the survivors. The exit node is always kept. It
// reports whether anything was removed.
func RemoveUnreachableNodes(g *Graph) bool {
    n := 0
    seen := g.Reachable()

    /* the exit node may only be reachable through impossible edges */
    if g.exit != None {
        seen[g.exit] = true
    }

    /* mark all the dead nodes */
    kill := make([]bool, len(seen))
    for id, ok := range seen {
        if !ok {
            n++
            kill[id] = true
        }
    }

    /* nothing to remove */
    if n == 0 {
        return false
    }

    /* delete and renumber */
    g.deleteNodes(kill)
    tlog.V("cfg").Printw("unreachable nodes removed", "removed", n, "nodes", len(g.nodes))
    return true
}
