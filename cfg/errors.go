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
    `strings`

    `github.com/cloudwego/cfgraph/ir`
)

// ConsistencyError is the panic value raised when a graph or its input violates an
// invariant that cannot be repaired locally.
type ConsistencyError struct {
    Node   int
    Label  string
    Reason string
}

func (self *ConsistencyError) Error() string {
    var buf []string
    if self.Node != None { buf = append(buf, fmt.Sprintf("node %d", self.Node)) }
    if self.Label != ""  { buf = append(buf, "label " + self.Label) }

    /* no location available */
    if len(buf) == 0 {
        return "cfg: " + self.Reason
    } else {
        return fmt.Sprintf("cfg: %s (%s)", self.Reason, strings.Join(buf, ", "))
    }
}

func fatalf(bb *Node, format string, args ...interface{}) {
    id := None
    if bb != nil {
        id = bb.Id
    }
    panic(&ConsistencyError {
        Node   : id,
        Reason : fmt.Sprintf(format, args...),
    })
}

func fatalLabel(sym *ir.Symtab, bb *Node, lb ir.Label, format string, args ...interface{}) {
    id := None
    if bb != nil {
        id = bb.Id
    }
    panic(&ConsistencyError {
        Node   : id,
        Label  : sym.Name(lb),
        Reason : fmt.Sprintf(format, args...),
    })
}
