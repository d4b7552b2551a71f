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
    `github.com/cloudwego/cfgraph/ir`
)

// discardMbrTable strips the dispatch table of a multiway branch ending bb down to a single
// zero placeholder. The symbol stays defined since its address may still be computed elsewhere.
func discardMbrTable(bb *Node) {
    if ins := bb.cti; ins != nil && ins.IsMBR() && ins.Sw != nil && ins.Sw.Table != nil {
        ins.Sw.Table.Entries = []ir.TableEntry {{ Value: 0 }}
    }
}
