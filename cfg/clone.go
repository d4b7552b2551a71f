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

// CloneNode deep-copies every instruction of bb into a new node. Labels are replaced by
// fresh ones bound to the clone, branch targets are left unresolved, and a multiway branch
// gets a new dispatch table. The clone has no edges, wiring it is up to the caller.
func CloneNode(g *Graph, bb *Node) *Node {
    var tab *ir.Table
    var old *ir.Table

    /* multiway branches need a new table symbol */
    if bb.cti != nil && bb.cti.IsMBR() && bb.cti.Sw != nil {
        old = bb.cti.Sw.Table
        tab = g.Sym.MintTable()
    }

    /* copy every instruction */
    nb := g.NewEmptyNode()
    nb.Ins = make([]*ir.Instr, 0, len(bb.Ins))

    /* labels are minted again, everything else is cloned */
    for _, ins := range bb.Ins {
        var p *ir.Instr
        if ins.IsLabel() {
            p = ir.NewLabel(g.Sym.Mint())
            g.Bind(p.Lb, nb)
        } else {
            p = ins.Clone()
        }

        /* table address computations refer to the new table */
        if old != nil && p.Tb == old {
            p.Tb = tab
        }

        /* the clone is never a procedure entry */
        p.Entry = false
        nb.Ins = append(nb.Ins, p)

        /* the corresponding CTI */
        if ins == bb.cti {
            nb.cti = p
        }
    }

    /* unresolve the branch targets */
    if ins := nb.cti; ins != nil {
        switch {
            case ins.IsCBR() || ins.IsUBR(): {
                ins.SetTarget(ir.NoLabel)
            }
            case ins.IsMBR() && ins.Sw != nil: {
                ins.Sw.ClearTargets()
                ins.Sw.Table = tab
                ins.Sw.Sync()
            }
        }
    }

    /* update the statistics */
    g.Stats.NodesCloned++
    return nb
}
