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

package ir

import (
    `fmt`
    `strings`
)

// TableEntry is one slot of a dispatch table definition, either a code label or a plain value.
type TableEntry struct {
    Label Label
    Value int64
}

// Table is a dispatch table symbol together with its definition.
type Table struct {
    Name    string
    Entries []TableEntry
}

func (self *Table) String() string {
    buf := make([]string, 0, len(self.Entries))
    for _, e := range self.Entries {
        if e.Label != NoLabel {
            buf = append(buf, fmt.Sprintf("L%d", e.Label))
        } else {
            buf = append(buf, fmt.Sprintf("$%d", e.Value))
        }
    }
    return fmt.Sprintf("%s = {%s}", self.Name, strings.Join(buf, ", "))
}

// Case is one explicit arm of a multiway branch.
type Case struct {
    Value  int64
    Target Label
}

// Dispatch describes the targets of a multiway branch. Default is only meaningful
// when HasDefault is set, it may be NoLabel while the target is unresolved.
type Dispatch struct {
    Cases      []Case
    Default    Label
    HasDefault bool
    Table      *Table
}

func (self *Dispatch) clone() *Dispatch {
    return &Dispatch {
        Cases      : append([]Case(nil), self.Cases...),
        Default    : self.Default,
        HasDefault : self.HasDefault,
        Table      : self.Table,
    }
}

// NumTargets is the number of successors a multiway branch has.
func (self *Dispatch) NumTargets() int {
    if self.HasDefault {
        return len(self.Cases) + 1
    } else {
        return len(self.Cases)
    }
}

// ClearTargets unresolves every case target and the default target.
func (self *Dispatch) ClearTargets() {
    for i := range self.Cases {
        self.Cases[i].Target = NoLabel
    }
    self.Default = NoLabel
}

// Sync rewrites the backing table definition from the current case targets.
func (self *Dispatch) Sync() {
    if self.Table == nil {
        return
    }

    /* one entry per case, the default slot goes last */
    tab := make([]TableEntry, 0, self.NumTargets())
    for _, c := range self.Cases {
        tab = append(tab, TableEntry { Label: c.Target })
    }

    /* the default target if any */
    if self.HasDefault {
        tab = append(tab, TableEntry { Label: self.Default })
    }

    /* replace the definition */
    self.Table.Entries = tab
}
