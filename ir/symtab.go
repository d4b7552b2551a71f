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
)

// Symtab mints labels and dispatch table symbols for one procedure.
type Symtab struct {
    seq    int
    tseq   int
    names  []string
    tabs   map[string]bool
    uniq   map[string]Label
}

func NewSymtab() *Symtab {
    return &Symtab {
        names : []string{""},
        tabs  : make(map[string]bool),
        uniq  : make(map[string]Label),
    }
}

// NewLabel creates a label with the given name, which must not already exist.
func (self *Symtab) NewLabel(name string) Label {
    if _, ok := self.uniq[name]; ok {
        panic("ir: duplicated label: " + name)
    } else {
        return self.define(name)
    }
}

// Mint creates a fresh label with a generated name.
func (self *Symtab) Mint() Label {
    for {
        self.seq++
        name := fmt.Sprintf("_L%d", self.seq)

        /* skip over names already taken by user labels */
        if _, ok := self.uniq[name]; !ok {
            return self.define(name)
        }
    }
}

func (self *Symtab) define(name string) Label {
    lb := Label(len(self.names))
    self.uniq[name] = lb
    self.names = append(self.names, name)
    return lb
}

func (self *Symtab) Lookup(name string) (Label, bool) {
    lb, ok := self.uniq[name]
    return lb, ok
}

func (self *Symtab) Name(lb Label) string {
    if lb == NoLabel || int(lb) >= len(self.names) {
        return fmt.Sprintf("L%d", lb)
    } else {
        return self.names[lb]
    }
}

// NewTable creates a dispatch table symbol with the given name, which must not already exist.
func (self *Symtab) NewTable(name string) *Table {
    if self.tabs[name] {
        panic("ir: duplicated table: " + name)
    } else {
        self.tabs[name] = true
        return &Table{Name: name}
    }
}

// MintTable creates a fresh dispatch table symbol with a generated name.
func (self *Symtab) MintTable() *Table {
    for {
        name := fmt.Sprintf("_T%d", self.tseq)
        self.tseq++

        /* skip over names already taken by user tables */
        if !self.tabs[name] {
            return self.NewTable(name)
        }
    }
}
