/*
 * Copyright 2022 CloudWeGo Authors
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

// Package cfgraph builds control flow graphs from linear instruction streams, optimizes
// them and linearizes them back.
package cfgraph

import (
	"tlog.app/go/errors"

	"github.com/cloudwego/cfgraph/cfg"
	"github.com/cloudwego/cfgraph/ir"
)

// Build consumes prog and constructs its control flow graph.
func Build(prog *ir.Program, sym *ir.Symtab, options ...Option) (g *cfg.Graph, err error) {
	o := makeOptions(options)
	defer catch("build", &err)
	g = cfg.Build(prog, sym, flagsOf(o))

	/* check the result if needed */
	if o.Verify {
		if err = cfg.Verify(g); err != nil {
			return nil, errors.Wrap(err, "verify")
		}
	}
	return g, nil
}

// Optimize runs the pass pipeline on g until it reaches a fixed point, and returns the
// number of rounds it took.
func Optimize(g *cfg.Graph, options ...Option) (rounds int, err error) {
	o := makeOptions(options)
	defer catch("optimize", &err)
	return cfg.Optimize(g, o.MaxRounds, o.Verify)
}

// Linearize turns g back into an instruction stream. g is empty afterwards.
func Linearize(g *cfg.Graph) (p *ir.Program, err error) {
	defer catch("linearize", &err)
	p = cfg.ToProgram(g)
	return p, nil
}
