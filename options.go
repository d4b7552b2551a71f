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

package cfgraph

import (
	"fmt"

	"github.com/cloudwego/cfgraph/cfg"
	"github.com/cloudwego/cfgraph/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithKeepLayout keeps the instruction order of the input program as the initial
// layout chain of the graph.
//
// The default value of this option is "false".
func WithKeepLayout(v bool) Option {
	return func(o *opts.Options) { o.KeepLayout = v }
}

// WithBreakAtCall makes call instructions terminate basic blocks.
//
// This value can also be configured with the `CFGRAPH_BREAK_AT_CALL`
// environment variable.
//
// The default value of this option is "false".
func WithBreakAtCall(v bool) Option {
	return func(o *opts.Options) { o.BreakAtCall = v }
}

// WithBreakAtInstr builds one node per instruction instead of maximal basic blocks.
//
// The default value of this option is "false".
func WithBreakAtInstr(v bool) Option {
	return func(o *opts.Options) { o.BreakAtInstr = v }
}

// WithVerify checks every invariant of the graph after it is built, and after every
// round of the optimization pipeline.
//
// This value can also be configured with the `CFGRAPH_VERIFY` environment variable.
//
// The default value of this option is "false".
func WithVerify(v bool) Option {
	return func(o *opts.Options) { o.Verify = v }
}

// WithMaxRounds limits the number of rounds the optimization pipeline runs before
// giving up on reaching a fixed point.
//
// Set this option to "0" disables this limit.
//
// The default value of this option is "16".
func WithMaxRounds(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("cfgraph: invalid round limit: %d", n))
	} else {
		return func(o *opts.Options) { o.MaxRounds = n }
	}
}

// SetMaxRounds sets the default round limit for all pipelines from now on.
//
// Returns the old opts.MaxRounds value.
func SetMaxRounds(n int) int {
	n, opts.MaxRounds = opts.MaxRounds, n
	return n
}

func makeOptions(options []Option) opts.Options {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}
	return o
}

func flagsOf(o opts.Options) cfg.Flags {
	return cfg.Flags{
		KeepLayout:   o.KeepLayout,
		BreakAtCall:  o.BreakAtCall,
		BreakAtInstr: o.BreakAtInstr,
	}
}
