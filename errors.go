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

package cfgraph

import (
    `fmt`

    `github.com/cloudwego/cfgraph/cfg`
)

// GraphError occures when a program or a graph violates an invariant that cannot be repaired.
type GraphError struct {
    Phase string
    Cause *cfg.ConsistencyError
}

func (self GraphError) Error() string {
    return fmt.Sprintf("GraphError(%s): %s", self.Phase, self.Cause.Error())
}

func (self GraphError) Unwrap() error {
    return self.Cause
}

// catch converts consistency failures raised by the cfg package into a GraphError.
// Any other panic is not recovered.
func catch(phase string, err *error) {
    if v := recover(); v == nil {
        return
    } else if e, ok := v.(*cfg.ConsistencyError); ok {
        *err = GraphError { Phase: phase, Cause: e }
    } else {
        panic(v)
    }
}
