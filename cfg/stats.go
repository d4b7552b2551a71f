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

// Stats records what the builder, the layout engine and the editor did to a Graph.
type Stats struct {
    NodesCreated     int
    NodesRemoved     int
    NodesSpliced     int
    NodesCloned      int
    NodesMerged      int
    ImpossibleEdges  int
    JumpsThreaded    int
    BranchesInserted int
    BranchesElided   int
}
