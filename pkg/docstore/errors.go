// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package docstore

import "errors"

// ErrNoActiveBatch is returned when a write is attempted without a call
// to StartBatch first, or when CommitBatch is called with none open.
var ErrNoActiveBatch = errors.New("docstore: no active batch")

// ErrBatchAlreadyOpen is returned by StartBatch when a batch is already
// open; only one writer may be in flight at a time.
var ErrBatchAlreadyOpen = errors.New("docstore: batch already open")

// ErrNotFound is returned by lookups that find no matching document.
var ErrNotFound = errors.New("docstore: not found")
