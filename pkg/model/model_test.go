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

package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileIdValid(t *testing.T) {
	require.False(t, FileId(0).Valid())
	require.True(t, FileId(1).Valid())
}

func TestSymbolIdValid(t *testing.T) {
	require.False(t, SymbolId(0).Valid())
	require.True(t, SymbolId(42).Valid())
}

func TestFileIdString(t *testing.T) {
	require.Equal(t, "file#7", FileId(7).String())
}

func TestSymbolIdString(t *testing.T) {
	require.Equal(t, "sym#7", SymbolId(7).String())
}

func TestSymbolZeroValue(t *testing.T) {
	var s Symbol
	require.False(t, s.ID.Valid())
	require.False(t, s.FileID.Valid())
	require.Empty(t, s.Name)
}
