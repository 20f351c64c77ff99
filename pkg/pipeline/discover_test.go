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

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchesAnyDefaultIgnores(t *testing.T) {
	require.True(t, matchesAny(defaultIgnores, "node_modules/left-pad/index.js"))
	require.True(t, matchesAny(defaultIgnores, ".git/HEAD"))
	require.True(t, matchesAny(defaultIgnores, "vendor/github.com/foo/bar.go"))
	require.False(t, matchesAny(defaultIgnores, "pkg/engine/engine.go"))
}

func TestMatchesAnyCustomPattern(t *testing.T) {
	patterns := []string{"**/*.generated.go"}
	require.True(t, matchesAny(patterns, "pkg/api/types.generated.go"))
	require.False(t, matchesAny(patterns, "pkg/api/types.go"))
}

func TestContentHashDeterministic(t *testing.T) {
	a := contentHash([]byte("package main"))
	b := contentHash([]byte("package main"))
	c := contentHash([]byte("package other"))

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}
