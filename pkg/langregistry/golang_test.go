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

package langregistry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symbolgraph/sg/pkg/model"
)

func TestGoBehaviorCanonicalizesUnaliasedImport(t *testing.T) {
	scope := goBehavior{}.BuildResolutionContext([]model.Import{{Path: "github.com/foo/bar"}}, "pkg/main")
	require.Equal(t, "github.com/foo/bar", scope.CanonicalImports["bar"])
}

func TestGoBehaviorHonorsExplicitAlias(t *testing.T) {
	scope := goBehavior{}.BuildResolutionContext([]model.Import{{Path: "github.com/foo/bar", Alias: "baz"}}, "pkg/main")
	require.Equal(t, "github.com/foo/bar", scope.CanonicalImports["baz"])
	require.NotContains(t, scope.CanonicalImports, "bar")
}

func TestGoBehaviorSkipsBlankImport(t *testing.T) {
	scope := goBehavior{}.BuildResolutionContext([]model.Import{{Path: "github.com/foo/bar", Alias: "_"}}, "pkg/main")
	require.Empty(t, scope.CanonicalImports)
}

func TestGoBehaviorCollectsWildcardImports(t *testing.T) {
	scope := goBehavior{}.BuildResolutionContext([]model.Import{{Path: "github.com/foo/bar", IsWildcard: true}}, "pkg/main")
	require.Equal(t, []string{"github.com/foo/bar"}, scope.WildcardImports)
	require.Empty(t, scope.CanonicalImports)
}

func TestGoParserExtractsFunctionsAndCalls(t *testing.T) {
	def := Go()
	parser, err := def.CreateParser(Settings{})
	require.NoError(t, err)

	src := []byte("package main\n\n// Entry is the program's entry point.\nfunc Entry() {\n\tHelper()\n}\n\nfunc Helper() {}\n")
	parsed, err := parser.Parse(context.Background(), "main.go", src)
	require.NoError(t, err)

	names := make([]string, 0, len(parsed.Symbols))
	for _, s := range parsed.Symbols {
		names = append(names, s.Name)
	}
	require.ElementsMatch(t, []string{"Entry", "Helper"}, names)
	require.NotEmpty(t, parsed.Unresolved)
}
