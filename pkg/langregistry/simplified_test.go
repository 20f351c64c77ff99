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

func TestSimplifiedParserExtractsKeywordDefinitions(t *testing.T) {
	def := Simplified("python", []string{".py"}, []string{"def"})
	parser, err := def.CreateParser(Settings{})
	require.NoError(t, err)

	src := []byte("# greet someone\ndef Greet(name):\n    pass\n")
	parsed, err := parser.Parse(context.Background(), "greet.py", src)
	require.NoError(t, err)
	require.Len(t, parsed.Symbols, 1)
	require.Equal(t, "Greet", parsed.Symbols[0].Name)
	require.Equal(t, model.VisibilityPublic, parsed.Symbols[0].Visibility)
	require.Equal(t, "greet someone", parsed.Symbols[0].DocComment)
	require.Empty(t, parsed.Unresolved)
}

func TestSimplifiedParserLowercaseNameIsPrivate(t *testing.T) {
	def := Simplified("python", []string{".py"}, []string{"def"})
	parser, err := def.CreateParser(Settings{})
	require.NoError(t, err)

	parsed, err := parser.Parse(context.Background(), "x.py", []byte("def helper():\n    pass\n"))
	require.NoError(t, err)
	require.Len(t, parsed.Symbols, 1)
	require.Equal(t, model.VisibilityPrivate, parsed.Symbols[0].Visibility)
}

func TestSimplifiedBehaviorCanonicalImportsAreLiteral(t *testing.T) {
	behavior := simplifiedBehavior{}
	scope := behavior.BuildResolutionContext([]model.Import{{Path: "pkg/util"}}, "pkg/main")
	require.Equal(t, "pkg/util", scope.CanonicalImports["pkg/util"])
	require.Empty(t, scope.WildcardImports)
}
