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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryByExtensionAndName(t *testing.T) {
	r := New()
	r.Register(Go())

	require.Equal(t, "go", r.ByExtension(".go").Name())
	require.Equal(t, "go", r.ByName("go").Name())
	require.Nil(t, r.ByExtension(".rs"))
	require.Nil(t, r.ByName("rust"))
}

func TestRegistryLaterRegistrationOverridesExtension(t *testing.T) {
	r := New()
	r.Register(Simplified("py-v1", []string{".py"}, []string{"def"}))
	r.Register(Simplified("py-v2", []string{".py"}, []string{"def", "class"}))

	require.Equal(t, "py-v2", r.ByExtension(".py").Name())
}

func TestRegistryIterAllVisitsEveryDef(t *testing.T) {
	r := New()
	r.Register(Go())
	r.Register(Simplified("python", []string{".py"}, []string{"def"}))

	seen := make(map[string]bool)
	r.IterAll(func(def LanguageDef) { seen[def.Name()] = true })

	require.True(t, seen["go"])
	require.True(t, seen["python"])
	require.Len(t, seen, 2)
}

func TestErrUnsupportedExtensionMessage(t *testing.T) {
	err := &ErrUnsupportedExtension{Extension: ".zig"}
	require.Contains(t, err.Error(), ".zig")
}
