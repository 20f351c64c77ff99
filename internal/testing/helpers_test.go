// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupTestEngine(t *testing.T) {
	eng := SetupTestEngine(t)
	require.NotNil(t, eng)

	symbols, err := eng.FindSymbol("nothing")
	require.NoError(t, err)
	require.Empty(t, symbols)
}

func TestSetupTestEngineIndexesWrittenFiles(t *testing.T) {
	dir := t.TempDir()
	WriteTestFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")

	eng := SetupTestEngine(t)
	err := eng.IndexDirectory(context.Background(), dir, true)
	require.NoError(t, err)

	symbols, err := eng.FindSymbol("main")
	require.NoError(t, err)
	require.NotEmpty(t, symbols)
}
