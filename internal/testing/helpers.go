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
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/symbolgraph/sg/internal/config"
	"github.com/symbolgraph/sg/pkg/engine"
)

// SetupTestEngine opens an Engine rooted at a fresh temp directory, with
// semantic search on and a small embedding thread count so tests stay
// fast. The engine is closed automatically when t finishes.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    eng := testing.SetupTestEngine(t)
//	    // eng is ready against an empty index under t.TempDir()
//	}
func SetupTestEngine(t *testing.T) *engine.Engine {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default(dir, filepath.Join(dir, ".sg"))
	cfg.Semantic.EmbeddingThreads = 1

	eng, err := engine.Open(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("failed to open test engine: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })

	return eng
}

// WriteTestFile writes content under dir at relPath, creating parent
// directories as needed, and returns the absolute path.
func WriteTestFile(t *testing.T, dir, relPath, content string) string {
	t.Helper()

	path := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create test dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file %s: %v", path, err)
	}
	return path
}
