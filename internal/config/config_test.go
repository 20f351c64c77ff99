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

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := Default("/workspace", "/workspace/.sg")
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsEmptyIndexPath(t *testing.T) {
	cfg := Default("/workspace", "")
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyWorkspaceRoot(t *testing.T) {
	cfg := Default("", "/workspace/.sg")
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveThreadCounts(t *testing.T) {
	cfg := Default("/workspace", "/workspace/.sg")
	cfg.Pipeline.ReadThreads = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroDimensionWhenSemanticEnabled(t *testing.T) {
	cfg := Default("/workspace", "/workspace/.sg")
	cfg.Semantic.Dimension = 0
	require.Error(t, cfg.Validate())
}

func TestValidateAllowsZeroDimensionWhenSemanticDisabled(t *testing.T) {
	cfg := Default("/workspace", "/workspace/.sg")
	cfg.Semantic.Enabled = false
	cfg.Semantic.Dimension = 0
	require.NoError(t, cfg.Validate())
}
