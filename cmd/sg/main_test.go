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

package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	sgerrors "github.com/symbolgraph/sg/internal/errors"
)

func TestExitCodeNilIsSuccess(t *testing.T) {
	require.Equal(t, sgerrors.ExitSuccess, exitCode(nil))
}

func TestExitCodeCollapsesInputAndConfigToTwo(t *testing.T) {
	require.Equal(t, 2, exitCode(sgerrors.NewInputError("bad input", "cause", "fix")))
	require.Equal(t, 2, exitCode(sgerrors.NewConfigError("bad config", "cause", "fix", nil)))
}

func TestExitCodeCollapsesRichErrorsToOne(t *testing.T) {
	require.Equal(t, 1, exitCode(sgerrors.NewDatabaseError("db broke", "cause", "fix", nil)))
	require.Equal(t, 1, exitCode(sgerrors.NewNotFoundError("missing", "cause", "fix")))
	require.Equal(t, 1, exitCode(sgerrors.NewPermissionError("denied", "cause", "fix", nil)))
}

func TestExitCodePlainErrorIsOne(t *testing.T) {
	require.Equal(t, 1, exitCode(errors.New("plain failure")))
}
