// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks
