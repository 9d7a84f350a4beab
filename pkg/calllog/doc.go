// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

// Package calllog records the most recent API exchange in a readable form
// for troubleshooting. Passwords in credential headers are replaced with
// [FILTERED] and uploaded documents or binary downloads with [BINARY BLOB].
// Exchanges are also written to an hclog.Logger at debug and trace level.
package calllog
