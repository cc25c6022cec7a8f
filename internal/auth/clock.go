// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth

import "time"

// Clock supplies the current time. Injected so expiry behavior is testable
// without waiting real time.
type Clock func() time.Time
