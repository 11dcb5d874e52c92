// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build tools

package devtools

import (
	_ "honnef.co/go/tools/cmd/staticcheck"
)
