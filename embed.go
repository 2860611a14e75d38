// Package autoversion embeds the build-orchestrator integration resources
// shipped with the binaries.
package autoversion

import (
	"embed"
)

// Resources holds integration shims for build orchestrators, such as the
// PlatformIO extra script that bridges BUILD_FLAGS to the autoversion binary.
//
//go:embed resources
var Resources embed.FS

// BridgeScriptPath is the embedded path of the PlatformIO extra script.
const BridgeScriptPath = "resources/auto_firmware_version.py"
