// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"github.com/zipbundle/zipbundle/pkg/fspath"
	"github.com/zipbundle/zipbundle/pkg/types"
)

// DefaultRoots returns the roots of the Lua monitoring agent layout:
// vendored lua_modules, the luvit runtime, the agent's own Lua library and
// the monitoring bundles, each grafted under its loader-visible prefix.
func DefaultRoots() []Root {
	return []Root{
		{Path: hostPath("lua_modules", "async"), Prefix: "modules/async"},
		{Path: hostPath("lua_modules", "bourbon"), Prefix: "modules/bourbon"},
		{Path: hostPath("lua_modules", "options"), Prefix: "modules/options"},
		{Path: hostPath("lua_modules", "traceroute"), Prefix: "modules/traceroute"},
		{Path: hostPath("lua_modules", "line-emitter"), Prefix: "modules/line-emitter"},
		{Path: hostPath("lua_modules", "luvit-keystone-client"), Prefix: "modules/keystone"},
		{Path: hostPath("lua_modules", "luvit-rackspace-monitoring-client"), Prefix: "modules/rackspace-monitoring"},
		{Path: hostPath("lib", "lua"), Prefix: "", Recursive: true},
		{Path: hostPath("deps", "luvit", "lib", "luvit"), Prefix: "", Recursive: true},
		{Path: hostPath("agents", "monitoring", "default"), Prefix: "modules/monitoring/default"},
		{Path: hostPath("agents", "monitoring", "collector"), Prefix: "modules/monitoring/collector"},
		{Path: hostPath("agents", "monitoring", "tests"), Prefix: "modules/monitoring/tests"},
	}
}

func hostPath(first string, elem ...string) types.FilesystemPath {
	return fspath.JoinStr(types.FilesystemPath(first), elem...)
}
