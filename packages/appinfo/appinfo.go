// Package appinfo reports the version of the application embedding urlmock.
package appinfo

import "runtime/debug"

// Provider reports the application version and build.
type Provider interface {
	Version() string
	Build() string
}

// Static is a Provider with fixed values, usually set from ldflags.
type Static struct {
	AppVersion string
	AppBuild   string
}

func (s Static) Version() string { return s.AppVersion }
func (s Static) Build() string   { return s.AppBuild }

// VersionString formats p as "<version> (<build>)". It returns "" when p is
// nil or either part is unknown.
func VersionString(p Provider) string {
	if p == nil {
		return ""
	}
	version, build := p.Version(), p.Build()
	if version == "" || build == "" {
		return ""
	}
	return version + " (" + build + ")"
}

// FromBuildInfo reads the main module version and VCS revision embedded by
// the Go toolchain. Missing values are left empty.
func FromBuildInfo() Static {
	var s Static
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return s
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		s.AppVersion = info.Main.Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			s.AppBuild = setting.Value[:7]
		}
	}
	return s
}
