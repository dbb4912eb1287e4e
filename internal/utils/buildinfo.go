// Package utils provides helper functions shared across the dirtree tool.
package utils

import (
	"runtime/debug"
)

const (
	// developmentVersionLabel stands in when the binary carries no release
	// or VCS metadata.
	developmentVersionLabel = "dev"
	// modulePlaceholderVersion is what the toolchain records for builds that
	// did not come from a tagged module version.
	modulePlaceholderVersion = "(devel)"
	// revisionDisplayLength bounds the VCS revision shown to users.
	revisionDisplayLength = 12

	vcsRevisionSettingKey = "vcs.revision"
	vcsModifiedSettingKey = "vcs.modified"
	dirtyRevisionSuffix   = "-dirty"
)

// GetApplicationVersion reports the version recorded in the binary's build
// metadata: the stamped module version for release builds, otherwise the VCS
// revision the toolchain embedded at build time.
func GetApplicationVersion() string {
	buildInformation, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return developmentVersionLabel
	}
	if moduleVersion := buildInformation.Main.Version; moduleVersion != "" && moduleVersion != modulePlaceholderVersion {
		return moduleVersion
	}
	return revisionFromSettings(buildInformation.Settings)
}

// revisionFromSettings extracts a short VCS revision, marking locally modified
// builds, and falls back to the development label when no revision was
// stamped.
func revisionFromSettings(buildSettings []debug.BuildSetting) string {
	revision := ""
	locallyModified := false
	for _, buildSetting := range buildSettings {
		switch buildSetting.Key {
		case vcsRevisionSettingKey:
			revision = buildSetting.Value
		case vcsModifiedSettingKey:
			locallyModified = buildSetting.Value == "true"
		}
	}
	if revision == "" {
		return developmentVersionLabel
	}
	if len(revision) > revisionDisplayLength {
		revision = revision[:revisionDisplayLength]
	}
	if locallyModified {
		revision += dirtyRevisionSuffix
	}
	return revision
}
