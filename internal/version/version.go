// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version houses the version information of scriptexec.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

const (
	// semanticAlphabet defines the allowed characters for the pre-release
	// portion of a semantic version string.
	semanticAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

	// semanticBuildAlphabet defines the allowed characters for the build
	// portion of a semantic version string.
	semanticBuildAlphabet = semanticAlphabet + "."
)

// These constants define the application version and follow the semantic
// versioning 2.0.0 spec (http://semver.org/).
const (
	Major uint = 0
	Minor uint = 1
	Patch uint = 0
)

var (
	// PreRelease may be overridden at build time with:
	// '-ldflags "-X github.com/coinkit/btcscript/internal/version.PreRelease=foo"'
	PreRelease = "pre"

	// BuildMetadata may be overridden at build time with:
	// '-ldflags "-X github.com/coinkit/btcscript/internal/version.BuildMetadata=foo"'
	BuildMetadata = "dev"
)

// String returns the application version as a properly formed string per the
// semantic versioning 2.0.0 spec.  Invalid characters in the pre-release and
// build metadata parts are dropped and empty parts are omitted.
func String() string {
	version := fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
	if preRelease := NormalizePreRelString(PreRelease); preRelease != "" {
		version += "-" + preRelease
	}
	if build := NormalizeBuildString(BuildMetadata); build != "" {
		version += "+" + build
	}
	return version
}

// Banner returns the line printed for --version by the named application.
func Banner(appName string) string {
	return fmt.Sprintf("%s version %s (Go version %s %s/%s)", appName,
		String(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// normalizeSemString returns str stripped of every character outside alphabet.
func normalizeSemString(str, alphabet string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(alphabet, r) {
			return r
		}
		return -1
	}, str)
}

// NormalizePreRelString strips the characters not allowed in a pre-release
// string.
func NormalizePreRelString(str string) string {
	return normalizeSemString(str, semanticAlphabet)
}

// NormalizeBuildString strips the characters not allowed in build metadata.
func NormalizeBuildString(str string) string {
	return normalizeSemString(str, semanticBuildAlphabet)
}
