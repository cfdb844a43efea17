// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package synth

import "regexp"

// AccountExtractor recovers a usable account identifier when squeue
// reports the literal placeholder account "default". Implementations may
// inspect any field of the job's initial record; the row parameter carries
// only what the default extractor needs (work_dir) to keep the interface
// narrow.
type AccountExtractor interface {
	// ExtractAccount returns a normalized account id for a job whose raw
	// account is "default", given its work_dir. It returns "default"
	// unchanged when no better identifier can be recovered.
	ExtractAccount(workDir string) string
}

// rwthWorkDirPattern matches RWTH Aachen's cluster home directory layout,
// capturing the username segment as a stand-in account identifier.
var rwthWorkDirPattern = regexp.MustCompile(`^/rwthfs/rz/cluster/home/([^/]+)/`)

// RWTHAccountExtractor is the site-specific fallback rule this pipeline
// was originally built around: recover the submitting user's login name
// from an RWTH Aachen cluster home directory path.
type RWTHAccountExtractor struct{}

func (RWTHAccountExtractor) ExtractAccount(workDir string) string {
	m := rwthWorkDirPattern.FindStringSubmatch(workDir)
	if len(m) == 2 && m[1] != "" {
		return m[1]
	}
	return "default"
}

// normalizeAccount applies extractor only when rawAccount is the
// placeholder value "default"; any other value passes through unchanged.
func normalizeAccount(rawAccount, workDir string, extractor AccountExtractor) string {
	if rawAccount != "default" {
		return rawAccount
	}
	return extractor.ExtractAccount(workDir)
}
