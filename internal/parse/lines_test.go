// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleRow = "acct1|1|n/a|1|1|1|N/A|(null)|feat|0|grp1|1|INVALID|INVALID|myjob|4000M|INVALID|5.0|main|PENDING|Resources|N/A|2025-01-04T00:50:00|/home/u/work|/home/u/bin/run.sh"

func TestParseLines_SkipsEmptyLines(t *testing.T) {
	raw := []byte("\n" + sampleRow + "\n\n")
	rows := ParseLines(raw, nil)
	assert.Len(t, rows, 1)
}

func TestParseLines_SkipsMalformedRowButKeepsGood(t *testing.T) {
	raw := []byte(sampleRow + "\n" + "not|enough|fields" + "\n" + sampleRow)
	rows := ParseLines(raw, nil)
	assert.Len(t, rows, 2)
}

func TestParseLines_TrimsTrailingCR(t *testing.T) {
	raw := []byte(strings.ReplaceAll(sampleRow, "\n", "") + "\r\n")
	rows := ParseLines(raw, nil)
	assert.Len(t, rows, 1)
}

func TestParseLines_Empty(t *testing.T) {
	rows := ParseLines(nil, nil)
	assert.Empty(t, rows)
}
