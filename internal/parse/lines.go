// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package parse

import (
	"strings"

	"github.com/jontk/squeue-ocel/api"
	"github.com/jontk/squeue-ocel/pkg/logging"
)

// ParseLines parses one squeue snapshot's raw stdout into JobRecords: empty
// lines are skipped, and a row that fails to parse is logged and skipped
// rather than aborting the whole batch — one malformed line from a
// scheduler in a weird mood should never discard an otherwise-good round.
func ParseLines(raw []byte, logger logging.Logger) []api.JobRecord {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	lines := strings.Split(string(raw), "\n")
	rows := make([]api.JobRecord, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		row, err := ParseRow(line)
		if err != nil {
			logger.Warn("skipping malformed squeue row", "error", err.Error())
			continue
		}
		rows = append(rows, row)
	}

	return rows
}
