// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package parse implements C1 (squeue row parsing) and C2 (SLURM duration
// parsing): turning one pipe-delimited squeue line into an api.JobRecord.
package parse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses a SLURM-formatted duration as reported by squeue's
// %l (time_limit), %L (time_left), and %M (time) fields. SLURM accepts and
// emits five shapes, distinguished by the presence of a "-" day separator
// and the count of ":"-separated components:
//
//	D-H:M:S   days-hours:minutes:seconds
//	D-H       days-hours
//	H:M:S     hours:minutes:seconds
//	M:S       minutes:seconds
//	M         minutes
//
// Any other shape is a parse error.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse: empty duration")
	}

	var days int64
	rest := s
	if dash := strings.IndexByte(s, '-'); dash >= 0 {
		d, err := strconv.ParseInt(s[:dash], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse: invalid day component in duration %q: %w", s, err)
		}
		days = d
		rest = s[dash+1:]
	}

	parts := strings.Split(rest, ":")
	var hours, mins, secs int64
	var err error

	switch len(parts) {
	case 3: // H:M:S
		hours, err = parseComponent(parts[0], s)
		if err != nil {
			return 0, err
		}
		mins, err = parseComponent(parts[1], s)
		if err != nil {
			return 0, err
		}
		secs, err = parseComponent(parts[2], s)
		if err != nil {
			return 0, err
		}
	case 2: // M:S
		if strings.ContainsRune(s, '-') {
			return 0, fmt.Errorf("parse: day prefix with M:S shape in duration %q", s)
		}
		mins, err = parseComponent(parts[0], s)
		if err != nil {
			return 0, err
		}
		secs, err = parseComponent(parts[1], s)
		if err != nil {
			return 0, err
		}
	case 1: // either D-H or bare minutes
		v, perr := parseComponent(parts[0], s)
		if perr != nil {
			return 0, perr
		}
		if strings.ContainsRune(s, '-') {
			hours = v
		} else {
			mins = v
		}
	default:
		return 0, fmt.Errorf("parse: unrecognized duration shape %q", s)
	}

	total := time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(mins)*time.Minute +
		time.Duration(secs)*time.Second
	return total, nil
}

func parseComponent(s, full string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse: invalid duration component %q in %q: %w", s, full, err)
	}
	return v, nil
}
