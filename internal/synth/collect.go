// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package synth

import "github.com/jontk/squeue-ocel/api"

// accumulator holds one shard's worth of synthesis output: the Job
// objects/events it produced and the secondary object ids it discovered
// along the way. Each shard is owned by exactly one goroutine for its
// entire lifetime, so no locking is needed inside a shard — only the
// final merge touches more than one accumulator at a time.
type accumulator struct {
	results    []JobResult
	accounts   map[string]struct{}
	groups     map[string]struct{}
	hosts      map[string]struct{}
	partitions map[string]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		accounts:   make(map[string]struct{}),
		groups:     make(map[string]struct{}),
		hosts:      make(map[string]struct{}),
		partitions: make(map[string]struct{}),
	}
}

func (a *accumulator) add(r JobResult) {
	a.results = append(a.results, r)
	a.accounts[r.Account] = struct{}{}
	for _, g := range r.Groups {
		a.groups[g] = struct{}{}
	}
	for _, h := range r.Hosts {
		a.hosts[h] = struct{}{}
	}
	for _, p := range r.Partitions {
		a.partitions[p] = struct{}{}
	}
}

// Collected is the union of every shard's accumulator: the full set of Job
// objects/events plus every distinct account, group, host, and partition
// id discovered across all jobs, ready for C8 to materialize into OCEL
// objects.
type Collected struct {
	Jobs       []JobResult
	Accounts   []string
	Groups     []string
	Hosts      []string
	Partitions []string
}

func mergeAccumulators(shards []*accumulator) Collected {
	accounts := make(map[string]struct{})
	groups := make(map[string]struct{})
	hosts := make(map[string]struct{})
	partitions := make(map[string]struct{})

	var results []JobResult
	for _, s := range shards {
		results = append(results, s.results...)
		for k := range s.accounts {
			accounts[k] = struct{}{}
		}
		for k := range s.groups {
			groups[k] = struct{}{}
		}
		for k := range s.hosts {
			hosts[k] = struct{}{}
		}
		for k := range s.partitions {
			partitions[k] = struct{}{}
		}
	}

	return Collected{
		Jobs:       results,
		Accounts:   setKeys(accounts),
		Groups:     setKeys(groups),
		Hosts:      setKeys(hosts),
		Partitions: setKeys(partitions),
	}
}

func setKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// shardJobIDs splits ids into at most n roughly-equal, contiguous shards so
// each shard's goroutine can accumulate without touching another shard's
// state.
func shardJobIDs(ids []string, n int) [][]string {
	if n <= 0 {
		n = 1
	}
	if n > len(ids) {
		n = len(ids)
	}
	if n == 0 {
		return nil
	}

	shards := make([][]string, n)
	base := len(ids) / n
	rem := len(ids) % n

	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		shards[i] = ids[start : start+size]
		start += size
	}
	return shards
}
