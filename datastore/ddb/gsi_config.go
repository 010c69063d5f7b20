/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"regexp"
	"sort"
	"sync"
)

// GSIConfig ties a secondary index to the index map entries holding its
// key templates. The entry names double as the index key attribute names.
type GSIConfig struct {
	IndexName        string
	PartitionKeyName string
	SortKeyName      string
}

var (
	gsiMu      sync.RWMutex
	gsiConfigs = make(map[string]GSIConfig)

	numberedIndex = regexp.MustCompile(`^GSI(\d+)$`)
	numberedPK    = regexp.MustCompile(`^PK(\d+)$`)
)

// RegisterGSIConfig declares an index whose key entries do not follow the
// GSI<n> / PK<n> / SK<n> convention.
func RegisterGSIConfig(cfg GSIConfig) {
	gsiMu.Lock()
	defer gsiMu.Unlock()
	gsiConfigs[cfg.IndexName] = cfg
}

// UnregisterGSIConfig removes a declared index.
func UnregisterGSIConfig(indexName string) {
	gsiMu.Lock()
	defer gsiMu.Unlock()
	delete(gsiConfigs, indexName)
}

// GetGSIConfig returns the declared config of an index, falling back to the
// numbered convention: GSI2 is keyed by PK2 and SK2.
func GetGSIConfig(indexName string) (GSIConfig, bool) {
	gsiMu.RLock()
	cfg, ok := gsiConfigs[indexName]
	gsiMu.RUnlock()
	if ok {
		return cfg, true
	}

	m := numberedIndex.FindStringSubmatch(indexName)
	if m == nil {
		return GSIConfig{}, false
	}
	return GSIConfig{IndexName: indexName, PartitionKeyName: "PK" + m[1], SortKeyName: "SK" + m[1]}, true
}

// IndexesFor lists, sorted, the secondary indexes an index map writes a
// partition key for.
func IndexesFor(indexMap map[string]string) []string {
	seen := make(map[string]struct{})
	for entry := range indexMap {
		if m := numberedPK.FindStringSubmatch(entry); m != nil {
			seen["GSI"+m[1]] = struct{}{}
		}
	}

	gsiMu.RLock()
	for name, cfg := range gsiConfigs {
		if _, ok := indexMap[cfg.PartitionKeyName]; ok {
			seen[name] = struct{}{}
		}
	}
	gsiMu.RUnlock()

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
