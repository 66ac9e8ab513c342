// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package spike

import (
	"strings"

	as "github.com/aerospike/aerospike-client-go/v7"
)

// getRecord fetches the data bin for logical, returning (nil, 0, false,
// nil) on a clean miss. The generation is returned so callers needing
// compare-and-swap semantics (ranked lists, the default activity list)
// can guard their follow-up write.
func (b *Backend) getRecord(logical string) ([]byte, uint32, bool, error) {
	k, err := b.key(logical)
	if err != nil {
		return nil, 0, false, wrapStorage("build key", err)
	}

	rec, err := b.client.Get(nil, k, binData)
	if err != nil {
		if isNotFound(err) {
			return nil, 0, false, nil
		}
		return nil, 0, false, wrapStorage("get "+logical, err)
	}
	if rec == nil {
		return nil, 0, false, nil
	}

	data, _ := rec.Bins[binData].([]byte)
	return data, rec.Generation, true, nil
}

// putRecord writes data to logical under a never-expiring policy.
func (b *Backend) putRecord(logical string, data []byte) error {
	k, err := b.key(logical)
	if err != nil {
		return wrapStorage("build key", err)
	}
	bin := as.NewBin(binData, data)
	if err := b.client.PutBins(b.writePolicy(), k, bin); err != nil {
		return wrapStorage("put "+logical, err)
	}
	return nil
}

// putRecordTTL writes data to logical with a finite lifetime.
func (b *Backend) putRecordTTL(logical string, data []byte, ttlSeconds uint32) error {
	k, err := b.key(logical)
	if err != nil {
		return wrapStorage("build key", err)
	}
	bin := as.NewBin(binData, data)
	if err := b.client.PutBins(b.ttlWritePolicy(ttlSeconds), k, bin); err != nil {
		return wrapStorage("put "+logical, err)
	}
	return nil
}

// putRecordGen writes data to logical, requiring the record's current
// generation to equal gen. A gen of 0 applies no generation check, so
// the write creates or overwrites the record unconditionally.
func (b *Backend) putRecordGen(logical string, data []byte, gen uint32) error {
	k, err := b.key(logical)
	if err != nil {
		return wrapStorage("build key", err)
	}
	bin := as.NewBin(binData, data)
	if err := b.client.PutBins(b.genWritePolicy(gen), k, bin); err != nil {
		if isGenerationError(err) {
			return err
		}
		return wrapStorage("put "+logical, err)
	}
	return nil
}

// deleteRecord removes logical. A missing record is not an error.
func (b *Backend) deleteRecord(logical string) error {
	k, err := b.key(logical)
	if err != nil {
		return wrapStorage("build key", err)
	}
	if _, err := b.client.Delete(nil, k); err != nil {
		return wrapStorage("delete "+logical, err)
	}
	return nil
}

// deleteRecordGen removes logical, requiring its current generation to
// equal gen (a gen of 0 applies no generation check).
func (b *Backend) deleteRecordGen(logical string, gen uint32) error {
	k, err := b.key(logical)
	if err != nil {
		return wrapStorage("build key", err)
	}
	wp := b.genWritePolicy(gen)
	if _, err := b.client.Delete(wp, k); err != nil {
		if isGenerationError(err) {
			return err
		}
		if isNotFound(err) {
			return nil
		}
		return wrapStorage("delete "+logical, err)
	}
	return nil
}

// scanKeysWithPrefix scans this backend's set and returns every logical
// key starting with prefix. Aerospike has no native prefix-range scan
// (keys are addressed by digest, not sorted bytes), so this walks the
// whole set and filters client-side on the logical key the cluster
// retained via WritePolicy.SendKey — acceptable here because it is only
// used by the administrative ListFlush path, never the request path.
func (b *Backend) scanKeysWithPrefix(prefix string) ([]string, error) {
	sp := as.NewScanPolicy()
	rs, err := b.client.ScanAll(sp, b.namespace, b.set)
	if err != nil {
		return nil, wrapStorage("scan "+b.set, err)
	}
	defer rs.Close()

	var keys []string
	for res := range rs.Results() {
		if res.Err != nil {
			return nil, wrapStorage("scan result", res.Err)
		}
		if res.Record == nil || res.Record.Key == nil || res.Record.Key.Value() == nil {
			continue
		}
		logical := res.Record.Key.Value().String()
		if strings.HasPrefix(logical, prefix) {
			keys = append(keys, logical)
		}
	}
	return keys, nil
}
