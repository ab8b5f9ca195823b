package snapshot

import (
	"qgate/internal/inventory"
)

// ParseFileIndex accepts the index shapes produced by the indexers we
// integrate with: {"files": [...]}, {"indexedFiles": [...]} or a bare array.
// Entries may be plain path strings or objects.
func ParseFileIndex(doc any) []inventory.FileRecord {
	list, ok := asList(doc)
	if !ok {
		m, isMap := asMap(doc)
		if !isMap {
			return nil
		}
		v, found := field(m, "files", "indexedFiles")
		if !found {
			return nil
		}
		if list, ok = asList(v); !ok {
			return nil
		}
	}

	records := make([]inventory.FileRecord, 0, len(list))
	for _, item := range list {
		if p, ok := asString(item); ok {
			if p != "" {
				records = append(records, inventory.FileRecord{Path: inventory.NormalizePath(p)})
			}
			continue
		}
		if rec, ok := parseFileRecord(item); ok {
			records = append(records, rec)
		}
	}
	return records
}

func parseFileRecord(item any) (inventory.FileRecord, bool) {
	m, ok := asMap(item)
	if !ok {
		return inventory.FileRecord{}, false
	}

	var rec inventory.FileRecord
	if v, ok := field(m, "path", "filePath", "relativePath"); ok {
		rec.Path, _ = asString(v)
	}
	if rec.Path == "" {
		return rec, false
	}
	rec.Path = inventory.NormalizePath(rec.Path)

	if v, ok := field(m, "ext", "extension"); ok {
		rec.Ext, _ = asString(v)
	}
	if v, ok := field(m, "language"); ok {
		rec.Language, _ = asString(v)
	}
	if v, ok := field(m, "sizeBytes", "size"); ok {
		if size, ok := asFloat(v); ok && size > 0 {
			rec.SizeBytes = int64(size)
		}
	}
	if v, ok := field(m, "lastModifiedMs", "mtimeMs", "lastModified"); ok {
		if t, ok := asTime(v); ok {
			rec.LastModified = t
		}
	}
	return rec, true
}
