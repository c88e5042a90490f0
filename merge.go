package getconfig

// Merge combines source into target and returns target.
//
// For each key of source: when both sides hold a mapping the two are merged
// recursively; otherwise the source value replaces the target value. Sequences
// are replaced, never concatenated. Existing keys keep their position and new
// keys are appended in source order. source is not modified; values taken from
// it are deep-copied.
func Merge(target, source *Mapping) *Mapping {
	if target == nil {
		target = NewMapping()
	}
	for _, key := range source.Keys() {
		src, _ := source.Get(key)
		if srcMap, ok := src.(*Mapping); ok {
			if cur, exists := target.Get(key); exists {
				if curMap, ok := cur.(*Mapping); ok {
					Merge(curMap, srcMap)
					continue
				}
			}
		}
		target.Set(key, Clone(src))
	}
	return target
}
