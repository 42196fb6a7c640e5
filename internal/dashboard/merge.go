package dashboard

// deepMerge merges src over dst. When both sides hold mapping-shaped
// values the merge recurses field by field with src winning on conflicts
// and dst filling gaps; any other shape is replaced outright by src.
func deepMerge(dst, src map[string]interface{}) map[string]interface{} {
	for key, value := range src {
		dstMap, dstOK := dst[key].(map[string]interface{})
		srcMap, srcOK := value.(map[string]interface{})
		if dstOK && srcOK {
			dst[key] = deepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = value
	}
	return dst
}
