package generic

// =============================================================================
// DEEP MERGE - Layer an override tree onto a base tree
// =============================================================================

// MaxMergeDepth bounds recursion in DeepMerge.
const MaxMergeDepth = 32

// DeepMerge returns a new tree with source layered onto target.
//
// For each key in source:
//   - an object value (map[string]any or Tree) is merged recursively into
//     the target's object at that key; when the target has no object there
//     the source object is adopted as-is (cloned)
//   - any other value, arrays included, replaces the target's value wholesale
//
// Arrays are never merged element-wise: an override carrying a one-element
// list erases the rest of the target's list. Neither input is modified.
func DeepMerge(target, source Tree) (Tree, error) {
	return mergeAt(target, source, 0)
}

func mergeAt(target, source map[string]any, depth int) (Tree, error) {
	if depth > MaxMergeDepth {
		return nil, ErrMergeTooDeep
	}
	result, err := cloneObject(target, depth)
	if err != nil {
		return nil, err
	}
	for key, sv := range source {
		sObj, ok := asObject(sv)
		if !ok {
			cloned, err := cloneValue(sv, depth+1)
			if err != nil {
				return nil, err
			}
			result[key] = cloned
			continue
		}
		tObj, ok := asObject(result[key])
		if !ok {
			cloned, err := cloneObject(sObj, depth+1)
			if err != nil {
				return nil, err
			}
			result[key] = map[string]any(cloned)
			continue
		}
		merged, err := mergeAt(tObj, sObj, depth+1)
		if err != nil {
			return nil, err
		}
		result[key] = map[string]any(merged)
	}
	return result, nil
}

// Clone deep-copies a tree.
func Clone(t Tree) (Tree, error) {
	return cloneObject(t, 0)
}

func cloneObject(m map[string]any, depth int) (Tree, error) {
	if depth > MaxMergeDepth {
		return nil, ErrMergeTooDeep
	}
	out := make(Tree, len(m))
	for k, v := range m {
		cv, err := cloneValue(v, depth+1)
		if err != nil {
			return nil, err
		}
		out[k] = cv
	}
	return out, nil
}

func cloneValue(v any, depth int) (any, error) {
	if depth > MaxMergeDepth {
		return nil, ErrMergeTooDeep
	}
	switch x := v.(type) {
	case map[string]any:
		c, err := cloneObject(x, depth)
		return map[string]any(c), err
	case Tree:
		c, err := cloneObject(x, depth)
		return map[string]any(c), err
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			ce, err := cloneValue(e, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = ce
		}
		return out, nil
	default:
		return v, nil
	}
}

func asObject(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, x != nil
	case Tree:
		return x, x != nil
	default:
		return nil, false
	}
}
