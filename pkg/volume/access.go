package volume

import "path"

// EffectiveAccess computes the read/write/locked flags for a path by
// walking from the entry up to the volume root.
//
// Each flag resolves independently to the nearest override that sets it;
// an override with a nil flag is transparent for that flag. When the walk
// reaches the root without a match the volume default applies. On top of
// the walk:
//
//   - a read-only volume forces write off (read is unaffected)
//   - a locked volume forces locked on
//
// The walk never continues past the volume root, whatever the override
// data looks like.
func EffectiveAccess(v *Volume, rel string) Access {
	acc := Access{
		Read:   resolveFlag(v, rel, func(o *AccessOverride) *bool { return o.Read }, v.DefaultAccess.Read),
		Write:  resolveFlag(v, rel, func(o *AccessOverride) *bool { return o.Write }, v.DefaultAccess.Write),
		Locked: resolveFlag(v, rel, func(o *AccessOverride) *bool { return o.Locked }, v.DefaultAccess.Locked),
	}

	if v.ReadOnly {
		acc.Write = false
	}
	if v.Locked {
		acc.Locked = true
	}
	return acc
}

// resolveFlag walks rel and its ancestors looking for the nearest
// override carrying the flag.
func resolveFlag(v *Volume, rel string, flag func(*AccessOverride) *bool, def bool) bool {
	for cur := rel; cur != ""; cur = parentPath(cur) {
		if o := matchOverride(v, cur); o != nil {
			if val := flag(o); val != nil {
				return *val
			}
		}
	}
	// Root-level override, keyed as "" or "/".
	if o := matchOverride(v, ""); o != nil {
		if val := flag(o); val != nil {
			return *val
		}
	}
	return def
}

// matchOverride finds an override for the exact path or, failing that,
// the bare entry name. Exact paths win over name matches at the same
// level.
func matchOverride(v *Volume, rel string) *AccessOverride {
	for i := range v.Overrides {
		o := &v.Overrides[i]
		key := normalizeKey(o.Path)
		if key == rel {
			return o
		}
	}
	if rel != "" {
		name := path.Base(rel)
		for i := range v.Overrides {
			o := &v.Overrides[i]
			if normalizeKey(o.Path) == name {
				return o
			}
		}
	}
	return nil
}

func normalizeKey(key string) string {
	if key == "/" {
		return ""
	}
	if len(key) > 0 && key[0] == '/' {
		return key[1:]
	}
	return key
}

func parentPath(p string) string {
	parent := path.Dir(p)
	if parent == "." || parent == "/" {
		return ""
	}
	return parent
}
