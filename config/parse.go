package config

import "os"

// parseBool, parseString, and parseUint64 read a typed value out of a YAML
// document decoded to map[string]interface{}, falling back to dflt when the
// key is absent. dflt of nil means "no default; ok=false if missing."

func parseBool(m map[string]interface{}, key string, dflt interface{}) (b, ok bool) {
	v, present := m[key]
	if present {
		b, ok = v.(bool)
		return
	}
	if dflt == nil {
		return false, false
	}
	b, ok = dflt.(bool)
	return
}

func parseString(m map[string]interface{}, key string, dflt interface{}) (s string, ok bool) {
	v, present := m[key]
	if present {
		s, ok = v.(string)
		if ok {
			s = os.ExpandEnv(s)
		}
		return
	}
	if dflt == nil {
		return "", false
	}
	s, ok = dflt.(string)
	if ok {
		s = os.ExpandEnv(s)
	}
	return
}

func parseUint64(m map[string]interface{}, key string, dflt interface{}) (u uint64, ok bool) {
	v, present := m[key]
	if present {
		switch n := v.(type) {
		case int:
			return uint64(n), true
		case uint64:
			return n, true
		case float64:
			u = uint64(n)
			return u, float64(u) == n
		default:
			return 0, false
		}
	}
	if dflt == nil {
		return 0, false
	}
	u, ok = dflt.(uint64)
	return
}
