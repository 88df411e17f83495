package logtail

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Entry is one parsed logrus text-formatter line.
type Entry struct {
	Time      time.Time
	Level     string
	Message   string
	Component string
	Fields    map[string]string // everything else, in no particular order
	Keys      []string          // extra field keys in line order
}

// ParseLine parses a logfmt line as written by logrus' TextFormatter with
// colors disabled. It reports false for lines that carry no level or msg.
func ParseLine(line string) (Entry, bool) {
	pairs := splitLogfmt(line)
	if len(pairs) == 0 {
		return Entry{}, false
	}
	e := Entry{Fields: make(map[string]string)}
	for _, kv := range pairs {
		switch kv[0] {
		case "time":
			if t, err := time.Parse(time.RFC3339, kv[1]); err == nil {
				e.Time = t
			}
		case "level":
			e.Level = kv[1]
		case "msg":
			e.Message = kv[1]
		case "component":
			e.Component = kv[1]
		default:
			e.Fields[kv[0]] = kv[1]
			e.Keys = append(e.Keys, kv[0])
		}
	}
	if e.Level == "" && e.Message == "" {
		return Entry{}, false
	}
	return e, true
}

// splitLogfmt splits key=value pairs, honoring quoted values.
func splitLogfmt(line string) [][2]string {
	var out [][2]string
	i := 0
	for i < len(line) {
		for i < len(line) && unicode.IsSpace(rune(line[i])) {
			i++
		}
		start := i
		for i < len(line) && line[i] != '=' && !unicode.IsSpace(rune(line[i])) {
			i++
		}
		if i >= len(line) || line[i] != '=' {
			if start == i {
				break
			}
			// Bare word; not logfmt.
			return nil
		}
		key := line[start:i]
		i++ // skip '='

		var value string
		if i < len(line) && line[i] == '"' {
			end := i + 1
			for end < len(line) {
				if line[end] == '\\' {
					end += 2
					continue
				}
				if line[end] == '"' {
					break
				}
				end++
			}
			if end >= len(line) {
				end = len(line) - 1
			}
			quoted := line[i : end+1]
			if unq, err := strconv.Unquote(quoted); err == nil {
				value = unq
			} else {
				value = strings.Trim(quoted, `"`)
			}
			i = end + 1
		} else {
			vs := i
			for i < len(line) && !unicode.IsSpace(rune(line[i])) {
				i++
			}
			value = line[vs:i]
		}
		out = append(out, [2]string{key, value})
	}
	return out
}
