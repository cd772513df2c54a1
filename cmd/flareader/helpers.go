package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"flareader/internal/config"
	"flareader/internal/entrypath"
)

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// exportNamer turns library item names into unique file names inside dir.
type exportNamer struct {
	dir  string
	used map[string]int
}

func newExportNamer(dir string) *exportNamer {
	return &exportNamer{dir: dir, used: make(map[string]int)}
}

func (n *exportNamer) path(itemName, ext string) string {
	base := entrypath.Base(itemName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(base))
	if base == "" || base == "." || base == ".." {
		base = "item"
	}
	key := strings.ToLower(base)
	n.used[key]++
	if c := n.used[key]; c > 1 {
		base = fmt.Sprintf("%s-%d", base, c)
	}
	return filepath.Join(n.dir, base+"."+ext)
}

func resolveInput(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("an FLA file path is required")
	}
	return config.ExpandPath(arg)
}
