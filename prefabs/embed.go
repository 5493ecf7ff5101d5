// Package prefabs loads actor and stage descriptions and their scripts.
// Files under prefabs/ on disk win over the embedded copies.
package prefabs

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

//go:embed *.yaml
var PrefabsFS embed.FS

func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return PrefabsFS.ReadFile(clean)
}

// Dir is the on-disk directory that overrides embedded prefabs.
func Dir() string {
	return "prefabs"
}

// SameFile reports whether two prefab or script references name the same
// file.
func SameFile(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return cleanPrefabPath(a) == cleanPrefabPath(b)
}

// ScriptPath returns the prefabs-relative path of a script name.
func ScriptPath(name string) string {
	return cleanScriptPath(name)
}

func cleanPrefabPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(p)
	if idx := strings.LastIndex(s, "/prefabs/"); idx >= 0 {
		s = s[idx+len("/prefabs/"):]
	}
	s = strings.TrimPrefix(s, "./")
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		return after
	}
	return s
}

func cleanScriptPath(p string) string {
	if p == "" {
		return ""
	}

	s := cleanPrefabPath(p)

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	return fmt.Sprintf("scripts/%s", s)
}

func diskPrefabPath(clean string) string {
	return filepath.Join(Dir(), filepath.FromSlash(clean))
}

func trimExt(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
