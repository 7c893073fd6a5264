package agents

import (
	"path/filepath"
	"strings"
)

var languageByExt = map[string]string{
	".go":    "Go",
	".js":    "JavaScript",
	".jsx":   "JavaScript (JSX)",
	".ts":    "TypeScript",
	".tsx":   "TypeScript (TSX)",
	".py":    "Python",
	".java":  "Java",
	".cpp":   "C++",
	".cc":    "C++",
	".cxx":   "C++",
	".c":     "C",
	".h":     "C",
	".cs":    "C#",
	".html":  "HTML",
	".css":   "CSS",
	".scss":  "SCSS",
	".sh":    "Bash",
	".bash":  "Bash",
	".sql":   "SQL",
	".rb":    "Ruby",
	".php":   "PHP",
	".rs":    "Rust",
	".kt":    "Kotlin",
	".swift": "Swift",
	".dart":  "Dart",
	".vue":   "Vue",
	".scala": "Scala",
	".clj":   "Clojure",
	".hs":    "Haskell",
	".ex":    "Elixir",
	".exs":   "Elixir",
	".pl":    "Perl",
	".lua":   "Lua",
	".r":     "R",
	".tf":    "Terraform",
	".yaml":  "YAML",
	".yml":   "YAML",
}

// languageForPath names the language of path by extension, or "" when unknown.
func languageForPath(path string) string {
	if strings.EqualFold(filepath.Base(path), "Dockerfile") {
		return "Dockerfile"
	}
	return languageByExt[strings.ToLower(filepath.Ext(path))]
}

// describeCode is used in prompts, e.g. "Python code (app/main.py)".
func describeCode(path string) string {
	if lang := languageForPath(path); lang != "" {
		return lang + " code (" + path + ")"
	}
	return "code (" + path + ")"
}
