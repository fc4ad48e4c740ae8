package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// bt is a backtick. Criteria often quote paths and symbols in markdown
// style, so the rule patterns strip optional backticks around captures.
const bt = "\x60"

// rule maps a criterion phrasing to the checks that verify it. The first
// matching rule wins; its checks must all pass for the criterion to count
// as deterministically verified.
type rule struct {
	name  string
	match *regexp.Regexp
	build func(m []string) []Check
}

var pathFrag = fmt.Sprintf(`%s?([\w@][\w@./-]*\.[A-Za-z0-9]+)%s?`, bt, bt)
var dirFrag = fmt.Sprintf(`%s?([\w@][\w@./-]*)%s?`, bt, bt)
var symFrag = fmt.Sprintf(`%s?([A-Za-z_$][\w$]*)%s?`, bt, bt)

var rules = []rule{
	{
		name:  "file_removed",
		match: regexp.MustCompile(`(?i)(?:file\s+)?` + pathFrag + `\s+(?:is\s+|was\s+|has\s+been\s+|should\s+(?:be|not)\s+)?(?:deleted|removed|gone|absent|no\s+longer\s+exists?|does\s+not\s+exist)`),
		build: func(m []string) []Check {
			return []Check{{Kind: CheckFileNotExists, Path: m[1]}}
		},
	},
	{
		name:  "file_present",
		match: regexp.MustCompile(`(?i)(?:file\s+)?` + pathFrag + `\s+(?:is\s+|was\s+|has\s+been\s+|should\s+(?:be|exist)\s*)?(?:created|added|written|implemented|present|exists?)`),
		build: func(m []string) []Check {
			return []Check{{Kind: CheckFileExists, Path: m[1]}}
		},
	},
	{
		name:  "create_file",
		match: regexp.MustCompile(`(?i)(?:create|add|write|generate)s?\s+(?:a\s+|the\s+)?(?:new\s+)?file\s+(?:named\s+|called\s+)?` + pathFrag),
		build: func(m []string) []Check {
			return []Check{{Kind: CheckFileExists, Path: m[1]}}
		},
	},
	{
		name:  "directory_present",
		match: regexp.MustCompile(`(?i)(?:directory|folder)\s+` + dirFrag + `\s+(?:is\s+|was\s+|has\s+been\s+|should\s+)?(?:created|added|present|exists?)`),
		build: func(m []string) []Check {
			return []Check{{Kind: CheckDirExists, Path: strings.TrimSuffix(m[1], "/")}}
		},
	},
	{
		name:  "create_directory",
		match: regexp.MustCompile(`(?i)(?:create|add)s?\s+(?:a\s+|the\s+)?(?:directory|folder)\s+(?:named\s+|called\s+)?` + dirFrag),
		build: func(m []string) []Check {
			return []Check{{Kind: CheckDirExists, Path: strings.TrimSuffix(m[1], "/")}}
		},
	},
	{
		name:  "package_dependency",
		match: regexp.MustCompile(`(?i)` + bt + `?([\w@./-]*package\.json)` + bt + `?\s+(?:contains|includes|has|lists)\s+(?:the\s+)?(dev[\s-]?dependency|dependency|package)\s+` + bt + `?"?([\w@/.-]+)"?` + bt + `?`),
		build: func(m []string) []Check {
			section := "dependencies"
			if strings.HasPrefix(strings.ToLower(m[2]), "dev") {
				section = "devDependencies"
			}
			return []Check{{Kind: CheckJSONContains, Path: m[1], KeyPath: section + "." + m[3]}}
		},
	},
	{
		name:  "json_key",
		match: regexp.MustCompile(`(?i)` + bt + `?([\w@./-]+\.json)` + bt + `?\s+(?:contains|has|includes)\s+(?:the\s+)?(?:key|field|property)\s+` + bt + `?"?([\w.-]+)"?` + bt + `?(?:\s+(?:with\s+value|set\s+to|equal\s+to|=)\s+` + bt + `?"?([^` + bt + `"]+?)"?` + bt + `?)?\s*$`),
		build: func(m []string) []Check {
			return []Check{{Kind: CheckJSONContains, Path: m[1], KeyPath: m[2], Value: strings.TrimSpace(m[3])}}
		},
	},
	{
		name:  "symbol_declared",
		match: regexp.MustCompile(`(?i)(?:a\s+|the\s+)?(function|class|interface|type|enum|method|const|variable)\s+` + symFrag + `\s+(?:is\s+|was\s+|has\s+been\s+|should\s+be\s+)?(?:defined|declared|created|implemented|added|exported|exists?)`),
		build: func(m []string) []Check {
			return []Check{{Kind: CheckASTHas, SymbolKind: strings.ToLower(m[1]), SymbolName: m[2]}}
		},
	},
	{
		name:  "declare_symbol",
		match: regexp.MustCompile(`(?i)(?:define|implement|export|declare|add|create)s?\s+(?:a\s+|the\s+)?(function|class|interface|type|enum|method)\s+(?:named\s+|called\s+)?` + symFrag),
		build: func(m []string) []Check {
			return []Check{{Kind: CheckASTHas, SymbolKind: strings.ToLower(m[1]), SymbolName: m[2]}}
		},
	},
	{
		name:  "file_lacks_text",
		match: regexp.MustCompile(`(?i)` + pathFrag + `\s+(?:does\s+not\s+contain|no\s+longer\s+contains|must\s+not\s+contain|should\s+not\s+contain)\s+` + bt + `?"?(.+?)"?` + bt + `?\s*$`),
		build: func(m []string) []Check {
			return []Check{{Kind: CheckGrepNotFound, Path: m[1], Pattern: escapeLiteral(m[2])}}
		},
	},
	{
		name:  "file_contains_text",
		match: regexp.MustCompile(`(?i)` + pathFrag + `\s+(?:contains|includes|mentions|references)\s+` + bt + `?"?(.+?)"?` + bt + `?\s*$`),
		build: func(m []string) []Check {
			return []Check{{Kind: CheckGrepFound, Path: m[1], Pattern: escapeLiteral(m[2])}}
		},
	},
	{
		name:  "tree_contains_text",
		match: regexp.MustCompile(`(?i)(?:the\s+)?(?:code|codebase|project|workspace|sources?)\s+(?:contains|includes|mentions|references)\s+` + bt + `?"?(.+?)"?` + bt + `?\s*$`),
		build: func(m []string) []Check {
			return []Check{{Kind: CheckGrepFound, Pattern: escapeLiteral(m[1])}}
		},
	},
	{
		name:  "file_count",
		match: regexp.MustCompile(`(?i)(at\s+least|at\s+most|exactly)?\s*(\d+)\s+files?\s+(?:match(?:ing)?|in|under)\s+` + bt + `?([\w@*./{},\[\]-]+)` + bt + `?`),
		build: func(m []string) []Check {
			n, _ := strconv.Atoi(m[2])
			c := Check{Kind: CheckFileCount, Glob: normalizeGlob(m[3]), Min: -1, Max: -1}
			switch strings.Join(strings.Fields(strings.ToLower(m[1])), " ") {
			case "at most":
				c.Max = n
			case "exactly":
				c.Min, c.Max = n, n
			default:
				c.Min = n
			}
			return []Check{c}
		},
	},
}

// normalizeGlob widens a bare directory reference into a recursive glob.
func normalizeGlob(g string) string {
	if strings.ContainsAny(g, "*?[{") {
		return g
	}
	return strings.TrimSuffix(g, "/") + "/**"
}

// MapCriterion resolves a criterion to its checks. The empty rule name
// means no mapping exists and the criterion stays unverifiable here.
func MapCriterion(criterion string) (string, []Check) {
	text := strings.TrimSpace(criterion)
	for _, r := range rules {
		if m := r.match.FindStringSubmatch(text); m != nil {
			return r.name, r.build(m)
		}
	}
	return "", nil
}
